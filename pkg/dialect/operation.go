package dialect

// Operation enumerates the closed set of administrative actions a dialect
// can express. Each maps to at most one SQL template per dialect; a missing
// mapping means the dialect does not support the operation.
type Operation string

const (
	AccountCreate   Operation = "account.create"
	AccountDelete   Operation = "account.delete"
	AccountEnable   Operation = "account.enable"
	AccountDisable  Operation = "account.disable"
	AccountModify   Operation = "account.modify"
	AccountPassword Operation = "account.password"

	RoleCreate          Operation = "role.create"
	RoleCreateProtected Operation = "role.create.protected"
	RoleDelete          Operation = "role.delete"
	RoleProtect         Operation = "role.protect"
	RoleUnprotect       Operation = "role.unprotect"

	AccountPrivilegeGrant     Operation = "account.privilege.grant"
	AccountPrivilegeGrantWith Operation = "account.privilege.grant.with"
	AccountPrivilegeRevoke    Operation = "account.privilege.revoke"
	AccountRoleGrant          Operation = "account.role.grant"
	AccountRoleGrantWith      Operation = "account.role.grant.with"
	AccountRoleRevoke         Operation = "account.role.revoke"
	AccountObjectGrant        Operation = "account.object.grant"
	AccountObjectGrantWith    Operation = "account.object.grant.with"
	AccountObjectRevoke       Operation = "account.object.revoke"

	RolePrivilegeGrant     Operation = "role.privilege.grant"
	RolePrivilegeGrantWith Operation = "role.privilege.grant.with"
	RolePrivilegeRevoke    Operation = "role.privilege.revoke"
	RoleRoleGrant          Operation = "role.role.grant"
	RoleRoleGrantWith      Operation = "role.role.grant.with"
	RoleRoleRevoke         Operation = "role.role.revoke"
	RoleObjectGrant        Operation = "role.object.grant"
	RoleObjectGrantWith    Operation = "role.object.grant.with"
	RoleObjectRevoke       Operation = "role.object.revoke"

	SystemTime Operation = "system.time"
)
