package admin

import (
	"context"
	"errors"

	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

// grant runs a templated grant operation, selecting the delegated variant
// when requested, and disambiguates the native failure.
func (a *Administration) grant(ctx context.Context, operation string, plain, delegated dialect.Operation, withOption bool, grantee string, parameters map[string]string) error {
	if err := a.connected(operation); err != nil {
		return err
	}

	key := plain
	if withOption {
		key = delegated
	}
	statement := a.render(key, parameters)

	if err := a.execute(ctx, operation, statement); err != nil {
		return a.translateGrant(err, operation, grantee, dberror.PermissionNotAssigned)
	}

	a.log.WithFields(a.fields()).Info(operation + ": " + grantee)
	return nil
}

// revoke runs a templated revoke operation and disambiguates the native
// failure.
func (a *Administration) revoke(ctx context.Context, operation string, key dialect.Operation, grantee string, parameters map[string]string) error {
	if err := a.connected(operation); err != nil {
		return err
	}

	statement := a.render(key, parameters)

	if err := a.execute(ctx, operation, statement); err != nil {
		return a.translateGrant(err, operation, grantee, dberror.PermissionNotRemoved)
	}

	a.log.WithFields(a.fields()).Info(operation + ": " + grantee)
	return nil
}

func (a *Administration) translateGrant(err error, operation, grantee string, notApplied dberror.Code) error {
	var typed *dberror.Error
	if errors.As(err, &typed) {
		return err
	}

	switch a.generalize(err) {
	case dberror.InsufficientPrivilege:
		return dberror.New(dberror.InsufficientPrivilege, operation).
			WithPrincipal(a.resource.Principal).
			WithCause(err)
	case dberror.ObjectNotExists, dberror.OperationFailed:
		return dberror.New(dberror.ObjectNotExists, operation).
			WithSubject(grantee).
			WithCause(err)
	case dberror.PermissionNotAssigned, dberror.PermissionNotRemoved:
		return dberror.New(notApplied, operation).
			WithSubject(grantee).
			WithCause(err)
	default:
		return dberror.Wrap(dberror.General, operation, err)
	}
}

// AccountPrivilegeGrant grants a system privilege to an account, with the
// admin option when delegated.
func (a *Administration) AccountPrivilegeGrant(ctx context.Context, username, permission string, delegated bool) error {
	return a.grant(ctx, "accountPrivilegeGrant",
		dialect.AccountPrivilegeGrant, dialect.AccountPrivilegeGrantWith, delegated, username,
		map[string]string{
			dialect.ParamUsername:   username,
			dialect.ParamPermission: permission,
		})
}

// AccountPrivilegeRevoke revokes a system privilege from an account.
func (a *Administration) AccountPrivilegeRevoke(ctx context.Context, username, permission string) error {
	return a.revoke(ctx, "accountPrivilegeRevoke", dialect.AccountPrivilegeRevoke, username,
		map[string]string{
			dialect.ParamUsername:   username,
			dialect.ParamPermission: permission,
		})
}

// AccountRoleGrant grants a role to an account.
func (a *Administration) AccountRoleGrant(ctx context.Context, username, rolename string, delegated bool) error {
	return a.grant(ctx, "accountRoleGrant",
		dialect.AccountRoleGrant, dialect.AccountRoleGrantWith, delegated, username,
		map[string]string{
			dialect.ParamUsername:   username,
			dialect.ParamPermission: rolename,
		})
}

// AccountRoleRevoke revokes a role from an account.
func (a *Administration) AccountRoleRevoke(ctx context.Context, username, rolename string) error {
	return a.revoke(ctx, "accountRoleRevoke", dialect.AccountRoleRevoke, username,
		map[string]string{
			dialect.ParamUsername:   username,
			dialect.ParamPermission: rolename,
		})
}

// AccountObjectGrant grants an object permission to an account.
func (a *Administration) AccountObjectGrant(ctx context.Context, username, permission, object string, delegated bool) error {
	return a.grant(ctx, "accountObjectGrant",
		dialect.AccountObjectGrant, dialect.AccountObjectGrantWith, delegated, username,
		map[string]string{
			dialect.ParamUsername:   username,
			dialect.ParamPermission: permission,
			dialect.ParamObject:     object,
		})
}

// AccountObjectRevoke revokes an object permission from an account.
func (a *Administration) AccountObjectRevoke(ctx context.Context, username, permission, object string) error {
	return a.revoke(ctx, "accountObjectRevoke", dialect.AccountObjectRevoke, username,
		map[string]string{
			dialect.ParamUsername:   username,
			dialect.ParamPermission: permission,
			dialect.ParamObject:     object,
		})
}

// RolePrivilegeGrant grants a system privilege to a role.
func (a *Administration) RolePrivilegeGrant(ctx context.Context, rolename, permission string, delegated bool) error {
	return a.grant(ctx, "rolePrivilegeGrant",
		dialect.RolePrivilegeGrant, dialect.RolePrivilegeGrantWith, delegated, rolename,
		map[string]string{
			dialect.ParamRolename:   rolename,
			dialect.ParamPermission: permission,
		})
}

// RolePrivilegeRevoke revokes a system privilege from a role.
func (a *Administration) RolePrivilegeRevoke(ctx context.Context, rolename, permission string) error {
	return a.revoke(ctx, "rolePrivilegeRevoke", dialect.RolePrivilegeRevoke, rolename,
		map[string]string{
			dialect.ParamRolename:   rolename,
			dialect.ParamPermission: permission,
		})
}

// RoleRoleGrant grants a role to another role.
func (a *Administration) RoleRoleGrant(ctx context.Context, rolename, granted string, delegated bool) error {
	return a.grant(ctx, "roleRoleGrant",
		dialect.RoleRoleGrant, dialect.RoleRoleGrantWith, delegated, rolename,
		map[string]string{
			dialect.ParamRolename:   rolename,
			dialect.ParamPermission: granted,
		})
}

// RoleRoleRevoke revokes a role from another role.
func (a *Administration) RoleRoleRevoke(ctx context.Context, rolename, granted string) error {
	return a.revoke(ctx, "roleRoleRevoke", dialect.RoleRoleRevoke, rolename,
		map[string]string{
			dialect.ParamRolename:   rolename,
			dialect.ParamPermission: granted,
		})
}

// RoleObjectGrant grants an object permission to a role.
func (a *Administration) RoleObjectGrant(ctx context.Context, rolename, permission, object string, delegated bool) error {
	return a.grant(ctx, "roleObjectGrant",
		dialect.RoleObjectGrant, dialect.RoleObjectGrantWith, delegated, rolename,
		map[string]string{
			dialect.ParamRolename:   rolename,
			dialect.ParamPermission: permission,
			dialect.ParamObject:     object,
		})
}

// RoleObjectRevoke revokes an object permission from a role.
func (a *Administration) RoleObjectRevoke(ctx context.Context, rolename, permission, object string) error {
	return a.revoke(ctx, "roleObjectRevoke", dialect.RoleObjectRevoke, rolename,
		map[string]string{
			dialect.ParamRolename:   rolename,
			dialect.ParamPermission: permission,
			dialect.ParamObject:     object,
		})
}
