package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redbco/redb-dbadmin/pkg/admin"
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant privileges, roles and object permissions",
	Long:  "Grant a system privilege, role membership or object permission to an account, or to a role with --to-role.",
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke privileges, roles and object permissions",
	Long:  "Revoke a system privilege, role membership or object permission from an account, or from a role with --to-role.",
}

var (
	grantToRole    bool
	grantDelegated bool
	revokeToRole   bool
)

var grantPrivilegeCmd = &cobra.Command{
	Use:   "privilege [grantee] [privilege]",
	Short: "Grant a system privilege",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			if grantToRole {
				return a.RolePrivilegeGrant(ctx, args[0], args[1], grantDelegated)
			}
			return a.AccountPrivilegeGrant(ctx, args[0], args[1], grantDelegated)
		})
	},
}

var grantRoleCmd = &cobra.Command{
	Use:   "role [grantee] [rolename]",
	Short: "Grant role membership",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			if grantToRole {
				return a.RoleRoleGrant(ctx, args[0], args[1], grantDelegated)
			}
			return a.AccountRoleGrant(ctx, args[0], args[1], grantDelegated)
		})
	},
}

var grantObjectCmd = &cobra.Command{
	Use:   "object [grantee] [permission] [object]",
	Short: "Grant an object permission",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			if grantToRole {
				return a.RoleObjectGrant(ctx, args[0], args[1], args[2], grantDelegated)
			}
			return a.AccountObjectGrant(ctx, args[0], args[1], args[2], grantDelegated)
		})
	},
}

var grantListCmd = &cobra.Command{
	Use:   "list [grantee]",
	Short: "List granted privileges and roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			privileges, err := a.LoadGrantedPrivileges(ctx, args[0], "")
			if err != nil {
				return err
			}
			roles, err := a.LoadGrantedRoles(ctx, args[0], "")
			if err != nil {
				return err
			}
			for _, entry := range privileges {
				printGranted("privilege", entry)
			}
			for _, entry := range roles {
				printGranted("role", entry)
			}
			return nil
		})
	},
}

func printGranted(kind string, entry admin.Granted) {
	if entry.Delegated {
		fmt.Printf("%s: %s (delegated)\n", kind, entry.Name)
		return
	}
	fmt.Printf("%s: %s\n", kind, entry.Name)
}

var revokePrivilegeCmd = &cobra.Command{
	Use:   "privilege [grantee] [privilege]",
	Short: "Revoke a system privilege",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			if revokeToRole {
				return a.RolePrivilegeRevoke(ctx, args[0], args[1])
			}
			return a.AccountPrivilegeRevoke(ctx, args[0], args[1])
		})
	},
}

var revokeRoleCmd = &cobra.Command{
	Use:   "role [grantee] [rolename]",
	Short: "Revoke role membership",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			if revokeToRole {
				return a.RoleRoleRevoke(ctx, args[0], args[1])
			}
			return a.AccountRoleRevoke(ctx, args[0], args[1])
		})
	},
}

var revokeObjectCmd = &cobra.Command{
	Use:   "object [grantee] [permission] [object]",
	Short: "Revoke an object permission",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			if revokeToRole {
				return a.RoleObjectRevoke(ctx, args[0], args[1], args[2])
			}
			return a.AccountObjectRevoke(ctx, args[0], args[1], args[2])
		})
	},
}

func init() {
	grantCmd.PersistentFlags().BoolVar(&grantToRole, "to-role", false, "Grantee is a role instead of an account")
	grantCmd.PersistentFlags().BoolVar(&grantDelegated, "delegated", false, "Grant with the admin or grant option")
	revokeCmd.PersistentFlags().BoolVar(&revokeToRole, "to-role", false, "Grantee is a role instead of an account")

	grantCmd.AddCommand(grantPrivilegeCmd)
	grantCmd.AddCommand(grantRoleCmd)
	grantCmd.AddCommand(grantObjectCmd)
	grantCmd.AddCommand(grantListCmd)

	revokeCmd.AddCommand(revokePrivilegeCmd)
	revokeCmd.AddCommand(revokeRoleCmd)
	revokeCmd.AddCommand(revokeObjectCmd)
}
