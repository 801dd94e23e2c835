package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/redbco/redb-dbadmin/pkg/admin"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage database roles",
	Long:  "List, create, delete and password-protect roles on the connected resource.",
}

var rolePassword string

var listRolesCmd = &cobra.Command{
	Use:   "list",
	Short: "List role names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			names, err := a.LookupRoles(ctx)
			if err != nil {
				return err
			}
			printNames(names)
			return nil
		})
	},
}

var createRoleCmd = &cobra.Command{
	Use:   "create [rolename]",
	Short: "Create a role",
	Long:  "Create a role. When --password is given the role is created password-protected on dialects that support it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.RoleCreate(ctx, args[0], rolePassword)
		})
	},
}

var deleteRoleCmd = &cobra.Command{
	Use:   "delete [rolename]",
	Short: "Delete a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.RoleDelete(ctx, args[0])
		})
	},
}

var protectRoleCmd = &cobra.Command{
	Use:   "password [rolename]",
	Short: "Protect or unprotect a role",
	Long:  "Protect the role with the --password value, or remove the protection when the flag is omitted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.RolePassword(ctx, args[0], rolePassword)
		})
	},
}

func init() {
	createRoleCmd.Flags().StringVar(&rolePassword, "password", "", "Role password")
	protectRoleCmd.Flags().StringVar(&rolePassword, "password", "", "Role password, empty removes the protection")

	roleCmd.AddCommand(listRolesCmd)
	roleCmd.AddCommand(createRoleCmd)
	roleCmd.AddCommand(deleteRoleCmd)
	roleCmd.AddCommand(protectRoleCmd)
}
