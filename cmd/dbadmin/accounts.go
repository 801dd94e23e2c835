package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/redbco/redb-dbadmin/pkg/admin"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage database accounts",
	Long:  "List, inspect, create, modify and delete database accounts on the connected resource.",
}

var (
	accountSince      string
	accountStartRow   int
	accountLastRow    int
	accountAttributes []string
)

var listAccountsCmd = &cobra.Command{
	Use:   "list",
	Short: "List account names",
	Long:  "List enabled account names in a page window, optionally restricted to accounts changed since a point in time.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var since *time.Time
		if accountSince != "" {
			ts, err := time.Parse("2006-01-02", accountSince)
			if err != nil {
				return fmt.Errorf("invalid --since value %q, expected YYYY-MM-DD", accountSince)
			}
			since = &ts
		}
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			names, err := a.AccountSearch(ctx, since, accountStartRow, accountLastRow)
			if err != nil {
				return err
			}
			printNames(names)
			return nil
		})
	},
}

var showAccountCmd = &cobra.Command{
	Use:   "show [username]",
	Short: "Show account details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			detail, err := a.AccountDetail(ctx, args[0])
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(detail))
			for key := range detail {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Printf("%s: %v\n", key, detail[key])
			}
			return nil
		})
	},
}

var createAccountCmd = &cobra.Command{
	Use:   "create [username] [password]",
	Short: "Create an account",
	Long:  "Create an account. Additional vendor option text can be appended with repeated --attribute name=value flags.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		attributes := map[string]string{
			dialect.ParamUsername: args[0],
			dialect.ParamPassword: args[1],
		}
		for _, pair := range accountAttributes {
			name, value := splitAttribute(pair)
			attributes[name] = value
		}
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.AccountCreate(ctx, attributes)
		})
	},
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete [username]",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.AccountDelete(ctx, args[0])
		})
	},
}

var enableAccountCmd = &cobra.Command{
	Use:   "enable [username]",
	Short: "Enable an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.AccountEnable(ctx, args[0])
		})
	},
}

var disableAccountCmd = &cobra.Command{
	Use:   "disable [username]",
	Short: "Disable an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.AccountDisable(ctx, args[0])
		})
	},
}

var modifyAccountCmd = &cobra.Command{
	Use:   "modify [username] [attribute] [value]",
	Short: "Modify a single account attribute",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.AccountModify(ctx, args[0], args[1], args[2])
		})
	},
}

var passwordAccountCmd = &cobra.Command{
	Use:   "password [username] [password]",
	Short: "Reset an account password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			return a.AccountPassword(ctx, args[0], args[1])
		})
	},
}

func splitAttribute(pair string) (string, string) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '=' {
			return pair[:i], pair[i+1:]
		}
	}
	return pair, ""
}

func init() {
	listAccountsCmd.Flags().StringVar(&accountSince, "since", "", "Only accounts changed on or after this date (YYYY-MM-DD)")
	listAccountsCmd.Flags().IntVar(&accountStartRow, "start", 0, "First row of the page window")
	listAccountsCmd.Flags().IntVar(&accountLastRow, "last", 100, "Row after the last row of the page window")
	createAccountCmd.Flags().StringArrayVar(&accountAttributes, "attribute", nil, "Extra create option as name=value, repeatable")

	accountCmd.AddCommand(listAccountsCmd)
	accountCmd.AddCommand(showAccountCmd)
	accountCmd.AddCommand(createAccountCmd)
	accountCmd.AddCommand(deleteAccountCmd)
	accountCmd.AddCommand(enableAccountCmd)
	accountCmd.AddCommand(disableAccountCmd)
	accountCmd.AddCommand(modifyAccountCmd)
	accountCmd.AddCommand(passwordAccountCmd)
}
