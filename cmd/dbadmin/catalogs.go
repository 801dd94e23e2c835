package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redbco/redb-dbadmin/pkg/admin"
	"github.com/redbco/redb-dbadmin/pkg/dialect"

	_ "github.com/redbco/redb-dbadmin/internal/dialect/mssql"
	_ "github.com/redbco/redb-dbadmin/internal/dialect/mysql"
	_ "github.com/redbco/redb-dbadmin/internal/dialect/oracle"
	_ "github.com/redbco/redb-dbadmin/internal/dialect/postgres"
	_ "github.com/redbco/redb-dbadmin/internal/dialect/sqlite"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [type]",
	Short: "List data-dictionary object names",
	Long:  "List the names of one data-dictionary object class. Supported types: " + dialect.CatalogTypeList() + ".",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogType, ok := dialect.ParseCatalogType(args[0])
		if !ok {
			return fmt.Errorf("unknown catalog type %q, expected one of %s", args[0], dialect.CatalogTypeList())
		}
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			names, err := a.LookupCatalog(ctx, catalogType)
			if err != nil {
				return err
			}
			printNames(names)
			return nil
		})
	},
}
