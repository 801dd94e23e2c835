// Package mssql implements the Microsoft SQL Server dialect over the sys
// catalog views.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

func init() {
	dialect.Register(dbcapabilities.SQLServer, func() dialect.Dialect { return New() })
}

// Dialect is the SQL Server strategy.
type Dialect struct {
	dialect.Definition
}

// New constructs the SQL Server dialect with its install functions bound.
func New() *Dialect {
	d := &Dialect{}
	d.InstallEntities = installEntities
	d.InstallCatalogs = installCatalogs
	d.InstallPermissions = installPermissions
	d.InstallOperations = installOperations
	return d
}

// Type returns the canonical database identifier.
func (d *Dialect) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.SQLServer
}

// Connect opens an administrative connection using the go-mssqldb driver.
func (d *Dialect) Connect(ctx context.Context, resource dialect.Resource) (*sql.DB, error) {
	query := url.Values{}
	query.Add("database", resource.Database)
	if resource.SSL {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "disable")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(resource.Principal, resource.Password),
		Host:     fmt.Sprintf("%s:%d", resource.Host, resource.Port),
		RawQuery: query.Encode(),
	}

	db, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// AccountFilter selects enabled SQL and Windows logins.
func (d *Dialect) AccountFilter() *dbsql.Filter {
	return dbsql.And(
		dbsql.In("type", []string{"S", "U"}),
		dbsql.Eq("is_disabled", 0),
	)
}

// AccountTime restricts logins to those modified at or after the instant.
func (d *Dialect) AccountTime(since time.Time) *dbsql.Filter {
	return dbsql.Ge("modify_date", since)
}

// NormalizeError maps SQL Server error numbers to the closed code set.
func (d *Dialect) NormalizeError(err error) dberror.Code {
	var sqlErr mssqldb.Error
	if !errors.As(err, &sqlErr) {
		return dberror.General
	}

	switch sqlErr.Number {
	case 18456, 18452:
		return dberror.ConnectionAuthentication
	case 229, 230, 300:
		return dberror.InsufficientPrivilege
	case 15025:
		return dberror.ObjectAlreadyExists
	case 15151, 15011:
		return dberror.ObjectNotExists
	case 15247:
		return dberror.InsufficientPrivilege
	case 233:
		return dberror.ConnectionCreateSocket
	case -2:
		return dberror.ConnectionTimeout
	default:
		return dberror.General
	}
}

// Placeholder produces SQL Server named bind markers.
func (d *Dialect) Placeholder(i int) string {
	return fmt.Sprintf("@p%d", i)
}

// Page appends the OFFSET/FETCH window clause; the statement must carry an
// ORDER BY, which the search builder guarantees.
func (d *Dialect) Page(statement string, startRow, lastRow int) (string, []any) {
	return fmt.Sprintf("%s OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", statement, startRow, lastRow-startRow), nil
}

func installEntities() map[dialect.Entity]*dialect.Catalog {
	return map[dialect.Entity]*dialect.Catalog{
		dialect.EntityAccount: {
			Entity: dbsql.Entity{Schema: "sys", Name: "server_principals", Primary: "name"},
			Projection: []dbsql.Attribute{
				{Physical: "principal_id", Logical: "userId"},
				{Physical: "name", Logical: "userName"},
				{Physical: "type_desc", Logical: "status"},
				{Physical: "create_date", Logical: "created"},
				{Physical: "modify_date", Logical: "modified"},
				{Physical: "default_database_name", Logical: "defaultTableSpace"},
			},
		},
		dialect.EntityCatalog: {
			Entity: dbsql.Entity{Schema: "information_schema", Name: "columns", Primary: "table_schema"},
			Projection: []dbsql.Attribute{
				{Physical: "table_schema", Logical: "owner"},
				{Physical: "table_name", Logical: "tableName"},
				{Physical: "column_name", Logical: "columnName"},
				{Physical: "data_type", Logical: "dataType"},
				{Physical: "is_nullable", Logical: "nilable"},
			},
		},
	}
}

func installCatalogs() map[dialect.CatalogType]*dialect.Catalog {
	return map[dialect.CatalogType]*dialect.Catalog{
		dialect.Role: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "server_principals", Primary: "name"},
			Filter:     dbsql.Eq("type", "R"),
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.Schema: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "schemas", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.Synonym: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "synonyms", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.Table: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "tables", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.View: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "views", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.Procedure: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "procedures", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.Function: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "objects", Primary: "name"},
			Filter:     dbsql.In("type", []string{"FN", "IF", "TF"}),
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.DotNet: {
			Entity:     dbsql.Entity{Schema: "sys", Name: "assemblies", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
	}
}

func installPermissions() map[dialect.CatalogType]*dialect.Catalog {
	// Server permission and role membership views key on principal IDs
	// rather than names, which the single-relation descriptor model cannot
	// express. Granted-permission listing is unsupported here.
	return map[dialect.CatalogType]*dialect.Catalog{}
}

func installOperations() map[dialect.Operation]string {
	return map[dialect.Operation]string{
		dialect.AccountCreate:   "CREATE LOGIN $[USERNAME] WITH PASSWORD = '$[PASSWORD]'",
		dialect.AccountDelete:   "DROP LOGIN $[USERNAME]",
		dialect.AccountModify:   "ALTER LOGIN $[USERNAME] WITH $[ATTRIBUTE_NAME] = $[ATTRIBUTE_VALUE]",
		dialect.AccountPassword: "ALTER LOGIN $[USERNAME] WITH PASSWORD = '$[PASSWORD]'",
		dialect.AccountEnable:   "ALTER LOGIN $[USERNAME] ENABLE",
		dialect.AccountDisable:  "ALTER LOGIN $[USERNAME] DISABLE",

		dialect.AccountPrivilegeGrant:     "GRANT $[PERMISSION] TO $[USERNAME]",
		dialect.AccountPrivilegeGrantWith: "GRANT $[PERMISSION] TO $[USERNAME] WITH GRANT OPTION",
		dialect.AccountPrivilegeRevoke:    "REVOKE $[PERMISSION] FROM $[USERNAME]",
		dialect.AccountRoleGrant:          "ALTER SERVER ROLE $[PERMISSION] ADD MEMBER $[USERNAME]",
		dialect.AccountRoleRevoke:         "ALTER SERVER ROLE $[PERMISSION] DROP MEMBER $[USERNAME]",
		dialect.AccountObjectGrant:        "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME]",
		dialect.AccountObjectGrantWith:    "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME] WITH GRANT OPTION",
		dialect.AccountObjectRevoke:       "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[USERNAME]",

		// Server roles cannot be password protected.
		dialect.RoleCreate: "CREATE SERVER ROLE $[ROLENAME]",
		dialect.RoleDelete: "DROP SERVER ROLE $[ROLENAME]",

		dialect.RolePrivilegeGrant:     "GRANT $[PERMISSION] TO $[ROLENAME]",
		dialect.RolePrivilegeGrantWith: "GRANT $[PERMISSION] TO $[ROLENAME] WITH GRANT OPTION",
		dialect.RolePrivilegeRevoke:    "REVOKE $[PERMISSION] FROM $[ROLENAME]",
		dialect.RoleRoleGrant:          "ALTER SERVER ROLE $[PERMISSION] ADD MEMBER $[ROLENAME]",
		dialect.RoleRoleRevoke:         "ALTER SERVER ROLE $[PERMISSION] DROP MEMBER $[ROLENAME]",
		dialect.RoleObjectGrant:        "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME]",
		dialect.RoleObjectGrantWith:    "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME] WITH GRANT OPTION",
		dialect.RoleObjectRevoke:       "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[ROLENAME]",

		dialect.SystemTime: "SELECT sysdatetime()",
	}
}
