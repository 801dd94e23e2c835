// Package mysql implements the MySQL dialect over the mysql system schema
// and information_schema.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

func init() {
	dialect.Register(dbcapabilities.MySQL, func() dialect.Dialect { return New() })
}

// Dialect is the MySQL strategy.
type Dialect struct {
	dialect.Definition
}

// New constructs the MySQL dialect with its install functions bound.
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
	return dbcapabilities.MySQL
}

// Connect opens an administrative connection using the go-sql-driver.
func (d *Dialect) Connect(ctx context.Context, resource dialect.Resource) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = resource.Principal
	cfg.Passwd = resource.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", resource.Host, resource.Port)
	cfg.DBName = resource.Database
	if resource.SSL {
		cfg.TLSConfig = "true"
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
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

// AccountFilter selects unlocked accounts.
func (d *Dialect) AccountFilter() *dbsql.Filter {
	return dbsql.Eq("account_locked", "N")
}

// AccountTime is unsupported: mysql.user does not record creation time.
func (d *Dialect) AccountTime(time.Time) *dbsql.Filter {
	return nil
}

// NormalizeError maps MySQL error numbers to the closed code set. Number
// 1396 covers every failed account operation and cannot distinguish a
// duplicate from a generic failure; it maps to OperationFailed and the
// caller reinterprets it per operation.
func (d *Dialect) NormalizeError(err error) dberror.Code {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return dberror.General
	}

	switch mysqlErr.Number {
	case 1045:
		return dberror.ConnectionAuthentication
	case 1044:
		return dberror.ConnectionPermission
	case 1141, 1147:
		return dberror.PermissionNotRemoved
	case 1396:
		return dberror.OperationFailed
	case 1819:
		return dberror.ObjectNotCreated
	case 3619:
		return dberror.ObjectAlreadyExists
	case 3523:
		return dberror.ObjectNotExists
	case 2002, 2003:
		return dberror.ConnectionCreateSocket
	case 2005:
		return dberror.ConnectionUnknownHost
	case 2006, 2013:
		return dberror.ConnectionError
	default:
		return dberror.General
	}
}

// Placeholder produces ?-style bind markers.
func (d *Dialect) Placeholder(int) string {
	return "?"
}

// Page appends the LIMIT/OFFSET window clause.
func (d *Dialect) Page(statement string, startRow, lastRow int) (string, []any) {
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", statement, lastRow-startRow, startRow), nil
}

func installEntities() map[dialect.Entity]*dialect.Catalog {
	return map[dialect.Entity]*dialect.Catalog{
		dialect.EntityAccount: {
			Entity: dbsql.Entity{Schema: "mysql", Name: "user", Primary: "user"},
			Projection: []dbsql.Attribute{
				{Physical: "user", Logical: "userName"},
				{Physical: "host", Logical: "host"},
				{Physical: "account_locked", Logical: "status"},
				{Physical: "password_expired", Logical: "expire"},
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
		// Roles are locked password-expired entries of mysql.user.
		dialect.Role: {
			Entity: dbsql.Entity{Schema: "mysql", Name: "user", Primary: "user"},
			Filter: dbsql.And(
				dbsql.Eq("account_locked", "Y"),
				dbsql.Eq("password_expired", "Y"),
			),
			Projection: []dbsql.Attribute{{Physical: "user", Logical: "name"}},
		},
		dialect.Schema: {
			Entity:     dbsql.Entity{Schema: "information_schema", Name: "schemata", Primary: "schema_name"},
			Projection: []dbsql.Attribute{{Physical: "schema_name", Logical: "name"}},
		},
		dialect.Table: {
			Entity: dbsql.Entity{Schema: "information_schema", Name: "tables", Primary: "table_name"},
			Filter: dbsql.Eq("table_type", "BASE TABLE"),
			Projection: []dbsql.Attribute{
				{Physical: "table_schema", Logical: "owner"},
				{Physical: "table_name", Logical: "name"},
			},
		},
		dialect.View: {
			Entity: dbsql.Entity{Schema: "information_schema", Name: "views", Primary: "table_name"},
			Projection: []dbsql.Attribute{
				{Physical: "table_schema", Logical: "owner"},
				{Physical: "table_name", Logical: "name"},
			},
		},
		dialect.Function: {
			Entity: dbsql.Entity{Schema: "information_schema", Name: "routines", Primary: "routine_name"},
			Filter: dbsql.Eq("routine_type", "FUNCTION"),
			Projection: []dbsql.Attribute{
				{Physical: "routine_schema", Logical: "owner"},
				{Physical: "routine_name", Logical: "name"},
			},
		},
		dialect.Procedure: {
			Entity: dbsql.Entity{Schema: "information_schema", Name: "routines", Primary: "routine_name"},
			Filter: dbsql.Eq("routine_type", "PROCEDURE"),
			Projection: []dbsql.Attribute{
				{Physical: "routine_schema", Logical: "owner"},
				{Physical: "routine_name", Logical: "name"},
			},
		},
	}
}

func installPermissions() map[dialect.CatalogType]*dialect.Catalog {
	tablePermission := &dialect.Catalog{
		Entity:  dbsql.Entity{Schema: "information_schema", Name: "table_privileges", Primary: "table_name"},
		Grantee: "grantee",
		Projection: []dbsql.Attribute{
			{Physical: "table_schema", Logical: "owner"},
			{Physical: "table_name", Logical: "tableName"},
			{Physical: "privilege_type", Logical: "permission"},
			{Physical: "is_grantable", Logical: "delegated"},
		},
	}

	return map[dialect.CatalogType]*dialect.Catalog{
		dialect.Privilege: {
			Entity:  dbsql.Entity{Schema: "information_schema", Name: "user_privileges", Primary: "privilege_type"},
			Grantee: "grantee",
			Projection: []dbsql.Attribute{
				{Physical: "privilege_type", Logical: "name"},
				{Physical: "is_grantable", Logical: "delegated"},
			},
		},
		dialect.Table: tablePermission,
		dialect.View:  tablePermission,
	}
}

func installOperations() map[dialect.Operation]string {
	return map[dialect.Operation]string{
		dialect.AccountCreate:   "CREATE USER $[USERNAME] IDENTIFIED BY '$[PASSWORD]'",
		dialect.AccountDelete:   "DROP USER $[USERNAME]",
		dialect.AccountModify:   "ALTER USER $[USERNAME] $[ATTRIBUTE_NAME] $[ATTRIBUTE_VALUE]",
		dialect.AccountPassword: "ALTER USER $[USERNAME] IDENTIFIED BY '$[PASSWORD]'",
		dialect.AccountEnable:   "ALTER USER $[USERNAME] ACCOUNT UNLOCK",
		dialect.AccountDisable:  "ALTER USER $[USERNAME] ACCOUNT LOCK",

		dialect.AccountPrivilegeGrant:     "GRANT $[PERMISSION] ON *.* TO $[USERNAME]",
		dialect.AccountPrivilegeGrantWith: "GRANT $[PERMISSION] ON *.* TO $[USERNAME] WITH GRANT OPTION",
		dialect.AccountPrivilegeRevoke:    "REVOKE $[PERMISSION] ON *.* FROM $[USERNAME]",
		dialect.AccountRoleGrant:          "GRANT $[PERMISSION] TO $[USERNAME]",
		dialect.AccountRoleGrantWith:      "GRANT $[PERMISSION] TO $[USERNAME] WITH ADMIN OPTION",
		dialect.AccountRoleRevoke:         "REVOKE $[PERMISSION] FROM $[USERNAME]",
		dialect.AccountObjectGrant:        "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME]",
		dialect.AccountObjectGrantWith:    "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME] WITH GRANT OPTION",
		dialect.AccountObjectRevoke:       "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[USERNAME]",

		// Roles cannot carry passwords in MySQL; the protected variants
		// stay unmapped.
		dialect.RoleCreate: "CREATE ROLE $[ROLENAME]",
		dialect.RoleDelete: "DROP ROLE $[ROLENAME]",

		dialect.RolePrivilegeGrant:     "GRANT $[PERMISSION] ON *.* TO $[ROLENAME]",
		dialect.RolePrivilegeGrantWith: "GRANT $[PERMISSION] ON *.* TO $[ROLENAME] WITH GRANT OPTION",
		dialect.RolePrivilegeRevoke:    "REVOKE $[PERMISSION] ON *.* FROM $[ROLENAME]",
		dialect.RoleRoleGrant:          "GRANT $[PERMISSION] TO $[ROLENAME]",
		dialect.RoleRoleGrantWith:      "GRANT $[PERMISSION] TO $[ROLENAME] WITH ADMIN OPTION",
		dialect.RoleRoleRevoke:         "REVOKE $[PERMISSION] FROM $[ROLENAME]",
		dialect.RoleObjectGrant:        "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME]",
		dialect.RoleObjectGrantWith:    "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME] WITH GRANT OPTION",
		dialect.RoleObjectRevoke:       "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[ROLENAME]",

		dialect.SystemTime: "SELECT now()",
	}
}
