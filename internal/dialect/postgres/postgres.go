// Package postgres implements the PostgreSQL dialect over pg_catalog and
// information_schema.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

func init() {
	dialect.Register(dbcapabilities.PostgreSQL, func() dialect.Dialect { return New() })
}

// Dialect is the PostgreSQL strategy.
type Dialect struct {
	dialect.Definition
}

// New constructs the PostgreSQL dialect with its install functions bound.
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
	return dbcapabilities.PostgreSQL
}

// Connect opens an administrative connection using the lib/pq driver.
func (d *Dialect) Connect(ctx context.Context, resource dialect.Resource) (*sql.DB, error) {
	sslMode := "disable"
	if resource.SSL {
		sslMode = "require"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		resource.Host,
		resource.Port,
		resource.Principal,
		resource.Password,
		resource.Database,
		sslMode)

	db, err := sql.Open("postgres", dsn)
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

// AccountFilter selects login-capable roles.
func (d *Dialect) AccountFilter() *dbsql.Filter {
	return dbsql.Eq("rolcanlogin", true)
}

// AccountTime is unsupported: pg_roles does not record creation time.
func (d *Dialect) AccountTime(time.Time) *dbsql.Filter {
	return nil
}

// NormalizeError maps SQLSTATE classes to the closed code set.
func (d *Dialect) NormalizeError(err error) dberror.Code {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return dberror.General
	}

	switch string(pqErr.Code) {
	case "28P01", "28000":
		return dberror.ConnectionAuthentication
	case "42501":
		return dberror.InsufficientPrivilege
	case "42704", "42883", "3D000":
		return dberror.ObjectNotExists
	case "42710", "42P04", "42P06", "42P07":
		return dberror.ObjectAlreadyExists
	case "08001":
		return dberror.ConnectionCreateSocket
	case "08006":
		return dberror.ConnectionError
	case "57014":
		return dberror.ConnectionTimeout
	default:
		return dberror.General
	}
}

// Placeholder produces PostgreSQL numbered bind markers.
func (d *Dialect) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

// Page appends the LIMIT/OFFSET window clause.
func (d *Dialect) Page(statement string, startRow, lastRow int) (string, []any) {
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", statement, lastRow-startRow, startRow), nil
}

func installEntities() map[dialect.Entity]*dialect.Catalog {
	return map[dialect.Entity]*dialect.Catalog{
		dialect.EntityAccount: {
			Entity: dbsql.Entity{Schema: "pg_catalog", Name: "pg_roles", Primary: "rolname"},
			Projection: []dbsql.Attribute{
				{Physical: "oid", Logical: "userId"},
				{Physical: "rolname", Logical: "userName"},
				{Physical: "rolcanlogin", Logical: "status"},
				{Physical: "rolvaliduntil", Logical: "expire"},
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
			Entity:     dbsql.Entity{Schema: "pg_catalog", Name: "pg_roles", Primary: "rolname"},
			Filter:     dbsql.Eq("rolcanlogin", false),
			Projection: []dbsql.Attribute{{Physical: "rolname", Logical: "name"}},
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
		dialect.Sequence: {
			Entity: dbsql.Entity{Schema: "information_schema", Name: "sequences", Primary: "sequence_name"},
			Projection: []dbsql.Attribute{
				{Physical: "sequence_schema", Logical: "owner"},
				{Physical: "sequence_name", Logical: "name"},
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
		dialect.TablespacePermanent: {
			Entity:     dbsql.Entity{Schema: "pg_catalog", Name: "pg_tablespace", Primary: "spcname"},
			Projection: []dbsql.Attribute{{Physical: "spcname", Logical: "name"}},
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
	routinePermission := &dialect.Catalog{
		Entity:  dbsql.Entity{Schema: "information_schema", Name: "routine_privileges", Primary: "routine_name"},
		Grantee: "grantee",
		Projection: []dbsql.Attribute{
			{Physical: "routine_schema", Logical: "owner"},
			{Physical: "routine_name", Logical: "tableName"},
			{Physical: "privilege_type", Logical: "permission"},
			{Physical: "is_grantable", Logical: "delegated"},
		},
	}

	return map[dialect.CatalogType]*dialect.Catalog{
		dialect.Role: {
			Entity:  dbsql.Entity{Schema: "information_schema", Name: "applicable_roles", Primary: "role_name"},
			Grantee: "grantee",
			Projection: []dbsql.Attribute{
				{Physical: "role_name", Logical: "name"},
				{Physical: "is_grantable", Logical: "delegated"},
			},
		},
		dialect.Table:     tablePermission,
		dialect.View:      tablePermission,
		dialect.Sequence:  tablePermission,
		dialect.Function:  routinePermission,
		dialect.Procedure: routinePermission,
	}
}

func installOperations() map[dialect.Operation]string {
	return map[dialect.Operation]string{
		dialect.AccountCreate:   "CREATE USER $[USERNAME] PASSWORD '$[PASSWORD]'",
		dialect.AccountDelete:   "DROP USER $[USERNAME]",
		dialect.AccountModify:   "ALTER USER $[USERNAME] $[ATTRIBUTE_NAME] $[ATTRIBUTE_VALUE]",
		dialect.AccountPassword: "ALTER USER $[USERNAME] PASSWORD '$[PASSWORD]'",
		dialect.AccountEnable:   "ALTER USER $[USERNAME] LOGIN",
		dialect.AccountDisable:  "ALTER USER $[USERNAME] NOLOGIN",

		// PostgreSQL has no grantable system privilege catalog; the
		// privilege grant family stays unmapped.
		dialect.AccountRoleGrant:       "GRANT $[PERMISSION] TO $[USERNAME]",
		dialect.AccountRoleGrantWith:   "GRANT $[PERMISSION] TO $[USERNAME] WITH ADMIN OPTION",
		dialect.AccountRoleRevoke:      "REVOKE $[PERMISSION] FROM $[USERNAME]",
		dialect.AccountObjectGrant:     "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME]",
		dialect.AccountObjectGrantWith: "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME] WITH GRANT OPTION",
		dialect.AccountObjectRevoke:    "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[USERNAME]",

		dialect.RoleCreate:          "CREATE ROLE $[ROLENAME]",
		dialect.RoleCreateProtected: "CREATE ROLE $[ROLENAME] PASSWORD '$[PASSWORD]'",
		dialect.RoleDelete:          "DROP ROLE $[ROLENAME]",
		dialect.RoleProtect:         "ALTER ROLE $[ROLENAME] PASSWORD '$[PASSWORD]'",
		dialect.RoleUnprotect:       "ALTER ROLE $[ROLENAME] PASSWORD NULL",

		dialect.RoleRoleGrant:       "GRANT $[PERMISSION] TO $[ROLENAME]",
		dialect.RoleRoleGrantWith:   "GRANT $[PERMISSION] TO $[ROLENAME] WITH ADMIN OPTION",
		dialect.RoleRoleRevoke:      "REVOKE $[PERMISSION] FROM $[ROLENAME]",
		dialect.RoleObjectGrant:     "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME]",
		dialect.RoleObjectGrantWith: "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME] WITH GRANT OPTION",
		dialect.RoleObjectRevoke:    "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[ROLENAME]",

		dialect.SystemTime: "SELECT now()",
	}
}
