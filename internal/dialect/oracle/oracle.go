// Package oracle implements the Oracle Database dialect over the sys data
// dictionary (dba_users, dba_roles, dba_objects, dba_sys_privs, ...).
package oracle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godror/godror"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

const schema = "sys"

func init() {
	dialect.Register(dbcapabilities.Oracle, func() dialect.Dialect { return New() })
}

// Dialect is the Oracle strategy.
type Dialect struct {
	dialect.Definition
}

// New constructs the Oracle dialect with its install functions bound.
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
	return dbcapabilities.Oracle
}

// Connect opens an administrative connection using the godror driver.
// Format: user/password@host:port/service_name
func (d *Dialect) Connect(ctx context.Context, resource dialect.Resource) (*sql.DB, error) {
	connString := fmt.Sprintf("%s/%s@%s:%d/%s",
		resource.Principal,
		resource.Password,
		resource.Host,
		resource.Port,
		resource.Database)

	db, err := sql.Open("godror", connString)
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

// AccountFilter selects open user accounts.
func (d *Dialect) AccountFilter() *dbsql.Filter {
	return dbsql.Eq("account_status", "OPEN")
}

// AccountTime restricts accounts to those created at or after the instant.
func (d *Dialect) AccountTime(since time.Time) *dbsql.Filter {
	return dbsql.Ge("created", since)
}

// NormalizeError maps ORA error codes to the closed code set.
func (d *Dialect) NormalizeError(err error) dberror.Code {
	var oraErr *godror.OraErr
	if !errors.As(err, &oraErr) {
		return dberror.General
	}

	switch oraErr.Code() {
	case 1017:
		return dberror.ConnectionAuthentication
	case 1045:
		return dberror.ConnectionPermission
	case 1031:
		return dberror.InsufficientPrivilege
	case 1918, 1919:
		return dberror.ObjectNotExists
	case 1920, 1921:
		return dberror.ObjectAlreadyExists
	case 1951, 1952:
		return dberror.PermissionNotRemoved
	case 12154:
		return dberror.ConnectionUnknownHost
	case 12170:
		return dberror.ConnectionTimeout
	case 17002:
		return dberror.ConnectionCreateSocket
	default:
		return dberror.General
	}
}

// Placeholder produces Oracle numbered bind markers.
func (d *Dialect) Placeholder(i int) string {
	return fmt.Sprintf(":%d", i)
}

// Page wraps the statement with the classic ROWNUM window. The row bounds
// come from code, not user input, so they are embedded literally.
func (d *Dialect) Page(statement string, startRow, lastRow int) (string, []any) {
	return fmt.Sprintf(
		"SELECT * FROM (SELECT pageframe.*, ROWNUM rowpos FROM (%s) pageframe WHERE ROWNUM <= %d) WHERE rowpos > %d",
		statement, lastRow, startRow), nil
}

func installEntities() map[dialect.Entity]*dialect.Catalog {
	return map[dialect.Entity]*dialect.Catalog{
		dialect.EntityAccount: {
			Entity: dbsql.Entity{Schema: schema, Name: "dba_users", Primary: "username"},
			Projection: []dbsql.Attribute{
				{Physical: "user_id", Logical: "userId"},
				{Physical: "username", Logical: "userName"},
				{Physical: "account_status", Logical: "status"},
				{Physical: "default_tablespace", Logical: "defaultTableSpace"},
				{Physical: "temporary_tablespace", Logical: "temporaryTableSpace"},
				{Physical: "created", Logical: "created"},
				{Physical: "profile", Logical: "profile"},
				{Physical: "lock_date", Logical: "locked"},
				{Physical: "expiry_date", Logical: "expire"},
				{Physical: "external_name", Logical: "externalName"},
			},
		},
		dialect.EntityCatalog: {
			Entity: dbsql.Entity{Schema: schema, Name: "dba_tab_columns", Primary: "owner"},
			Projection: []dbsql.Attribute{
				{Physical: "owner", Logical: "owner"},
				{Physical: "table_name", Logical: "tableName"},
				{Physical: "column_name", Logical: "columnName"},
				{Physical: "data_type", Logical: "dataType"},
				{Physical: "nullable", Logical: "nilable"},
			},
		},
	}
}

func objectCatalog(objectType string) *dialect.Catalog {
	return &dialect.Catalog{
		Entity: dbsql.Entity{Schema: schema, Name: "dba_objects", Primary: "object_name"},
		Filter: dbsql.Eq("object_type", objectType),
		Projection: []dbsql.Attribute{
			{Physical: "owner", Logical: "owner"},
			{Physical: "object_name", Logical: "name"},
		},
	}
}

func installCatalogs() map[dialect.CatalogType]*dialect.Catalog {
	return map[dialect.CatalogType]*dialect.Catalog{
		dialect.Privilege: {
			Entity:     dbsql.Entity{Schema: schema, Name: "system_privilege_map", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.Role: {
			Entity:     dbsql.Entity{Schema: schema, Name: "dba_roles", Primary: "role"},
			Projection: []dbsql.Attribute{{Physical: "role", Logical: "name"}},
		},
		dialect.Profile: {
			Entity:     dbsql.Entity{Schema: schema, Name: "dba_profiles", Primary: "profile"},
			Projection: []dbsql.Attribute{{Physical: "profile", Logical: "name"}},
		},
		dialect.Schema: {
			Entity:     dbsql.Entity{Schema: schema, Name: "dba_users", Primary: "username"},
			Projection: []dbsql.Attribute{{Physical: "username", Logical: "name"}},
		},
		dialect.TablespacePermanent: {
			Entity:     dbsql.Entity{Schema: schema, Name: "dba_tablespaces", Primary: "tablespace_name"},
			Filter:     dbsql.Eq("contents", "PERMANENT"),
			Projection: []dbsql.Attribute{{Physical: "tablespace_name", Logical: "name"}},
		},
		dialect.TablespaceTemporary: {
			Entity:     dbsql.Entity{Schema: schema, Name: "dba_tablespaces", Primary: "tablespace_name"},
			Filter:     dbsql.Eq("contents", "TEMPORARY"),
			Projection: []dbsql.Attribute{{Physical: "tablespace_name", Logical: "name"}},
		},
		dialect.Synonym:   objectCatalog("SYNONYM"),
		dialect.Sequence:  objectCatalog("SEQUENCE"),
		dialect.Table:     objectCatalog("TABLE"),
		dialect.View:      objectCatalog("VIEW"),
		dialect.Type:      objectCatalog("TYPE"),
		dialect.Function:  objectCatalog("FUNCTION"),
		dialect.Procedure: objectCatalog("PROCEDURE"),
		dialect.Package:   objectCatalog("PACKAGE"),
		dialect.JavaClass: objectCatalog("JAVA CLASS"),
		dialect.DotNet:    objectCatalog("DOTNET"),
	}
}

func objectPermission() *dialect.Catalog {
	return &dialect.Catalog{
		Entity:  dbsql.Entity{Schema: schema, Name: "dba_tab_privs", Primary: "table_name"},
		Grantee: "grantee",
		Projection: []dbsql.Attribute{
			{Physical: "owner", Logical: "owner"},
			{Physical: "table_name", Logical: "tableName"},
			{Physical: "privilege", Logical: "permission"},
			{Physical: "grantable", Logical: "delegated"},
		},
	}
}

func installPermissions() map[dialect.CatalogType]*dialect.Catalog {
	mapping := map[dialect.CatalogType]*dialect.Catalog{
		dialect.Privilege: {
			Entity:  dbsql.Entity{Schema: schema, Name: "dba_sys_privs", Primary: "privilege"},
			Grantee: "grantee",
			Projection: []dbsql.Attribute{
				{Physical: "privilege", Logical: "name"},
				{Physical: "admin_option", Logical: "delegated"},
			},
		},
		dialect.Role: {
			Entity:  dbsql.Entity{Schema: schema, Name: "dba_role_privs", Primary: "granted_role"},
			Grantee: "grantee",
			Projection: []dbsql.Attribute{
				{Physical: "granted_role", Logical: "name"},
				{Physical: "admin_option", Logical: "delegated"},
			},
		},
	}

	// Object permissions all come from dba_tab_privs regardless of the
	// underlying object class.
	for _, t := range []dialect.CatalogType{
		dialect.Synonym, dialect.Sequence, dialect.Table, dialect.View,
		dialect.Type, dialect.Function, dialect.Procedure, dialect.Package,
		dialect.JavaClass,
	} {
		mapping[t] = objectPermission()
	}
	return mapping
}

func installOperations() map[dialect.Operation]string {
	return map[dialect.Operation]string{
		dialect.AccountCreate:   "CREATE USER $[USERNAME] IDENTIFIED BY $[PASSWORD]",
		dialect.AccountDelete:   "DROP USER $[USERNAME] CASCADE",
		dialect.AccountModify:   "ALTER USER $[USERNAME] $[ATTRIBUTE_NAME] $[ATTRIBUTE_VALUE]",
		dialect.AccountPassword: "ALTER USER $[USERNAME] IDENTIFIED BY $[PASSWORD]",
		dialect.AccountEnable:   "ALTER USER $[USERNAME] ACCOUNT UNLOCK",
		dialect.AccountDisable:  "ALTER USER $[USERNAME] ACCOUNT LOCK",

		dialect.AccountPrivilegeGrant:     "GRANT $[PERMISSION] TO $[USERNAME]",
		dialect.AccountPrivilegeGrantWith: "GRANT $[PERMISSION] TO $[USERNAME] WITH ADMIN OPTION",
		dialect.AccountPrivilegeRevoke:    "REVOKE $[PERMISSION] FROM $[USERNAME]",
		dialect.AccountRoleGrant:          "GRANT $[PERMISSION] TO $[USERNAME]",
		dialect.AccountRoleGrantWith:      "GRANT $[PERMISSION] TO $[USERNAME] WITH ADMIN OPTION",
		dialect.AccountRoleRevoke:         "REVOKE $[PERMISSION] FROM $[USERNAME]",
		dialect.AccountObjectGrant:        "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME]",
		dialect.AccountObjectGrantWith:    "GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME] WITH ADMIN OPTION",
		dialect.AccountObjectRevoke:       "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[USERNAME]",

		dialect.RoleCreate:          "CREATE ROLE $[ROLENAME]",
		dialect.RoleCreateProtected: "CREATE ROLE $[ROLENAME] IDENTIFIED BY $[PASSWORD]",
		dialect.RoleDelete:          "DROP ROLE $[ROLENAME]",
		dialect.RoleProtect:         "ALTER ROLE $[ROLENAME] IDENTIFIED BY $[PASSWORD]",
		dialect.RoleUnprotect:       "ALTER ROLE $[ROLENAME] NOT IDENTIFIED",

		dialect.RolePrivilegeGrant:     "GRANT $[PERMISSION] TO $[ROLENAME]",
		dialect.RolePrivilegeGrantWith: "GRANT $[PERMISSION] TO $[ROLENAME] WITH ADMIN OPTION",
		dialect.RolePrivilegeRevoke:    "REVOKE $[PERMISSION] FROM $[ROLENAME]",
		dialect.RoleRoleGrant:          "GRANT $[PERMISSION] TO $[ROLENAME]",
		dialect.RoleRoleGrantWith:      "GRANT $[PERMISSION] TO $[ROLENAME] WITH ADMIN OPTION",
		dialect.RoleRoleRevoke:         "REVOKE $[PERMISSION] FROM $[ROLENAME]",
		dialect.RoleObjectGrant:        "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME]",
		dialect.RoleObjectGrantWith:    "GRANT $[PERMISSION] ON $[OBJECT] TO $[ROLENAME] WITH ADMIN OPTION",
		dialect.RoleObjectRevoke:       "REVOKE $[PERMISSION] ON $[OBJECT] FROM $[ROLENAME]",

		dialect.SystemTime: "SELECT systimestamp FROM dual",
	}
}
