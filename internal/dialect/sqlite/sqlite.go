// Package sqlite implements a small administrative dialect over SQLite.
// SQLite has no account or privilege system, so the administrative entities
// map onto regular tables (accounts, roles, granted_roles,
// granted_privileges) while the data dictionary maps onto sqlite_master.
// The engine uses it as an embedded fixture vendor; most operations are
// deliberately unmapped and exercise the unsupported paths.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "modernc.org/sqlite"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

func init() {
	dialect.Register(dbcapabilities.SQLite, func() dialect.Dialect { return New() })
}

// Dialect is the SQLite strategy.
type Dialect struct {
	dialect.Definition
}

// New constructs the SQLite dialect with its install functions bound.
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
	return dbcapabilities.SQLite
}

// Connect opens the database file named by the resource. An empty database
// name opens an in-memory instance.
func (d *Dialect) Connect(ctx context.Context, resource dialect.Resource) (*sql.DB, error) {
	name := resource.Database
	if name == "" {
		name = ":memory:"
	}

	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, err
	}

	// A single connection keeps in-memory databases alive and visible
	// across statements.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// AccountFilter selects enabled fixture accounts.
func (d *Dialect) AccountFilter() *dbsql.Filter {
	return dbsql.Eq("enabled", 1)
}

// AccountTime restricts accounts to those created at or after the instant.
func (d *Dialect) AccountTime(since time.Time) *dbsql.Filter {
	return dbsql.Ge("created", since)
}

// NormalizeError maps SQLite result codes to the closed code set. Extended
// constraint codes share the low-byte primary code 19.
func (d *Dialect) NormalizeError(err error) dberror.Code {
	var sqliteErr *sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return dberror.General
	}

	switch sqliteErr.Code() & 0xff {
	case 19:
		return dberror.ObjectAlreadyExists
	case 8:
		return dberror.InsufficientPrivilege
	case 14:
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
			Entity: dbsql.Entity{Name: "accounts", Primary: "username"},
			Projection: []dbsql.Attribute{
				{Physical: "username", Logical: "userName"},
				{Physical: "enabled", Logical: "status"},
				{Physical: "created", Logical: "created"},
			},
		},
	}
}

func installCatalogs() map[dialect.CatalogType]*dialect.Catalog {
	return map[dialect.CatalogType]*dialect.Catalog{
		dialect.Role: {
			Entity:     dbsql.Entity{Name: "roles", Primary: "name"},
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.Table: {
			Entity:     dbsql.Entity{Name: "sqlite_master", Primary: "name"},
			Filter:     dbsql.Eq("type", "table"),
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
		dialect.View: {
			Entity:     dbsql.Entity{Name: "sqlite_master", Primary: "name"},
			Filter:     dbsql.Eq("type", "view"),
			Projection: []dbsql.Attribute{{Physical: "name", Logical: "name"}},
		},
	}
}

func installPermissions() map[dialect.CatalogType]*dialect.Catalog {
	return map[dialect.CatalogType]*dialect.Catalog{
		dialect.Role: {
			Entity:  dbsql.Entity{Name: "granted_roles", Primary: "name"},
			Grantee: "grantee",
			Projection: []dbsql.Attribute{
				{Physical: "name", Logical: "name"},
				{Physical: "delegated", Logical: "delegated"},
			},
		},
		dialect.Privilege: {
			Entity:  dbsql.Entity{Name: "granted_privileges", Primary: "name"},
			Grantee: "grantee",
			Projection: []dbsql.Attribute{
				{Physical: "name", Logical: "name"},
				{Physical: "delegated", Logical: "delegated"},
			},
		},
	}
}

func installOperations() map[dialect.Operation]string {
	return map[dialect.Operation]string{
		dialect.AccountCreate:  "INSERT INTO accounts (username, enabled) VALUES ('$[USERNAME]', 1)",
		dialect.AccountDelete:  "DELETE FROM accounts WHERE username = '$[USERNAME]'",
		dialect.AccountEnable:  "UPDATE accounts SET enabled = 1 WHERE username = '$[USERNAME]'",
		dialect.AccountDisable: "UPDATE accounts SET enabled = 0 WHERE username = '$[USERNAME]'",
		dialect.AccountModify:  "UPDATE accounts SET $[ATTRIBUTE_NAME] = $[ATTRIBUTE_VALUE] WHERE username = '$[USERNAME]'",

		dialect.AccountPrivilegeGrant:  "INSERT INTO granted_privileges (grantee, name, delegated) VALUES ('$[USERNAME]', '$[PERMISSION]', 0)",
		dialect.AccountPrivilegeRevoke: "DELETE FROM granted_privileges WHERE grantee = '$[USERNAME]' AND name = '$[PERMISSION]'",
		dialect.AccountRoleGrant:       "INSERT INTO granted_roles (grantee, name, delegated) VALUES ('$[USERNAME]', '$[PERMISSION]', 0)",
		dialect.AccountRoleGrantWith:   "INSERT INTO granted_roles (grantee, name, delegated) VALUES ('$[USERNAME]', '$[PERMISSION]', 1)",
		dialect.AccountRoleRevoke:      "DELETE FROM granted_roles WHERE grantee = '$[USERNAME]' AND name = '$[PERMISSION]'",

		dialect.RoleCreate: "INSERT INTO roles (name) VALUES ('$[ROLENAME]')",
		dialect.RoleDelete: "DELETE FROM roles WHERE name = '$[ROLENAME]'",

		dialect.RoleRoleGrant:  "INSERT INTO granted_roles (grantee, name, delegated) VALUES ('$[ROLENAME]', '$[PERMISSION]', 0)",
		dialect.RoleRoleRevoke: "DELETE FROM granted_roles WHERE grantee = '$[ROLENAME]' AND name = '$[PERMISSION]'",

		dialect.SystemTime: "SELECT datetime('now')",
	}
}
