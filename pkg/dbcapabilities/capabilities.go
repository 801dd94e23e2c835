// Package dbcapabilities describes the database technologies the
// administration engine can manage and how to recognize them from
// configuration values such as driver identifiers.
package dbcapabilities

import "strings"

// DatabaseID is the canonical identifier for a database technology supported
// by the administration engine. Use these constants to look up capability
// information.
type DatabaseID string

const (
	Oracle     DatabaseID = "oracle"
	PostgreSQL DatabaseID = "postgres"
	MySQL      DatabaseID = "mysql"
	SQLServer  DatabaseID = "mssql"
	SQLite     DatabaseID = "sqlite"
)

// Capability describes what a database supports in a way that the
// administration layers can consume uniformly.
type Capability struct {
	// Human-friendly vendor or product name, e.g., "PostgreSQL".
	Name string `json:"name"`

	// Canonical ID used across the codebase (see DatabaseID constants).
	ID DatabaseID `json:"id"`

	// Schema owning the data dictionary relations, if the vendor has one.
	SystemSchema string `json:"systemSchema,omitempty"`

	// Driver identifiers that select this database: the database/sql driver
	// name plus the legacy driver class names carried over from connector
	// configurations.
	Drivers []string `json:"drivers"`

	// Common aliases (directory names, env labels) that map to this database.
	Aliases []string `json:"aliases,omitempty"`

	// Whether the vendor has a real account and privilege system. SQLite
	// does not; its dialect maps the administrative entities onto regular
	// tables instead.
	HasAccounts bool `json:"hasAccounts"`
}

// All is a registry of capabilities keyed by the canonical database ID.
var All = map[DatabaseID]Capability{
	Oracle: {
		Name:         "Oracle Database",
		ID:           Oracle,
		SystemSchema: "sys",
		Drivers:      []string{"godror", "oracle.jdbc.OracleDriver", "oracle.jdbc.driver.OracleDriver"},
		Aliases:      []string{"orcl", "oracledb"},
		HasAccounts:  true,
	},
	PostgreSQL: {
		Name:         "PostgreSQL",
		ID:           PostgreSQL,
		SystemSchema: "pg_catalog",
		Drivers:      []string{"postgres", "org.postgresql.Driver"},
		Aliases:      []string{"postgresql", "pgsql"},
		HasAccounts:  true,
	},
	MySQL: {
		Name:         "MySQL",
		ID:           MySQL,
		SystemSchema: "mysql",
		Drivers:      []string{"mysql", "com.mysql.jdbc.Driver", "com.mysql.cj.jdbc.Driver"},
		Aliases:      []string{"mariadb", "aurora-mysql"},
		HasAccounts:  true,
	},
	SQLServer: {
		Name:         "Microsoft SQL Server",
		ID:           SQLServer,
		SystemSchema: "sys",
		Drivers:      []string{"sqlserver", "com.microsoft.sqlserver.jdbc.SQLServerDriver"},
		Aliases:      []string{"sqlserver", "microsoft"},
		HasAccounts:  true,
	},
	SQLite: {
		Name:        "SQLite",
		ID:          SQLite,
		Drivers:     []string{"sqlite", "sqlite3", "org.sqlite.JDBC"},
		Aliases:     []string{"sqlite3"},
		HasAccounts: false,
	},
}

// ParseID resolves a canonical ID or a known alias to a DatabaseID.
func ParseID(name string) (DatabaseID, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", false
	}

	if capability, ok := All[DatabaseID(normalized)]; ok {
		return capability.ID, true
	}

	for id, capability := range All {
		for _, alias := range capability.Aliases {
			if alias == normalized {
				return id, true
			}
		}
	}

	return "", false
}

// ParseDriver resolves an opaque driver identifier, either a database/sql
// driver name or a legacy driver class name, to a DatabaseID.
func ParseDriver(identifier string) (DatabaseID, bool) {
	normalized := strings.TrimSpace(identifier)
	if normalized == "" {
		return "", false
	}

	for id, capability := range All {
		for _, driver := range capability.Drivers {
			if strings.EqualFold(driver, normalized) {
				return id, true
			}
		}
	}

	// Fall back to name and alias matching so a plain product name also
	// selects the dialect.
	return ParseID(normalized)
}

// Names returns the human-friendly names of all supported databases.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, capability := range All {
		names = append(names, capability.Name)
	}
	return names
}
