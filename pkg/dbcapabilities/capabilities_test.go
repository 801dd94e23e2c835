package dbcapabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDriver(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expectedID DatabaseID
		expectOK   bool
	}{
		{
			name:       "godror driver name",
			identifier: "godror",
			expectedID: Oracle,
			expectOK:   true,
		},
		{
			name:       "oracle jdbc class",
			identifier: "oracle.jdbc.OracleDriver",
			expectedID: Oracle,
			expectOK:   true,
		},
		{
			name:       "legacy oracle jdbc class",
			identifier: "oracle.jdbc.driver.OracleDriver",
			expectedID: Oracle,
			expectOK:   true,
		},
		{
			name:       "postgres driver name",
			identifier: "postgres",
			expectedID: PostgreSQL,
			expectOK:   true,
		},
		{
			name:       "postgres jdbc class",
			identifier: "org.postgresql.Driver",
			expectedID: PostgreSQL,
			expectOK:   true,
		},
		{
			name:       "mysql cj jdbc class",
			identifier: "com.mysql.cj.jdbc.Driver",
			expectedID: MySQL,
			expectOK:   true,
		},
		{
			name:       "sqlserver driver name",
			identifier: "sqlserver",
			expectedID: SQLServer,
			expectOK:   true,
		},
		{
			name:       "sqlserver jdbc class",
			identifier: "com.microsoft.sqlserver.jdbc.SQLServerDriver",
			expectedID: SQLServer,
			expectOK:   true,
		},
		{
			name:       "sqlite3 driver name",
			identifier: "sqlite3",
			expectedID: SQLite,
			expectOK:   true,
		},
		{
			name:       "case insensitive match",
			identifier: "GODROR",
			expectedID: Oracle,
			expectOK:   true,
		},
		{
			name:       "alias falls through",
			identifier: "postgresql",
			expectedID: PostgreSQL,
			expectOK:   true,
		},
		{
			name:       "whitespace trimmed",
			identifier: "  mysql  ",
			expectedID: MySQL,
			expectOK:   true,
		},
		{
			name:       "unknown identifier",
			identifier: "org.h2.Driver",
			expectOK:   false,
		},
		{
			name:       "empty identifier",
			identifier: "",
			expectOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseDriver(tt.identifier)
			assert.Equal(t, tt.expectOK, ok)
			if tt.expectOK {
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		expectedID DatabaseID
		expectOK   bool
	}{
		{name: "canonical id", input: "oracle", expectedID: Oracle, expectOK: true},
		{name: "mixed case canonical", input: "MySQL", expectedID: MySQL, expectOK: true},
		{name: "alias", input: "orcl", expectedID: Oracle, expectOK: true},
		{name: "mariadb alias", input: "mariadb", expectedID: MySQL, expectOK: true},
		{name: "unknown", input: "cassandra", expectOK: false},
		{name: "empty", input: "", expectOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseID(tt.input)
			assert.Equal(t, tt.expectOK, ok)
			if tt.expectOK {
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}

func TestRegistryConsistency(t *testing.T) {
	for id, capability := range All {
		require.Equal(t, id, capability.ID, "registry key must match capability ID")
		require.NotEmpty(t, capability.Name)
		require.NotEmpty(t, capability.Drivers)

		for _, driver := range capability.Drivers {
			resolved, ok := ParseDriver(driver)
			require.True(t, ok, "driver %q must resolve", driver)
			assert.Equal(t, id, resolved)
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(All))
	assert.Contains(t, names, "PostgreSQL")
	assert.Contains(t, names, "Oracle Database")
}
