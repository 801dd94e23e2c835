package dbsql

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestSelect(t *testing.T) {
	entity := Entity{Schema: "sys", Name: "dba_users", Primary: "username"}
	projection := []Attribute{{Physical: "username", Logical: "name"}}

	t.Run("unfiltered", func(t *testing.T) {
		statement, args, err := Select(entity, nil, projection, numbered)
		require.NoError(t, err)
		assert.Equal(t, "SELECT username FROM sys.dba_users", statement)
		assert.Empty(t, args)
	})

	t.Run("filtered", func(t *testing.T) {
		statement, args, err := Select(entity, Eq("account_status", "OPEN"), projection, numbered)
		require.NoError(t, err)
		assert.Equal(t, "SELECT username FROM sys.dba_users WHERE account_status = $1", statement)
		assert.Equal(t, []any{"OPEN"}, args)
	})

	t.Run("multi column projection", func(t *testing.T) {
		statement, _, err := Select(entity, nil, []Attribute{
			{Physical: "granted_role", Logical: "name"},
			{Physical: "admin_option", Logical: "delegated"},
		}, numbered)
		require.NoError(t, err)
		assert.Equal(t, "SELECT granted_role, admin_option FROM sys.dba_users", statement)
	})

	t.Run("unqualified entity", func(t *testing.T) {
		statement, _, err := Select(Entity{Name: "pg_roles", Primary: "rolname"}, nil, projection, numbered)
		require.NoError(t, err)
		assert.Equal(t, "SELECT username FROM pg_roles", statement)
	})

	t.Run("empty projection rejected", func(t *testing.T) {
		_, _, err := Select(entity, nil, nil, numbered)
		assert.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	entity := Entity{Name: "accounts", Primary: "username"}
	projection := []Attribute{{Physical: "username", Logical: "name"}}
	limitOffset := func(statement string, startRow, lastRow int) (string, []any) {
		return fmt.Sprintf("%s LIMIT %d OFFSET %d", statement, lastRow-startRow, startRow), nil
	}

	statement, args, err := Search(entity, Eq("enabled", 1), projection, numbered, limitOffset, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "SELECT username FROM accounts WHERE enabled = $1 ORDER BY username LIMIT 10 OFFSET 0", statement)
	assert.Equal(t, []any{1}, args)
}

func TestExecute(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE accounts (username TEXT PRIMARY KEY, enabled INTEGER)`)
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err = db.ExecContext(ctx, `INSERT INTO accounts (username, enabled) VALUES (?, ?)`, fmt.Sprintf("user%02d", i), i%2)
		require.NoError(t, err)
	}

	rows, err := Execute(ctx, db, `SELECT username, enabled FROM accounts ORDER BY username`)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	name, ok := Value(rows[0], "username")
	require.True(t, ok)
	assert.Equal(t, "user01", name)

	_, ok = Value(rows[0], "USERNAME")
	assert.True(t, ok, "column match is case-insensitive")

	_, ok = Value(rows[0], "missing")
	assert.False(t, ok)
}
