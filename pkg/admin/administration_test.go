package admin

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
	"github.com/redbco/redb-dbadmin/pkg/logger"

	_ "github.com/redbco/redb-dbadmin/internal/dialect/sqlite"
)

func fixture(t *testing.T) (*Administration, *logger.Logger) {
	t.Helper()

	log := logger.New("dbadmin-test", "0.0.0")
	log.DisableConsoleOutput()

	a := New(dialect.Resource{
		Name:      "fixture",
		Driver:    "sqlite",
		Principal: "igsadmin",
	}, log)

	ctx := context.Background()
	require.NoError(t, a.Connect(ctx))
	t.Cleanup(a.Disconnect)

	for _, statement := range []string{
		`CREATE TABLE accounts (username TEXT PRIMARY KEY, enabled INTEGER NOT NULL DEFAULT 1, created TEXT)`,
		`CREATE TABLE roles (name TEXT PRIMARY KEY)`,
		`CREATE TABLE granted_roles (grantee TEXT, name TEXT, delegated INTEGER)`,
		`CREATE TABLE granted_privileges (grantee TEXT, name TEXT, delegated INTEGER)`,
	} {
		_, err := a.conn.ExecContext(ctx, statement)
		require.NoError(t, err)
	}
	return a, log
}

func countWarnings(entries <-chan logger.LogEntry, substring string) int {
	count := 0
	for {
		select {
		case entry := <-entries:
			if entry.Level == "WARN" && strings.Contains(entry.Message, substring) {
				count++
			}
		default:
			return count
		}
	}
}

func TestConnectionStateMachine(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	t.Run("connect while connected is illegal", func(t *testing.T) {
		err := a.Connect(ctx)
		assert.True(t, dberror.IsCode(err, dberror.InstanceIllegalState))
	})

	t.Run("operations require a connection", func(t *testing.T) {
		a.Disconnect()

		_, err := a.LookupRoles(ctx)
		assert.True(t, dberror.IsCode(err, dberror.InstanceAttributeNull))

		err = a.AccountDelete(ctx, "alice")
		assert.True(t, dberror.IsCode(err, dberror.InstanceAttributeNull))

		// Disconnect when unconnected is a no-op.
		a.Disconnect()

		require.NoError(t, a.Connect(ctx))
	})
}

func TestNeverConnectedFailsFast(t *testing.T) {
	log := logger.New("dbadmin-test", "0.0.0")
	log.DisableConsoleOutput()

	a := New(dialect.Resource{Name: "fixture", Driver: "sqlite"}, log)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"accountDelete", func() error { return a.AccountDelete(ctx, "alice") }},
		{"accountEnable", func() error { return a.AccountEnable(ctx, "alice") }},
		{"accountModify", func() error { return a.AccountModify(ctx, "alice", "profile", "default") }},
		{"roleCreate", func() error { return a.RoleCreate(ctx, "operators", "") }},
		{"roleDelete", func() error { return a.RoleDelete(ctx, "operators") }},
		{"rolePassword", func() error { return a.RolePassword(ctx, "operators", "secret") }},
		{"accountRoleGrant", func() error { return a.AccountRoleGrant(ctx, "alice", "operators", false) }},
		{"accountRoleRevoke", func() error { return a.AccountRoleRevoke(ctx, "alice", "operators") }},
		{"accountPrivilegeGrant", func() error { return a.AccountPrivilegeGrant(ctx, "alice", "CREATE SESSION", true) }},
		{"roleObjectRevoke", func() error { return a.RoleObjectRevoke(ctx, "operators", "SELECT", "accounts") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.True(t, dberror.IsCode(err, dberror.InstanceAttributeNull))
		})
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	log := logger.New("dbadmin-test", "0.0.0")
	log.DisableConsoleOutput()

	a := New(dialect.Resource{Name: "fixture", Driver: "org.h2.Driver"}, log)
	err := a.Connect(context.Background())
	assert.True(t, dberror.IsCode(err, dberror.DialectNotFound))
}

func TestSystemTime(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	ts, err := a.SystemTime(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts.UTC(), time.Minute)

	// Disconnection falls back to wall-clock time, never an error.
	a.Disconnect()
	ts, err = a.SystemTime(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestLookupRolesWithExclusions(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	for _, name := range []string{"SYS", "PUBLIC", "OPERATORS", "READERS"} {
		_, err := a.conn.ExecContext(ctx, `INSERT INTO roles (name) VALUES (?)`, name)
		require.NoError(t, err)
	}

	names, err := a.LookupRoles(ctx, "SYS", "PUBLIC")
	require.NoError(t, err)
	assert.Equal(t, []string{"OPERATORS", "READERS"}, names)
	assert.NotContains(t, names, "SYS")
	assert.NotContains(t, names, "PUBLIC")
}

func TestLookupUnsupportedCatalog(t *testing.T) {
	a, log := fixture(t)
	entries := log.Subscribe()

	names, err := a.LookupProfiles(context.Background())
	require.NoError(t, err)
	assert.Nil(t, names)
	assert.Equal(t, 1, countWarnings(entries, "not supported"))
}

func TestLookupTables(t *testing.T) {
	a, _ := fixture(t)

	names, err := a.LookupTables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "accounts")
	assert.Contains(t, names, "roles")
}

func TestLoadGrantedRolesExclusions(t *testing.T) {
	a, log := fixture(t)
	ctx := context.Background()

	grants := []struct {
		name      string
		delegated int
	}{
		{"DBA", 1},
		{"OPERATORS", 0},
		{"READERS", 1},
	}
	for _, grant := range grants {
		_, err := a.conn.ExecContext(ctx,
			`INSERT INTO granted_roles (grantee, name, delegated) VALUES (?, ?, ?)`,
			"alice", grant.name, grant.delegated)
		require.NoError(t, err)
	}

	entries := log.Subscribe()
	granted, err := a.LoadGrantedRoles(ctx, "alice", "role audit", "DBA")
	require.NoError(t, err)

	require.Len(t, granted, 2)
	for _, entry := range granted {
		assert.NotEqual(t, "DBA", entry.Key)
	}
	assert.Equal(t, "OPERATORS", granted[0].Name)
	assert.False(t, granted[0].Delegated)
	assert.Equal(t, "READERS", granted[1].Name)
	assert.True(t, granted[1].Delegated)

	// Exactly one exclusion event per removed entry.
	assert.Equal(t, 1, countWarnings(entries, "role audit"))
}

func TestLoadGrantedUnsupported(t *testing.T) {
	a, log := fixture(t)
	entries := log.Subscribe()

	granted, err := a.LoadGrantedPermission(context.Background(), "alice", dialect.Table)
	require.NoError(t, err)
	assert.Nil(t, granted)
	assert.Equal(t, 1, countWarnings(entries, "not supported"))
}

func TestAccountSearchPagination(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		_, err := a.conn.ExecContext(ctx,
			`INSERT INTO accounts (username, enabled, created) VALUES (?, 1, '2026-01-01 00:00:00')`,
			fmt.Sprintf("user%02d", i))
		require.NoError(t, err)
	}
	// Disabled accounts fall outside the account filter.
	_, err := a.conn.ExecContext(ctx,
		`INSERT INTO accounts (username, enabled, created) VALUES ('locked', 0, '2026-01-01 00:00:00')`)
	require.NoError(t, err)

	page, err := a.AccountSearch(ctx, nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, "user01", page[0])
	assert.Equal(t, "user10", page[9])
	for _, name := range page {
		assert.Equal(t, strings.TrimSpace(name), name)
	}

	rest, err := a.AccountSearch(ctx, nil, 10, 20)
	require.NoError(t, err)
	assert.Len(t, rest, 5)
	assert.Equal(t, "user15", rest[4])
}

func TestAccountSearchSince(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	_, err := a.conn.ExecContext(ctx,
		`INSERT INTO accounts (username, enabled, created) VALUES ('old', 1, ?), ('new', 1, ?)`,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	page, err := a.AccountSearch(ctx, &since, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, page)
}

// timelessDialect behaves like vendors whose account relation records no
// change timestamps.
type timelessDialect struct{ dialect.Dialect }

func (timelessDialect) AccountTime(time.Time) *dbsql.Filter { return nil }

func TestAccountSearchSinceUnsupported(t *testing.T) {
	a, log := fixture(t)
	ctx := context.Background()

	_, err := a.conn.ExecContext(ctx,
		`INSERT INTO accounts (username, enabled, created) VALUES ('old', 1, ?)`,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	a.dialect = timelessDialect{a.dialect}

	entries := log.Subscribe()
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	page, err := a.AccountSearch(ctx, &since, 0, 10)
	require.NoError(t, err)

	// The restriction is dropped with a warning, never applied as an
	// empty predicate.
	assert.Equal(t, []string{"old"}, page)
	assert.Equal(t, 1, countWarnings(entries, "time restriction"))
}

func TestAccountLifecycle(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	t.Run("create requires username and password", func(t *testing.T) {
		err := a.AccountCreate(ctx, map[string]string{dialect.ParamUsername: "alice"})
		assert.True(t, dberror.IsCode(err, dberror.InsufficientInformation))

		err = a.AccountCreate(ctx, map[string]string{dialect.ParamPassword: "secret"})
		assert.True(t, dberror.IsCode(err, dberror.InsufficientInformation))

		// Fast fail means no partial side effects.
		page, err := a.AccountSearch(ctx, nil, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("create, disable, enable, delete", func(t *testing.T) {
		require.NoError(t, a.AccountCreate(ctx, map[string]string{
			dialect.ParamUsername: "alice",
			dialect.ParamPassword: "Sommer2020",
		}))

		detail, err := a.AccountDetail(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", detail["userName"])

		require.NoError(t, a.AccountDisable(ctx, "alice"))
		page, err := a.AccountSearch(ctx, nil, 0, 10)
		require.NoError(t, err)
		assert.NotContains(t, page, "alice")

		require.NoError(t, a.AccountEnable(ctx, "alice"))
		page, err = a.AccountSearch(ctx, nil, 0, 10)
		require.NoError(t, err)
		assert.Contains(t, page, "alice")

		require.NoError(t, a.AccountDelete(ctx, "alice"))
		_, err = a.AccountDetail(ctx, "alice")
		assert.True(t, dberror.IsCode(err, dberror.ObjectNotExists))
	})

	t.Run("duplicate create reads as already exists", func(t *testing.T) {
		attributes := map[string]string{
			dialect.ParamUsername: "bob",
			dialect.ParamPassword: "Winter2026",
		}
		require.NoError(t, a.AccountCreate(ctx, attributes))

		err := a.AccountCreate(ctx, attributes)
		assert.True(t, dberror.IsCode(err, dberror.ObjectAlreadyExists))
	})

	t.Run("password unsupported by this dialect", func(t *testing.T) {
		err := a.AccountPassword(ctx, "bob", "NewSecret1")
		assert.True(t, dberror.IsCode(err, dberror.OperationNotSupported))
	})
}

func TestGrantRevokeRoundTrip(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	require.NoError(t, a.AccountCreate(ctx, map[string]string{
		dialect.ParamUsername: "alice",
		dialect.ParamPassword: "Sommer2020",
	}))
	require.NoError(t, a.RoleCreate(ctx, "operators", ""))

	require.NoError(t, a.AccountRoleGrant(ctx, "alice", "operators", false))
	require.NoError(t, a.AccountRoleGrant(ctx, "alice", "auditors", true))

	granted, err := a.LoadGrantedRoles(ctx, "alice", "audit")
	require.NoError(t, err)
	require.Len(t, granted, 2)

	byName := map[string]Granted{}
	for _, entry := range granted {
		byName[entry.Name] = entry
	}
	assert.False(t, byName["operators"].Delegated)
	assert.True(t, byName["auditors"].Delegated)

	require.NoError(t, a.AccountRoleRevoke(ctx, "alice", "auditors"))
	granted, err = a.LoadGrantedRoles(ctx, "alice", "audit")
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, "operators", granted[0].Name)

	require.NoError(t, a.AccountPrivilegeGrant(ctx, "alice", "CREATE SESSION", false))
	privileges, err := a.LoadGrantedPrivileges(ctx, "alice", "audit")
	require.NoError(t, err)
	require.Len(t, privileges, 1)
	assert.Equal(t, "CREATE SESSION", privileges[0].Name)
}

func TestUnsupportedOperations(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	err := a.RolePassword(ctx, "operators", "secret")
	assert.True(t, dberror.IsCode(err, dberror.OperationNotSupported))

	err = a.RoleObjectGrant(ctx, "operators", "SELECT", "accounts", false)
	assert.True(t, dberror.IsCode(err, dberror.OperationNotSupported))
}

func TestRoleLifecycle(t *testing.T) {
	a, _ := fixture(t)
	ctx := context.Background()

	require.NoError(t, a.RoleCreate(ctx, "operators", ""))

	err := a.RoleCreate(ctx, "operators", "")
	assert.True(t, dberror.IsCode(err, dberror.ObjectAlreadyExists))

	err = a.RoleCreate(ctx, "", "")
	assert.True(t, dberror.IsCode(err, dberror.InsufficientInformation))

	require.NoError(t, a.RoleDelete(ctx, "operators"))

	roles, err := a.LookupRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)
}
