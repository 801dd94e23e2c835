package dialect

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
)

type stubDialect struct {
	Definition
}

func (s *stubDialect) Type() dbcapabilities.DatabaseID { return dbcapabilities.Oracle }
func (s *stubDialect) Connect(context.Context, Resource) (*sql.DB, error) {
	return nil, nil
}
func (s *stubDialect) AccountFilter() *dbsql.Filter           { return nil }
func (s *stubDialect) AccountTime(time.Time) *dbsql.Filter    { return nil }
func (s *stubDialect) NormalizeError(error) dberror.Code      { return dberror.General }
func (s *stubDialect) Placeholder(int) string                 { return "?" }
func (s *stubDialect) Page(st string, _, _ int) (string, []any) { return st, nil }

func TestCreate(t *testing.T) {
	Register(dbcapabilities.Oracle, func() Dialect { return &stubDialect{} })

	t.Run("registered lists the constructor ids", func(t *testing.T) {
		assert.Contains(t, Registered(), dbcapabilities.Oracle)
	})

	t.Run("resolves a registered driver identifier", func(t *testing.T) {
		d, err := Create("oracle.jdbc.OracleDriver")
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, dbcapabilities.Oracle, d.Type())
	})

	t.Run("distinct instances per call", func(t *testing.T) {
		first, err := Create("godror")
		require.NoError(t, err)
		second, err := Create("godror")
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		d, err := Create("org.h2.Driver")
		assert.Nil(t, d)
		assert.True(t, dberror.IsCode(err, dberror.DialectNotFound))
	})

	t.Run("known database without a registered dialect", func(t *testing.T) {
		d, err := Create("com.microsoft.sqlserver.jdbc.SQLServerDriver")
		if d != nil {
			// The mssql dialect registers itself when its package is linked
			// in; this test package does not import it.
			t.Skip("mssql dialect registered by another test import")
		}
		assert.True(t, dberror.IsCode(err, dberror.DialectNotFound))
	})

	t.Run("nil construction", func(t *testing.T) {
		Register(dbcapabilities.MySQL, func() Dialect { return nil })
		d, err := Create("mysql")
		assert.Nil(t, d)
		assert.True(t, dberror.IsCode(err, dberror.DialectNotCreated))
	})
}
