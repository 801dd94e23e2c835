package dbsql

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(i int) string { return fmt.Sprintf("$%d", i) }

func TestWhere(t *testing.T) {
	tests := []struct {
		name           string
		filter         *Filter
		expectedClause string
		expectedArgs   []any
	}{
		{
			name:           "nil filter is unrestricted",
			filter:         nil,
			expectedClause: "",
			expectedArgs:   nil,
		},
		{
			name:           "equality",
			filter:         Eq("username", "alice"),
			expectedClause: "username = $1",
			expectedArgs:   []any{"alice"},
		},
		{
			name:           "comparison operators",
			filter:         And(Ge("created", "2024-01-01"), Lt("created", "2025-01-01")),
			expectedClause: "(created >= $1 AND created < $2)",
			expectedArgs:   []any{"2024-01-01", "2025-01-01"},
		},
		{
			name:           "like",
			filter:         Like("table_name", "EMP%"),
			expectedClause: "table_name LIKE $1",
			expectedArgs:   []any{"EMP%"},
		},
		{
			name:           "in expands slice values",
			filter:         In("grantee", []string{"SYS", "PUBLIC"}),
			expectedClause: "grantee IN ($1, $2)",
			expectedArgs:   []any{"SYS", "PUBLIC"},
		},
		{
			name:           "not",
			filter:         Not(Eq("account_status", "LOCKED")),
			expectedClause: "NOT account_status = $1",
			expectedArgs:   []any{"LOCKED"},
		},
		{
			name:           "nested composition",
			filter:         Or(Eq("kind", "TABLE"), And(Eq("kind", "VIEW"), NotEq("owner", "SYS"))),
			expectedClause: "(kind = $1 OR (kind = $2 AND owner <> $3))",
			expectedArgs:   []any{"TABLE", "VIEW", "SYS"},
		},
		{
			name:           "and skips nil children",
			filter:         And(nil, Eq("username", "alice"), nil),
			expectedClause: "username = $1",
			expectedArgs:   []any{"alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args, err := Where(tt.filter, numbered)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedClause, clause)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestWhereRejectsBadIn(t *testing.T) {
	_, _, err := Where(In("grantee", "not-a-slice"), numbered)
	assert.Error(t, err)

	_, _, err = Where(In("grantee", []string{}), numbered)
	assert.Error(t, err)
}

func TestAndCollapses(t *testing.T) {
	assert.Nil(t, And(nil, nil))
	assert.Nil(t, Not(nil))

	single := Eq("username", "alice")
	assert.Same(t, single, And(single, nil))
	assert.Same(t, single, Or(nil, single))
}
