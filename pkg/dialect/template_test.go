package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		parameters map[string]string
		expected   string
	}{
		{
			name:       "no placeholders is identity",
			template:   "SELECT systimestamp FROM dual",
			parameters: map[string]string{ParamUsername: "alice"},
			expected:   "SELECT systimestamp FROM dual",
		},
		{
			name:       "single substitution",
			template:   "DROP USER $[USERNAME]",
			parameters: map[string]string{ParamUsername: "alice"},
			expected:   "DROP USER alice",
		},
		{
			name:       "every occurrence replaced",
			template:   "ALTER USER $[USERNAME] ACCOUNT LOCK -- $[USERNAME]",
			parameters: map[string]string{ParamUsername: "alice"},
			expected:   "ALTER USER alice ACCOUNT LOCK -- alice",
		},
		{
			name:       "multiple placeholders",
			template:   "CREATE USER $[USERNAME] IDENTIFIED BY $[PASSWORD]",
			parameters: map[string]string{ParamUsername: "alice", ParamPassword: "Sommer2020"},
			expected:   "CREATE USER alice IDENTIFIED BY Sommer2020",
		},
		{
			name:       "missing parameter left untouched",
			template:   "GRANT $[PERMISSION] TO $[USERNAME]",
			parameters: map[string]string{ParamUsername: "alice"},
			expected:   "GRANT $[PERMISSION] TO alice",
		},
		{
			name:       "empty value left untouched",
			template:   "GRANT $[PERMISSION] TO $[USERNAME]",
			parameters: map[string]string{ParamUsername: "alice", ParamPermission: ""},
			expected:   "GRANT $[PERMISSION] TO alice",
		},
		{
			name:       "nil parameter map",
			template:   "DROP USER $[USERNAME]",
			parameters: nil,
			expected:   "DROP USER $[USERNAME]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.template, nil, tt.parameters))
		})
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	parameters := map[string]string{ParamUsername: "alice"}
	once := Render("DROP USER $[USERNAME]", nil, parameters)
	twice := Render(once, nil, parameters)
	assert.Equal(t, once, twice)
}

func TestUnresolved(t *testing.T) {
	assert.Nil(t, Unresolved("DROP USER alice"))
	assert.Equal(t, []string{"PERMISSION"}, Unresolved("GRANT $[PERMISSION] TO alice"))
	assert.Equal(t,
		[]string{"PERMISSION", "OBJECT", "USERNAME"},
		Unresolved("GRANT $[PERMISSION] ON $[OBJECT] TO $[USERNAME]"))
}
