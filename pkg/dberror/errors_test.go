package dberror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "connection error carries resource",
			err:      New(ConnectionError, "connect").WithResource("hr-prod"),
			expected: `[connection-error] connection to resource "hr-prod" failed`,
		},
		{
			name:     "authentication carries principal and resource",
			err:      New(ConnectionAuthentication, "connect").WithResource("hr-prod").WithPrincipal("igsadmin"),
			expected: `[connection-authentication] authentication failed for principal "igsadmin" at resource "hr-prod"`,
		},
		{
			name:     "already exists carries subject",
			err:      New(ObjectAlreadyExists, "accountCreate").WithSubject("alice"),
			expected: "[object-already-exists] alice already exists",
		},
		{
			name:     "insufficient privilege carries principal",
			err:      New(InsufficientPrivilege, "roleCreate").WithPrincipal("igsadmin"),
			expected: `[insufficient-privilege] principal "igsadmin" has insufficient privileges for roleCreate`,
		},
		{
			name:     "unsupported carries operation",
			err:      New(OperationNotSupported, "rolePassword"),
			expected: "[operation-not-supported] operation rolePassword is not supported by this dialect",
		},
		{
			name:     "dialect not found carries identifier",
			err:      New(DialectNotFound, "create").WithSubject("org.h2.Driver"),
			expected: `[dialect-not-found] no dialect registered for identifier "org.h2.Driver"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorCauseFormatting(t *testing.T) {
	cause := errors.New("ORA-01031: insufficient privileges")
	err := New(InsufficientPrivilege, "accountCreate").WithPrincipal("igsadmin").WithCause(cause)

	assert.Contains(t, err.Error(), "ORA-01031")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrap(t *testing.T) {
	t.Run("nil cause yields nil", func(t *testing.T) {
		assert.NoError(t, Wrap(General, "op", nil))
	})

	t.Run("wraps a native error once", func(t *testing.T) {
		native := errors.New("native failure")
		wrapped := Wrap(ObjectNotCreated, "accountCreate", native)

		var typed *Error
		require.ErrorAs(t, wrapped, &typed)
		assert.Equal(t, ObjectNotCreated, typed.Code)
		assert.ErrorIs(t, wrapped, native)
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := New(ObjectNotExists, "accountDelete").WithSubject("alice")
		wrapped := Wrap(General, "accountDelete", inner)
		assert.Same(t, error(inner), wrapped)
	})

	t.Run("does not rewrap a decorated typed error", func(t *testing.T) {
		inner := fmt.Errorf("context: %w", New(ObjectNotExists, "accountDelete"))
		wrapped := Wrap(General, "accountDelete", inner)
		assert.Equal(t, ObjectNotExists, CodeOf(wrapped))
	})
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(ObjectAlreadyExists, "accountCreate").WithSubject("alice")
	b := New(ObjectAlreadyExists, "roleCreate").WithSubject("operators")
	c := New(ObjectNotExists, "accountDelete")

	assert.ErrorIs(t, error(a), error(b))
	assert.NotErrorIs(t, error(a), error(c))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ConnectionTimeout, CodeOf(New(ConnectionTimeout, "connect")))
	assert.Equal(t, General, CodeOf(errors.New("plain")))
	assert.Equal(t, InstanceIllegalState, CodeOf(fmt.Errorf("outer: %w", New(InstanceIllegalState, "connect"))))
}

func TestIsCode(t *testing.T) {
	err := New(PermissionNotAssigned, "accountPrivilegeGrant").WithSubject("alice")

	assert.True(t, IsCode(err, PermissionNotAssigned))
	assert.False(t, IsCode(err, PermissionNotRemoved))
	assert.False(t, IsCode(errors.New("plain"), PermissionNotAssigned))
}

func TestUnknownCodeFallsBackToGeneral(t *testing.T) {
	err := &Error{Code: Code("bogus"), Operation: "noop"}
	assert.Contains(t, err.Error(), "unrecognized error")
}
