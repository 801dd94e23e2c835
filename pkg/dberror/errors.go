// Package dberror defines the closed, vendor-independent error taxonomy of
// the administration engine. Native driver failures are normalized into one
// of these codes by the owning dialect and rethrown exactly once with the
// contextual arguments of the failing operation.
package dberror

import (
	"errors"
	"fmt"
)

// Code identifies a normalized administration failure.
type Code string

const (
	// Connection establishment failures.
	ConnectionUnknownHost    Code = "connection-unknown-host"
	ConnectionCreateSocket   Code = "connection-create-socket"
	ConnectionTimeout        Code = "connection-timeout"
	ConnectionError          Code = "connection-error"
	ConnectionAuthentication Code = "connection-authentication"
	ConnectionPermission     Code = "connection-permission"

	// Operation execution failures.
	InsufficientPrivilege   Code = "insufficient-privilege"
	InsufficientInformation Code = "insufficient-information"
	ObjectAlreadyExists     Code = "object-already-exists"
	ObjectNotExists         Code = "object-not-exists"
	ObjectNotCreated        Code = "object-not-created"
	ObjectNotDeleted        Code = "object-not-deleted"
	PermissionNotAssigned   Code = "permission-not-assigned"
	PermissionNotRemoved    Code = "permission-not-removed"
	OperationNotSupported   Code = "operation-not-supported"
	OperationFailed         Code = "operation-failed"

	// Instance state failures.
	InstanceIllegalState  Code = "instance-illegal-state"
	InstanceAttributeNull Code = "instance-attribute-null"

	// Dialect resolution failures.
	DialectNotFound   Code = "dialect-not-found"
	DialectNotCreated Code = "dialect-not-created"

	// General is the opaque fallback for unrecognized native errors.
	General Code = "general"
)

// messages maps each code to its human-readable template. Verbs in the
// templates refer to the Error context fields.
var messages = map[Code]string{
	ConnectionUnknownHost:    "unknown host for resource %q",
	ConnectionCreateSocket:   "could not create socket to resource %q",
	ConnectionTimeout:        "connection to resource %q timed out",
	ConnectionError:          "connection to resource %q failed",
	ConnectionAuthentication: "authentication failed for principal %q at resource %q",
	ConnectionPermission:     "principal %q lacks connect permission at resource %q",
	InsufficientPrivilege:    "principal %q has insufficient privileges for %s",
	InsufficientInformation:  "insufficient information to perform %s",
	ObjectAlreadyExists:      "%s already exists",
	ObjectNotExists:          "%s does not exist",
	ObjectNotCreated:         "%s was not created",
	ObjectNotDeleted:         "%s was not deleted",
	PermissionNotAssigned:    "permission was not assigned to %s",
	PermissionNotRemoved:     "permission was not removed from %s",
	OperationNotSupported:    "operation %s is not supported by this dialect",
	OperationFailed:          "operation %s failed",
	InstanceIllegalState:     "instance is in an illegal state for %s",
	InstanceAttributeNull:    "required instance attribute is not set for %s",
	DialectNotFound:          "no dialect registered for identifier %q",
	DialectNotCreated:        "dialect for identifier %q could not be created",
	General:                  "operation %s failed with an unrecognized error",
}

// Error is the typed administration error carrying the normalized code and
// the context of the failing operation.
type Error struct {
	Code      Code
	Operation string
	Resource  string
	Principal string
	Subject   string
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.message()
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) message() string {
	template, ok := messages[e.Code]
	if !ok {
		template = messages[General]
	}

	switch e.Code {
	case ConnectionUnknownHost, ConnectionCreateSocket, ConnectionTimeout, ConnectionError:
		return fmt.Sprintf(template, e.Resource)
	case ConnectionAuthentication, ConnectionPermission:
		return fmt.Sprintf(template, e.Principal, e.Resource)
	case InsufficientPrivilege:
		return fmt.Sprintf(template, e.Principal, e.Operation)
	case ObjectAlreadyExists, ObjectNotExists, ObjectNotCreated, ObjectNotDeleted,
		PermissionNotAssigned, PermissionNotRemoved:
		return fmt.Sprintf(template, e.Subject)
	case DialectNotFound, DialectNotCreated:
		return fmt.Sprintf(template, e.Subject)
	default:
		return fmt.Sprintf(template, e.Operation)
	}
}

// Unwrap returns the underlying native error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// New creates an Error with the given code and operation context.
func New(code Code, operation string) *Error {
	return &Error{Code: code, Operation: operation}
}

// Wrap creates an Error around a native cause. If cause is already an
// *Error it is returned unchanged so failures are translated exactly once.
func Wrap(code Code, operation string, cause error) error {
	if cause == nil {
		return nil
	}

	var existing *Error
	if errors.As(cause, &existing) {
		return cause
	}

	return &Error{Code: code, Operation: operation, Cause: cause}
}

// WithResource sets the resource name context.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithPrincipal sets the principal name context.
func (e *Error) WithPrincipal(principal string) *Error {
	e.Principal = principal
	return e
}

// WithSubject sets the subject (account, role or object name) context.
func (e *Error) WithSubject(subject string) *Error {
	e.Subject = subject
	return e
}

// WithCause attaches the native cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// CodeOf extracts the normalized code from err, or General if err carries
// no typed administration error.
func CodeOf(err error) Code {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return General
}

// IsCode reports whether err carries the given normalized code.
func IsCode(err error, code Code) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code == code
	}
	return false
}
