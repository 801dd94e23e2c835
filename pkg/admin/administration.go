// Package admin exposes the administration facade: connection lifecycle,
// account and role maintenance, grant and revoke of privileges, roles and
// object permissions, and data-dictionary lookups, all expressed through a
// vendor dialect.
package admin

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
	"github.com/redbco/redb-dbadmin/pkg/logger"
)

// Administration owns one administrative connection to one resource. An
// instance is not safe for concurrent use; callers serialize access.
type Administration struct {
	id       string
	resource dialect.Resource
	log      *logger.Logger

	dialect dialect.Dialect
	conn    *sql.DB
}

// New creates an administration facade for the resource. The connection is
// established separately with Connect.
func New(resource dialect.Resource, log *logger.Logger) *Administration {
	return &Administration{
		id:       uuid.NewString(),
		resource: resource,
		log:      log,
	}
}

// ID returns the unique identifier of this facade instance.
func (a *Administration) ID() string {
	return a.id
}

// Connected reports whether the instance holds a live connection.
func (a *Administration) Connected() bool {
	return a.conn != nil
}

func (a *Administration) fields() map[string]string {
	return map[string]string{
		"instance": a.id,
		"resource": a.resource.Name,
	}
}

// installDialect lazily resolves the dialect from the configured driver.
// The dialect lives for the facade's lifetime and is never swapped.
func (a *Administration) installDialect() error {
	if a.dialect != nil {
		return nil
	}

	d, err := dialect.Create(a.resource.Driver)
	if err != nil {
		return err
	}
	a.dialect = d
	return nil
}

// Connect acquires the administrative connection. Calling Connect while
// already connected is an illegal state.
func (a *Administration) Connect(ctx context.Context) error {
	const operation = "connect"

	if a.conn != nil {
		return dberror.New(dberror.InstanceIllegalState, operation).WithResource(a.resource.Name)
	}
	if err := a.installDialect(); err != nil {
		return err
	}

	conn, err := a.dialect.Connect(ctx, a.resource)
	if err != nil {
		code := a.dialect.NormalizeError(err)
		if code == dberror.General {
			code = dberror.ConnectionError
		}
		return dberror.New(code, operation).
			WithResource(a.resource.Name).
			WithPrincipal(a.resource.Principal).
			WithCause(err)
	}

	a.conn = conn
	a.log.WithFields(a.fields()).Info("connection established")
	return nil
}

// Disconnect releases the connection. A no-op when already disconnected.
func (a *Administration) Disconnect() {
	if a.conn == nil {
		return
	}

	if err := a.conn.Close(); err != nil {
		a.log.WithFields(a.fields()).Warn("closing connection: " + err.Error())
	}
	a.conn = nil
	a.log.WithFields(a.fields()).Info("connection released")
}

// connected guards every operation that requires a live connection.
func (a *Administration) connected(operation string) error {
	if a.conn == nil {
		return dberror.New(dberror.InstanceAttributeNull, operation).WithResource(a.resource.Name)
	}
	return nil
}

// SystemTime returns the connected server's current timestamp, falling back
// to local wall-clock time when the instance is not connected or the
// dialect has no time query. Disconnection alone never produces an error.
func (a *Administration) SystemTime(ctx context.Context) (time.Time, error) {
	const operation = "systemTime"

	if a.conn == nil {
		return time.Now(), nil
	}

	template := a.dialect.Operation(dialect.SystemTime)
	if template == "" {
		a.log.WithFields(a.fields()).Warn("system time query not supported by dialect")
		return time.Now(), nil
	}

	var value any
	if err := a.conn.QueryRowContext(ctx, template).Scan(&value); err != nil {
		return time.Time{}, dberror.New(a.generalize(err), operation).
			WithResource(a.resource.Name).
			WithCause(err)
	}

	ts, ok := coerceTime(value)
	if !ok {
		return time.Time{}, dberror.New(dberror.General, operation).WithResource(a.resource.Name)
	}
	return ts, nil
}

// generalize normalizes a native error, keeping General for codes the
// calling operation does not disambiguate.
func (a *Administration) generalize(err error) dberror.Code {
	return a.dialect.NormalizeError(err)
}

func coerceTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	default:
		return time.Time{}, false
	}
}

func parseTime(value string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
