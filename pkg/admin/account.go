package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

// execute renders nothing itself; it guards instance state, refuses
// statements with unresolved placeholders before any side effect, and runs
// the statement. Native failures come back untranslated for the caller to
// disambiguate exactly once.
func (a *Administration) execute(ctx context.Context, operation, statement string) error {
	if err := a.connected(operation); err != nil {
		return err
	}
	if statement == "" {
		return dberror.New(dberror.OperationNotSupported, operation).WithResource(a.resource.Name)
	}
	if leftover := dialect.Unresolved(statement); len(leftover) > 0 {
		return dberror.New(dberror.InsufficientInformation, operation).
			WithResource(a.resource.Name).
			WithCause(errors.New("unresolved placeholders: " + strings.Join(leftover, ", ")))
	}

	_, err := a.conn.ExecContext(ctx, statement)
	return err
}

// render resolves the operation template with the parameters. An unmapped
// operation yields the empty string, which execute reports as unsupported.
func (a *Administration) render(key dialect.Operation, parameters map[string]string) string {
	template := a.dialect.Operation(key)
	if template == "" {
		return ""
	}
	return dialect.Render(template, nil, parameters)
}

// AccountSearch returns the logical account names of the page window
// [startRow, lastRow), optionally restricted to accounts changed at or
// after since. The page statement projects exactly one column; anything
// else is an internal invariant violation.
func (a *Administration) AccountSearch(ctx context.Context, since *time.Time, startRow, lastRow int) ([]string, error) {
	const operation = "accountSearch"

	if err := a.connected(operation); err != nil {
		return nil, err
	}

	account := a.dialect.Entity(dialect.EntityAccount)
	if account == nil {
		a.log.WithFields(a.fields()).Warn("account entity not supported by dialect")
		return nil, nil
	}

	filter := a.dialect.AccountFilter()
	if since != nil {
		if restriction := a.dialect.AccountTime(*since); restriction != nil {
			filter = dbsql.And(filter, restriction)
		} else {
			a.log.WithFields(a.fields()).Warn("account time restriction not supported by dialect")
		}
	}

	projection := []dbsql.Attribute{nameAttribute(account)}
	statement, args, err := dbsql.Search(account.Entity, filter, projection, a.dialect.Placeholder, a.dialect.Page, startRow, lastRow)
	if err != nil {
		return nil, dberror.Wrap(dberror.General, operation, err)
	}

	rows, err := dbsql.Execute(ctx, a.conn, statement, args...)
	if err != nil {
		return nil, dberror.New(a.generalize(err), operation).
			WithResource(a.resource.Name).
			WithCause(err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		value, ok := dbsql.Value(row, account.Entity.Primary)
		if !ok {
			return nil, dberror.New(dberror.General, operation).
				WithResource(a.resource.Name).
				WithCause(fmt.Errorf("page statement did not project column %q", account.Entity.Primary))
		}
		names = append(names, strings.TrimSpace(toString(value)))
	}
	return names, nil
}

// namedAttribute looks up the logical attribute behind the entity's primary
// column; when the entity projection does not carry it, the primary column
// maps to itself.
func nameAttribute(account *dialect.Catalog) dbsql.Attribute {
	for _, attribute := range account.Projection {
		if attribute.Physical == account.Entity.Primary {
			return attribute
		}
	}
	return dbsql.Attribute{Physical: account.Entity.Primary, Logical: account.Entity.Primary}
}

// AccountDetail returns the account entity row keyed by logical attribute
// names.
func (a *Administration) AccountDetail(ctx context.Context, username string) (map[string]any, error) {
	const operation = "accountDetail"

	if err := a.connected(operation); err != nil {
		return nil, err
	}

	account := a.dialect.Entity(dialect.EntityAccount)
	if account == nil {
		a.log.WithFields(a.fields()).Warn("account entity not supported by dialect")
		return nil, nil
	}

	filter := dbsql.Eq(account.Entity.Primary, username)
	statement, args, err := dbsql.Select(account.Entity, filter, account.Projection, a.dialect.Placeholder)
	if err != nil {
		return nil, dberror.Wrap(dberror.General, operation, err)
	}

	rows, err := dbsql.Execute(ctx, a.conn, statement, args...)
	if err != nil {
		return nil, dberror.New(a.generalize(err), operation).
			WithResource(a.resource.Name).
			WithSubject(username).
			WithCause(err)
	}
	if len(rows) == 0 {
		return nil, dberror.New(dberror.ObjectNotExists, operation).WithSubject(username)
	}

	detail := make(map[string]any, len(account.Projection))
	for _, attribute := range account.Projection {
		if value, ok := dbsql.Value(rows[0], attribute.Physical); ok {
			detail[attribute.Logical] = value
		}
	}
	return detail, nil
}

// AccountCreate creates an account from a generic attribute map. Username
// and password are extracted; any remaining attributes are appended to the
// create statement as free-form option text in deterministic order.
func (a *Administration) AccountCreate(ctx context.Context, attributes map[string]string) error {
	const operation = "accountCreate"

	username := attributes[dialect.ParamUsername]
	password := attributes[dialect.ParamPassword]
	if username == "" || password == "" {
		return dberror.New(dberror.InsufficientInformation, operation).WithResource(a.resource.Name)
	}
	if err := a.connected(operation); err != nil {
		return err
	}

	statement := a.render(dialect.AccountCreate, map[string]string{
		dialect.ParamUsername: username,
		dialect.ParamPassword: password,
	})
	if statement != "" {
		statement += accountOptions(attributes)
	}

	if err := a.execute(ctx, operation, statement); err != nil {
		var typed *dberror.Error
		if errors.As(err, &typed) {
			return err
		}
		switch a.generalize(err) {
		case dberror.InsufficientPrivilege:
			return dberror.New(dberror.InsufficientPrivilege, operation).
				WithPrincipal(a.resource.Principal).
				WithCause(err)
		case dberror.OperationFailed, dberror.ObjectAlreadyExists:
			// MySQL reports every failed account statement as 1396 and
			// cannot distinguish duplicates; creation failures of that
			// shape read as already-exists.
			return dberror.New(dberror.ObjectAlreadyExists, operation).
				WithSubject(username).
				WithCause(err)
		case dberror.ObjectNotCreated:
			return dberror.New(dberror.ObjectNotCreated, operation).
				WithSubject(username).
				WithCause(err)
		default:
			return dberror.Wrap(dberror.General, operation, err)
		}
	}

	a.log.WithFields(a.fields()).Info("account created: " + username)
	return nil
}

// accountOptions renders the leftover attributes as "name value" option
// text, sorted by name so the emitted statement is deterministic.
func accountOptions(attributes map[string]string) string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		if name == dialect.ParamUsername || name == dialect.ParamPassword {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	for _, name := range names {
		builder.WriteString(" ")
		builder.WriteString(name)
		if value := attributes[name]; value != "" {
			builder.WriteString(" ")
			builder.WriteString(value)
		}
	}
	return builder.String()
}

// accountMutation runs a templated account operation and disambiguates the
// native failure.
func (a *Administration) accountMutation(ctx context.Context, operation string, key dialect.Operation, username string, parameters map[string]string) error {
	if err := a.connected(operation); err != nil {
		return err
	}

	statement := a.render(key, parameters)

	if err := a.execute(ctx, operation, statement); err != nil {
		var typed *dberror.Error
		if errors.As(err, &typed) {
			return err
		}
		switch a.generalize(err) {
		case dberror.InsufficientPrivilege:
			return dberror.New(dberror.InsufficientPrivilege, operation).
				WithPrincipal(a.resource.Principal).
				WithCause(err)
		case dberror.ObjectNotExists, dberror.OperationFailed:
			return dberror.New(dberror.ObjectNotExists, operation).
				WithSubject(username).
				WithCause(err)
		case dberror.ObjectNotDeleted:
			return dberror.New(dberror.ObjectNotDeleted, operation).
				WithSubject(username).
				WithCause(err)
		default:
			return dberror.Wrap(dberror.General, operation, err)
		}
	}

	a.log.WithFields(a.fields()).Info(operation + ": " + username)
	return nil
}

// AccountDelete drops the account.
func (a *Administration) AccountDelete(ctx context.Context, username string) error {
	return a.accountMutation(ctx, "accountDelete", dialect.AccountDelete, username, map[string]string{
		dialect.ParamUsername: username,
	})
}

// AccountEnable unlocks the account.
func (a *Administration) AccountEnable(ctx context.Context, username string) error {
	return a.accountMutation(ctx, "accountEnable", dialect.AccountEnable, username, map[string]string{
		dialect.ParamUsername: username,
	})
}

// AccountDisable locks the account.
func (a *Administration) AccountDisable(ctx context.Context, username string) error {
	return a.accountMutation(ctx, "accountDisable", dialect.AccountDisable, username, map[string]string{
		dialect.ParamUsername: username,
	})
}

// AccountModify changes a single account attribute.
func (a *Administration) AccountModify(ctx context.Context, username, attribute, value string) error {
	if attribute == "" {
		return dberror.New(dberror.InsufficientInformation, "accountModify").WithResource(a.resource.Name)
	}
	return a.accountMutation(ctx, "accountModify", dialect.AccountModify, username, map[string]string{
		dialect.ParamUsername:       username,
		dialect.ParamAttributeName:  attribute,
		dialect.ParamAttributeValue: value,
	})
}

// AccountPassword resets the account password.
func (a *Administration) AccountPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return dberror.New(dberror.InsufficientInformation, "accountPassword").WithResource(a.resource.Name)
	}
	return a.accountMutation(ctx, "accountPassword", dialect.AccountPassword, username, map[string]string{
		dialect.ParamUsername: username,
		dialect.ParamPassword: password,
	})
}
