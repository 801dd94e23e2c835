package admin

import (
	"context"
	"errors"

	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

func (a *Administration) roleMutation(ctx context.Context, operation string, key dialect.Operation, rolename string, parameters map[string]string) error {
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
		case dberror.ObjectAlreadyExists:
			return dberror.New(dberror.ObjectAlreadyExists, operation).
				WithSubject(rolename).
				WithCause(err)
		case dberror.ObjectNotExists:
			return dberror.New(dberror.ObjectNotExists, operation).
				WithSubject(rolename).
				WithCause(err)
		case dberror.ObjectNotCreated:
			return dberror.New(dberror.ObjectNotCreated, operation).
				WithSubject(rolename).
				WithCause(err)
		default:
			return dberror.Wrap(dberror.General, operation, err)
		}
	}

	a.log.WithFields(a.fields()).Info(operation + ": " + rolename)
	return nil
}

// RoleCreate creates a role. A non-empty password selects the protected
// variant where the dialect has one.
func (a *Administration) RoleCreate(ctx context.Context, rolename, password string) error {
	const operation = "roleCreate"

	if rolename == "" {
		return dberror.New(dberror.InsufficientInformation, operation).WithResource(a.resource.Name)
	}

	key := dialect.RoleCreate
	parameters := map[string]string{dialect.ParamRolename: rolename}
	if password != "" {
		key = dialect.RoleCreateProtected
		parameters[dialect.ParamPassword] = password
	}
	return a.roleMutation(ctx, operation, key, rolename, parameters)
}

// RoleDelete drops the role.
func (a *Administration) RoleDelete(ctx context.Context, rolename string) error {
	return a.roleMutation(ctx, "roleDelete", dialect.RoleDelete, rolename, map[string]string{
		dialect.ParamRolename: rolename,
	})
}

// RolePassword protects the role with a password, or removes the
// protection when the password is empty.
func (a *Administration) RolePassword(ctx context.Context, rolename, password string) error {
	const operation = "rolePassword"

	key := dialect.RoleUnprotect
	parameters := map[string]string{dialect.ParamRolename: rolename}
	if password != "" {
		key = dialect.RoleProtect
		parameters[dialect.ParamPassword] = password
	}
	return a.roleMutation(ctx, operation, key, rolename, parameters)
}
