package admin

import (
	"context"
	"strings"

	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

// Granted is one privilege, role or object permission held by a grantee.
type Granted struct {
	// Name identifies what was granted. Multi-column descriptors join
	// their projected values with ".".
	Name string

	// Key is the value of the descriptor's primary column, used for
	// exclusion matching.
	Key string

	// Delegated reports whether the grant carries the admin or grant
	// option.
	Delegated bool
}

// loadGranted executes a permission-descriptor search for the grantee and
// removes excluded entries from the end of the list backward, logging one
// exclusion event per removed entry under the supplied label.
func (a *Administration) loadGranted(ctx context.Context, operation string, catalogType dialect.CatalogType, grantee, exclusionLabel string, exclusions []string) ([]Granted, error) {
	if err := a.connected(operation); err != nil {
		return nil, err
	}

	catalog := a.dialect.Permission(catalogType)
	if catalog == nil {
		a.log.WithFields(a.fields()).Warn("permission catalog " + catalogType.String() + " not supported by dialect")
		return nil, nil
	}

	filter := dbsql.And(catalog.Filter, dbsql.Eq(catalog.Grantee, grantee))
	statement, args, err := dbsql.Select(catalog.Entity, filter, catalog.Projection, a.dialect.Placeholder)
	if err != nil {
		return nil, dberror.Wrap(dberror.General, operation, err)
	}

	rows, err := dbsql.Execute(ctx, a.conn, statement, args...)
	if err != nil {
		return nil, dberror.New(a.generalize(err), operation).
			WithResource(a.resource.Name).
			WithPrincipal(grantee).
			WithCause(err)
	}

	granted := make([]Granted, 0, len(rows))
	for _, row := range rows {
		entry := Granted{
			Name: joinProjection(row, nameProjection(catalog.Projection)),
		}
		if value, ok := dbsql.Value(row, catalog.Entity.Primary); ok {
			entry.Key = strings.TrimSpace(toString(value))
		}
		if value, ok := dbsql.Value(row, delegatedColumn(catalog.Projection)); ok {
			entry.Delegated = truthy(value)
		}
		granted = append(granted, entry)
	}

	if len(exclusions) == 0 {
		return granted, nil
	}

	excluded := make(map[string]struct{}, len(exclusions))
	for _, name := range exclusions {
		excluded[name] = struct{}{}
	}

	// Remove from the end backward so removal does not shift the indexes
	// still to be visited.
	for i := len(granted) - 1; i >= 0; i-- {
		if _, skip := excluded[granted[i].Key]; !skip {
			continue
		}
		a.log.WithFields(a.fields()).Warn(exclusionLabel + ": excluded " + granted[i].Key)
		granted = append(granted[:i], granted[i+1:]...)
	}
	return granted, nil
}

// nameProjection drops the delegated flag from the projected columns so
// the joined name carries only identifying values.
func nameProjection(projection []dbsql.Attribute) []dbsql.Attribute {
	kept := make([]dbsql.Attribute, 0, len(projection))
	for _, attribute := range projection {
		if attribute.Logical == "delegated" {
			continue
		}
		kept = append(kept, attribute)
	}
	return kept
}

func delegatedColumn(projection []dbsql.Attribute) string {
	for _, attribute := range projection {
		if attribute.Logical == "delegated" {
			return attribute.Physical
		}
	}
	return ""
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		return isAffirmative(v)
	case []byte:
		return isAffirmative(string(v))
	default:
		return false
	}
}

func isAffirmative(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "YES", "Y", "TRUE", "1":
		return true
	default:
		return false
	}
}

// LoadGrantedPrivileges lists the system privileges held by the grantee.
func (a *Administration) LoadGrantedPrivileges(ctx context.Context, grantee, exclusionLabel string, exclusions ...string) ([]Granted, error) {
	return a.loadGranted(ctx, "loadGrantedPrivileges", dialect.Privilege, grantee, exclusionLabel, exclusions)
}

// LoadGrantedRoles lists the roles held by the grantee.
func (a *Administration) LoadGrantedRoles(ctx context.Context, grantee, exclusionLabel string, exclusions ...string) ([]Granted, error) {
	return a.loadGranted(ctx, "loadGrantedRoles", dialect.Role, grantee, exclusionLabel, exclusions)
}

// LoadGrantedPermission lists the object permissions of the given class
// held by the grantee.
func (a *Administration) LoadGrantedPermission(ctx context.Context, grantee string, catalogType dialect.CatalogType) ([]Granted, error) {
	return a.loadGranted(ctx, "loadGrantedPermission", catalogType, grantee, "", nil)
}

// PermissionSequences lists granted sequence permissions.
func (a *Administration) PermissionSequences(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.Sequence)
}

// PermissionSynonyms lists granted synonym permissions.
func (a *Administration) PermissionSynonyms(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.Synonym)
}

// PermissionTables lists granted table permissions.
func (a *Administration) PermissionTables(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.Table)
}

// PermissionViews lists granted view permissions.
func (a *Administration) PermissionViews(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.View)
}

// PermissionTypes lists granted type permissions.
func (a *Administration) PermissionTypes(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.Type)
}

// PermissionFunctions lists granted function permissions.
func (a *Administration) PermissionFunctions(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.Function)
}

// PermissionProcedures lists granted procedure permissions.
func (a *Administration) PermissionProcedures(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.Procedure)
}

// PermissionPackages lists granted package permissions.
func (a *Administration) PermissionPackages(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.Package)
}

// PermissionJavaClasses lists granted Java class permissions.
func (a *Administration) PermissionJavaClasses(ctx context.Context, grantee string) ([]Granted, error) {
	return a.LoadGrantedPermission(ctx, grantee, dialect.JavaClass)
}
