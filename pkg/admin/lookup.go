package admin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
)

// selectNames executes a projected search over the descriptor, joins
// multi-column projections with "." after trimming the padding some vendors
// return for CHAR columns, removes excluded names and returns the sorted
// remainder.
func (a *Administration) selectNames(ctx context.Context, operation string, catalog *dialect.Catalog, extra *dbsql.Filter, exclusions []string) ([]string, error) {
	if err := a.connected(operation); err != nil {
		return nil, err
	}

	filter := dbsql.And(catalog.Filter, extra)
	statement, args, err := dbsql.Select(catalog.Entity, filter, catalog.Projection, a.dialect.Placeholder)
	if err != nil {
		return nil, dberror.Wrap(dberror.General, operation, err)
	}

	rows, err := dbsql.Execute(ctx, a.conn, statement, args...)
	if err != nil {
		return nil, dberror.New(a.generalize(err), operation).
			WithResource(a.resource.Name).
			WithCause(err)
	}

	excluded := make(map[string]struct{}, len(exclusions))
	for _, name := range exclusions {
		excluded[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(rows))
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name := joinProjection(row, catalog.Projection)
		if name == "" {
			continue
		}
		if _, skip := excluded[name]; skip {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

func joinProjection(row map[string]any, projection []dbsql.Attribute) string {
	parts := make([]string, 0, len(projection))
	for _, attribute := range projection {
		value, ok := dbsql.Value(row, attribute.Physical)
		if !ok || value == nil {
			continue
		}
		if text := strings.TrimSpace(toString(value)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ".")
}

// lookup resolves a browse descriptor. A missing descriptor is the
// legitimate "unsupported" outcome: logged as a warning, nothing returned.
func (a *Administration) lookup(ctx context.Context, operation string, catalogType dialect.CatalogType, exclusions []string) ([]string, error) {
	if err := a.connected(operation); err != nil {
		return nil, err
	}

	catalog := a.dialect.Catalog(catalogType)
	if catalog == nil {
		a.log.WithFields(a.fields()).Warn("catalog " + catalogType.String() + " not supported by dialect")
		return nil, nil
	}
	return a.selectNames(ctx, operation, catalog, nil, exclusions)
}

// LookupCatalog lists the names of a data-dictionary object class.
func (a *Administration) LookupCatalog(ctx context.Context, catalogType dialect.CatalogType) ([]string, error) {
	return a.lookup(ctx, "lookupCatalog", catalogType, nil)
}

// LookupPrivileges lists grantable system privileges minus the exclusions.
func (a *Administration) LookupPrivileges(ctx context.Context, exclusions ...string) ([]string, error) {
	return a.lookup(ctx, "lookupPrivileges", dialect.Privilege, exclusions)
}

// LookupRoles lists defined roles minus the exclusions.
func (a *Administration) LookupRoles(ctx context.Context, exclusions ...string) ([]string, error) {
	return a.lookup(ctx, "lookupRoles", dialect.Role, exclusions)
}

// LookupProfiles lists account profiles.
func (a *Administration) LookupProfiles(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupProfiles", dialect.Profile, nil)
}

// LookupTablespacePermanent lists permanent tablespaces.
func (a *Administration) LookupTablespacePermanent(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupTablespacePermanent", dialect.TablespacePermanent, nil)
}

// LookupTablespaceTemporary lists temporary tablespaces.
func (a *Administration) LookupTablespaceTemporary(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupTablespaceTemporary", dialect.TablespaceTemporary, nil)
}

// LookupSchemas lists schemas.
func (a *Administration) LookupSchemas(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupSchemas", dialect.Schema, nil)
}

// LookupTables lists tables.
func (a *Administration) LookupTables(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupTables", dialect.Table, nil)
}

// LookupViews lists views.
func (a *Administration) LookupViews(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupViews", dialect.View, nil)
}

// LookupTypes lists user-defined types.
func (a *Administration) LookupTypes(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupTypes", dialect.Type, nil)
}

// LookupFunctions lists functions.
func (a *Administration) LookupFunctions(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupFunctions", dialect.Function, nil)
}

// LookupProcedures lists procedures.
func (a *Administration) LookupProcedures(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupProcedures", dialect.Procedure, nil)
}

// LookupPackages lists packages.
func (a *Administration) LookupPackages(ctx context.Context) ([]string, error) {
	return a.lookup(ctx, "lookupPackages", dialect.Package, nil)
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
