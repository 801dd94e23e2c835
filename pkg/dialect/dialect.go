package dialect

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
	"github.com/redbco/redb-dbadmin/pkg/dbsql"
)

// Resource identifies the database endpoint an administration instance
// manages and the principal it authenticates as.
type Resource struct {
	// Name is the logical resource name used in error context and logs.
	Name string

	// Driver selects the dialect: a database/sql driver name or a legacy
	// driver class identifier (see dbcapabilities.ParseDriver).
	Driver string

	Host     string
	Port     int
	Database string

	// Principal is the administrative account used to connect.
	Principal string
	Password  string

	// SSL enables transport encryption where the vendor supports it.
	SSL bool

	// Options carries vendor-specific connection string extras.
	Options map[string]string
}

// Dialect is the per-vendor strategy: catalog layout, operation templates,
// account filtering and native error normalization.
type Dialect interface {
	// Type returns the canonical database identifier.
	Type() dbcapabilities.DatabaseID

	// Connect opens and verifies an administrative connection.
	Connect(ctx context.Context, resource Resource) (*sql.DB, error)

	// Entity returns the descriptor for an administrative entity, or nil
	// if the dialect does not map it.
	Entity(key Entity) *Catalog

	// Catalog returns the browse descriptor for a data-dictionary object
	// class, or nil if unsupported.
	Catalog(catalogType CatalogType) *Catalog

	// Permission returns the descriptor listing granted permissions of a
	// given object class, or nil if unsupported.
	Permission(catalogType CatalogType) *Catalog

	// Operation returns the SQL template for the operation, or the empty
	// string if the dialect does not support it.
	Operation(key Operation) string

	// AccountFilter selects the rows of the account entity that represent
	// real user accounts.
	AccountFilter() *dbsql.Filter

	// AccountTime restricts the account entity to rows changed at or after
	// the given instant.
	AccountTime(since time.Time) *dbsql.Filter

	// NormalizeError maps a native driver error to the closed code set.
	NormalizeError(err error) dberror.Code

	// Placeholder produces the vendor bind marker for the i-th argument.
	Placeholder(i int) string

	// Page wraps a statement with the vendor's row-window clause for the
	// half-open window [startRow, lastRow).
	Page(statement string, startRow, lastRow int) (string, []any)
}

// Definition is the shared base of vendor dialects. It memoizes the four
// descriptor maps behind a single guard so installation happens exactly
// once per dialect instance regardless of how many times it is triggered.
type Definition struct {
	InstallEntities    func() map[Entity]*Catalog
	InstallCatalogs    func() map[CatalogType]*Catalog
	InstallPermissions func() map[CatalogType]*Catalog
	InstallOperations  func() map[Operation]string

	once        sync.Once
	entities    map[Entity]*Catalog
	catalogs    map[CatalogType]*Catalog
	permissions map[CatalogType]*Catalog
	operations  map[Operation]string
}

func (d *Definition) install() {
	d.once.Do(func() {
		if d.InstallEntities != nil {
			d.entities = d.InstallEntities()
		}
		if d.InstallCatalogs != nil {
			d.catalogs = d.InstallCatalogs()
		}
		if d.InstallPermissions != nil {
			d.permissions = d.InstallPermissions()
		}
		if d.InstallOperations != nil {
			d.operations = d.InstallOperations()
		}
	})
}

// Entity returns the installed descriptor for the entity key, or nil.
func (d *Definition) Entity(key Entity) *Catalog {
	d.install()
	return d.entities[key]
}

// Catalog returns the installed browse descriptor, or nil.
func (d *Definition) Catalog(catalogType CatalogType) *Catalog {
	d.install()
	return d.catalogs[catalogType]
}

// Permission returns the installed permission descriptor, or nil.
func (d *Definition) Permission(catalogType CatalogType) *Catalog {
	d.install()
	return d.permissions[catalogType]
}

// Operation returns the installed template, or the empty string.
func (d *Definition) Operation(key Operation) string {
	d.install()
	return d.operations[key]
}
