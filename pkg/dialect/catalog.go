// Package dialect defines the per-vendor strategy surface of the
// administration engine: catalog and entity descriptors, the closed
// operation vocabulary, the SQL template renderer, the lazily-installed
// Definition base shared by vendor implementations, and the compile-time
// dialect registry.
package dialect

import (
	"strings"

	"github.com/redbco/redb-dbadmin/pkg/dbsql"
)

// Entity identifies a semantic administrative object class that maps to
// exactly one catalog descriptor per dialect.
type Entity string

const (
	// EntityAccount is the relation describing database accounts.
	EntityAccount Entity = "account"
	// EntityCatalog is the relation describing grantable database objects.
	EntityCatalog Entity = "catalog"
)

// CatalogType enumerates the closed set of administrative object classes a
// dialect can expose for browsing or granted-permission listing.
type CatalogType int

const (
	Privilege CatalogType = iota
	Role
	Profile
	TablespacePermanent
	TablespaceTemporary
	Schema
	Synonym
	Sequence
	Table
	View
	Type
	Function
	Procedure
	Package
	JavaClass
	DotNet
)

var catalogTypeNames = map[CatalogType]string{
	Privilege:           "Privilege",
	Role:                "Role",
	Profile:             "Profile",
	TablespacePermanent: "TablespacePermanent",
	TablespaceTemporary: "TablespaceTemporary",
	Schema:              "Schema",
	Synonym:             "Synonym",
	Sequence:            "Sequence",
	Table:               "Table",
	View:                "View",
	Type:                "Type",
	Function:            "Function",
	Procedure:           "Procedure",
	Package:             "Package",
	JavaClass:           "JavaClass",
	DotNet:              "DotNet",
}

// String returns the display name of the catalog type.
func (t CatalogType) String() string {
	if name, ok := catalogTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// CatalogTypes returns every member of the closed catalog type set in
// declaration order.
func CatalogTypes() []CatalogType {
	types := make([]CatalogType, 0, len(catalogTypeNames))
	for t := Privilege; t <= DotNet; t++ {
		types = append(types, t)
	}
	return types
}

// ParseCatalogType resolves a catalog type from its display name, ignoring
// case. The boolean reports whether the name matched.
func ParseCatalogType(name string) (CatalogType, bool) {
	for t, known := range catalogTypeNames {
		if strings.EqualFold(known, name) {
			return t, true
		}
	}
	return 0, false
}

// CatalogTypeList returns a pipe-joined listing of all catalog type names,
// used for display and validation messages.
func CatalogTypeList() string {
	types := CatalogTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}

// Catalog is an immutable descriptor of one queryable administrative object
// class: the underlying relation, an optional restricting filter and the
// projected columns. Browse descriptors list all rows of a class; permission
// descriptors list rows granted to a grantee, where the entity's primary
// column holds the grantee and is combined with an equality predicate at
// call time.
type Catalog struct {
	Entity     dbsql.Entity
	Filter     *dbsql.Filter
	Projection []dbsql.Attribute

	// Grantee names the column holding the grantee of a permission
	// descriptor. Empty for browse descriptors.
	Grantee string
}

// Template parameter names recognized inside vendor SQL operation templates.
// Tokens appear in templates as $[NAME].
const (
	ParamUsername       = "USERNAME"
	ParamRolename       = "ROLENAME"
	ParamPassword       = "PASSWORD"
	ParamPermission     = "PERMISSION"
	ParamObject         = "OBJECT"
	ParamAttributeName  = "ATTRIBUTE_NAME"
	ParamAttributeValue = "ATTRIBUTE_VALUE"
)
