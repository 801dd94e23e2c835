package dialect

import (
	"sync"

	"github.com/redbco/redb-dbadmin/pkg/dbcapabilities"
	"github.com/redbco/redb-dbadmin/pkg/dberror"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[dbcapabilities.DatabaseID]func() Dialect)
)

// Register adds a dialect constructor under the canonical database ID.
// Vendor packages call this from init; the registry is read-only afterward.
func Register(id dbcapabilities.DatabaseID, constructor func() Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = constructor
}

// Create resolves an opaque driver identifier to a registered dialect and
// instantiates it. Unknown identifiers and nil constructions are fatal
// configuration errors; Create never returns a nil dialect without an error.
func Create(driverIdentifier string) (Dialect, error) {
	id, ok := dbcapabilities.ParseDriver(driverIdentifier)
	if !ok {
		return nil, dberror.New(dberror.DialectNotFound, "create").WithSubject(driverIdentifier)
	}

	registryMu.RLock()
	constructor, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, dberror.New(dberror.DialectNotFound, "create").WithSubject(driverIdentifier)
	}

	d := constructor()
	if d == nil {
		return nil, dberror.New(dberror.DialectNotCreated, "create").WithSubject(driverIdentifier)
	}
	return d, nil
}

// Registered returns the canonical IDs with a registered dialect.
func Registered() []dbcapabilities.DatabaseID {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]dbcapabilities.DatabaseID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}
