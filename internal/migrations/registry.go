package migrations

import (
	"sort"
	"sync"
)

// DefaultRegistry collects the migrations declared by this package's init
// functions.
var DefaultRegistry = NewRegistry()

// MigrationRegistryImpl keeps migrations ordered by major version.
type MigrationRegistryImpl struct {
	mu      sync.RWMutex
	ordered []MajorMigrationInterface
}

func NewRegistry() *MigrationRegistryImpl {
	return &MigrationRegistryImpl{}
}

// index returns the position of version in r.ordered, or where it would be
// inserted. Callers hold the lock.
func (r *MigrationRegistryImpl) index(version float64) int {
	return sort.Search(len(r.ordered), func(i int) bool {
		return r.ordered[i].GetMajorVersion() >= version
	})
}

// Register adds a migration. A migration with the same major version is
// replaced.
func (r *MigrationRegistryImpl) Register(migration MajorMigrationInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	version := migration.GetMajorVersion()
	i := r.index(version)
	if i < len(r.ordered) && r.ordered[i].GetMajorVersion() == version {
		r.ordered[i] = migration
		return
	}
	r.ordered = append(r.ordered, nil)
	copy(r.ordered[i+1:], r.ordered[i:])
	r.ordered[i] = migration
}

func (r *MigrationRegistryImpl) GetMigrations() []MajorMigrationInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MajorMigrationInterface(nil), r.ordered...)
}

func (r *MigrationRegistryImpl) GetMigration(version float64) (MajorMigrationInterface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(version)
	if i < len(r.ordered) && r.ordered[i].GetMajorVersion() == version {
		return r.ordered[i], true
	}
	return nil, false
}

// Pending returns the migrations with from < version <= to, in order.
func (r *MigrationRegistryImpl) Pending(from, to float64) []MajorMigrationInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []MajorMigrationInterface
	for _, migration := range r.ordered[r.index(from):] {
		v := migration.GetMajorVersion()
		if v > to {
			break
		}
		if v > from {
			pending = append(pending, migration)
		}
	}
	return pending
}

// Register adds migration to DefaultRegistry.
func Register(migration MajorMigrationInterface) {
	DefaultRegistry.Register(migration)
}
