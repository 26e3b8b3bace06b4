package contract

import "sync"

// Registry holds the shared reference to the active contraction table. The
// display-refresh driver reads it on every translation while a
// configuration-reload collaborator may swap it: both go through the
// registry's lock, and Get hands out a reference the caller keeps for the
// whole call, so a concurrent Replace never pulls a table out from under a
// translation in flight.
type Registry struct {
	mu      sync.Mutex
	current *Table
}

// NewRegistry creates a registry with an initial table, which may be nil.
func NewRegistry(t *Table) *Registry {
	return &Registry{current: t}
}

// Get returns the active table. The caller holds the returned reference for
// the duration of one translation call; the reference stays valid even if
// the table is replaced concurrently.
func (r *Registry) Get() *Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Replace installs a fully compiled table and returns the displaced one.
// The caller should Close the old table only once no in-flight call can
// still be holding it.
func (r *Registry) Replace(t *Table) *Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.current
	r.current = t
	if old != nil && t != nil {
		tracer().Infof("replacing %s with %s", old.Identifier, t.Identifier)
	}
	return old
}
