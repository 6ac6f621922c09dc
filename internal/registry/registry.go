package registry

import (
	"sync"

	"github.com/go-scripts/gitbook-crawl/internal/types"
)

// Registry is an ordered collection of discovered pages keyed by normalized link
type Registry struct {
	entries []*types.PageEntry
	seen    map[string]*types.PageEntry
	mu      sync.Mutex
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		entries: make([]*types.PageEntry, 0),
		seen:    make(map[string]*types.PageEntry),
	}
}

// Register adds an entry unless one with the same link is already present.
// The first registered entry wins and is never overwritten.
func (r *Registry) Register(entry *types.PageEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[entry.Link]; ok {
		return false
	}

	r.seen[entry.Link] = entry
	r.entries = append(r.entries, entry)
	return true
}

// Entries returns the registered entries in registration order.
// The returned pointers are the registry's own entries.
func (r *Registry) Entries() []*types.PageEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*types.PageEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Get looks up an entry by its normalized link
func (r *Registry) Get(key string) (*types.PageEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.seen[key]
	return entry, ok
}

// Rekey rewrites an entry's link, used when a literal "/" is reconciled to
// the index key. The lookup index only follows the entry when the new key is
// free; false means another entry already owns it.
func (r *Registry) Rekey(entry *types.PageEntry, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := entry.Link
	entry.Link = key
	if other, ok := r.seen[key]; ok && other != entry {
		return false
	}
	if r.seen[old] == entry {
		delete(r.seen, old)
	}
	r.seen[key] = entry
	return true
}

// Len returns the number of registered entries
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
