package manifest

import (
	"runtime"
	"sync"
	"weak"
)

// EntryPool interns structurally identical ProjectEntry values so that many
// build states can share a single instance. Pooled entries are held weakly and
// disappear from the pool once no snapshot references them.
type EntryPool struct {
	mutex   sync.Mutex
	entries map[ProjectEntry]weak.Pointer[ProjectEntry]
}

// NewEntryPool constructs an empty pool safe for concurrent use.
func NewEntryPool() *EntryPool {
	return &EntryPool{entries: make(map[ProjectEntry]weak.Pointer[ProjectEntry])}
}

// Intern returns the shared instance equal to the provided entry, registering it when absent.
// A nil pool returns a fresh copy.
func (pool *EntryPool) Intern(entry ProjectEntry) *ProjectEntry {
	if pool == nil {
		copied := entry
		return &copied
	}

	pool.mutex.Lock()
	defer pool.mutex.Unlock()

	if existingPointer, found := pool.entries[entry]; found {
		if existingEntry := existingPointer.Value(); existingEntry != nil {
			return existingEntry
		}
	}

	internedEntry := &ProjectEntry{
		Path:          entry.Path,
		ServerPath:    entry.ServerPath,
		Revision:      entry.Revision,
		RepositoryURL: entry.RepositoryURL,
	}
	pool.entries[entry] = weak.Make(internedEntry)
	runtime.AddCleanup(internedEntry, pool.evict, entry)
	return internedEntry
}

// Len reports the number of keys currently tracked, including ones awaiting eviction.
func (pool *EntryPool) Len() int {
	if pool == nil {
		return 0
	}
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	return len(pool.entries)
}

func (pool *EntryPool) evict(key ProjectEntry) {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()

	existingPointer, found := pool.entries[key]
	if !found {
		return
	}
	// A newer instance may have been registered under the same key.
	if existingPointer.Value() == nil {
		delete(pool.entries, key)
	}
}
