package history

import (
	"context"
	"sync"
	"time"

	"github.com/temirov/reposcm/internal/snapshot"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mutex   sync.RWMutex
	records []BuildRecord
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records the snapshot under the next build number.
func (store *MemoryStore) Append(executionContext context.Context, recordedAt time.Time, repositorySnapshot *snapshot.RepositorySnapshot) (BuildRecord, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	record := BuildRecord{Number: len(store.records) + 1, RecordedAt: recordedAt, Snapshot: repositorySnapshot}
	store.records = append(store.records, record)
	return record, nil
}

// Load returns the record of a build.
func (store *MemoryStore) Load(executionContext context.Context, number int) (BuildRecord, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	if number < 1 || number > len(store.records) {
		return BuildRecord{}, ErrRecordNotFound
	}
	return store.records[number-1], nil
}

// LatestNumber returns the highest build number.
func (store *MemoryStore) LatestNumber(executionContext context.Context) (int, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return len(store.records), nil
}

// List returns every record, newest first.
func (store *MemoryStore) List(executionContext context.Context) ([]BuildRecord, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	records := make([]BuildRecord, 0, len(store.records))
	for index := len(store.records) - 1; index >= 0; index-- {
		records = append(records, store.records[index])
	}
	return records, nil
}

// Close is a no-op.
func (store *MemoryStore) Close() error {
	return nil
}
