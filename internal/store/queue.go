package store

import (
	"github.com/gofrs/flock"

	"alttext/internal/asset"
)

// QueueStore owns the queued-assets collection while a scan runs. The queue
// has full-replace semantics: membership must mirror current document state.
type QueueStore struct {
	path string
	lock *flock.Flock
}

// OpenQueue opens the queue collection for writing, taking the writer lock.
func OpenQueue(path string) (*QueueStore, error) {
	lock, err := acquireLock(path)
	if err != nil {
		return nil, err
	}
	return &QueueStore{path: path, lock: lock}, nil
}

// Replace overwrites the collection with a fresh scan result.
func (s *QueueStore) Replace(entries []asset.QueueEntry) error {
	return writeCollection(s.path, entries)
}

// Close releases the writer lock.
func (s *QueueStore) Close() error {
	if s == nil {
		return nil
	}
	return releaseLock(s.lock)
}

// LoadQueue reads the queue collection without taking the writer lock.
func LoadQueue(path string) ([]asset.QueueEntry, error) {
	return readCollection[asset.QueueEntry](path)
}
