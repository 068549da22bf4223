package store

import (
	"github.com/gofrs/flock"

	"alttext/internal/asset"
)

// CaptionStore owns the approved-captions collection during labeling. Every
// mutation flushes, so the review session resumes from the last committed
// decision.
type CaptionStore struct {
	path  string
	lock  *flock.Flock
	items []asset.Caption
	index map[string]int
}

// OpenCaptions opens the captions collection for writing.
func OpenCaptions(path string) (*CaptionStore, error) {
	lock, err := acquireLock(path)
	if err != nil {
		return nil, err
	}
	items, err := readCollection[asset.Caption](path)
	if err != nil {
		releaseLock(lock)
		return nil, err
	}
	store := &CaptionStore{path: path, lock: lock, items: items}
	store.reindex()
	return store, nil
}

// Get returns the caption for an asset key, if present.
func (s *CaptionStore) Get(key string) (asset.Caption, bool) {
	idx, ok := s.index[key]
	if !ok {
		return asset.Caption{}, false
	}
	return s.items[idx], true
}

// All returns the captions in collection order.
func (s *CaptionStore) All() []asset.Caption {
	out := make([]asset.Caption, len(s.items))
	copy(out, s.items)
	return out
}

// Upsert inserts or replaces the caption for its asset key and flushes.
func (s *CaptionStore) Upsert(caption asset.Caption) error {
	key := caption.Key()
	if idx, ok := s.index[key]; ok {
		s.items[idx] = caption
	} else {
		s.index[key] = len(s.items)
		s.items = append(s.items, caption)
	}
	return writeCollection(s.path, s.items)
}

// Remove deletes the caption for an asset key and flushes. Removing an
// absent key is a no-op.
func (s *CaptionStore) Remove(key string) error {
	idx, ok := s.index[key]
	if !ok {
		return nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.reindex()
	return writeCollection(s.path, s.items)
}

// Close releases the writer lock.
func (s *CaptionStore) Close() error {
	if s == nil {
		return nil
	}
	return releaseLock(s.lock)
}

func (s *CaptionStore) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, item := range s.items {
		s.index[item.Key()] = i
	}
}

// LoadCaptions reads the captions collection without taking the writer lock.
func LoadCaptions(path string) ([]asset.Caption, error) {
	return readCollection[asset.Caption](path)
}
