package store

import (
	"github.com/gofrs/flock"

	"alttext/internal/asset"
)

// SuggestionStore owns the suggestions collection during generation. Every
// Upsert flushes, so a crash mid-run loses at most the in-flight item.
type SuggestionStore struct {
	path  string
	lock  *flock.Flock
	items []asset.Suggestion
	index map[string]int
}

// OpenSuggestions opens the suggestions collection for writing, loading any
// prior run's content so generation is resumable.
func OpenSuggestions(path string) (*SuggestionStore, error) {
	lock, err := acquireLock(path)
	if err != nil {
		return nil, err
	}
	items, err := readCollection[asset.Suggestion](path)
	if err != nil {
		releaseLock(lock)
		return nil, err
	}
	store := &SuggestionStore{path: path, lock: lock, items: items}
	store.reindex()
	return store, nil
}

// Get returns the suggestion for an asset key, if present.
func (s *SuggestionStore) Get(key string) (asset.Suggestion, bool) {
	idx, ok := s.index[key]
	if !ok {
		return asset.Suggestion{}, false
	}
	return s.items[idx], true
}

// All returns the suggestions in collection order.
func (s *SuggestionStore) All() []asset.Suggestion {
	out := make([]asset.Suggestion, len(s.items))
	copy(out, s.items)
	return out
}

// Upsert inserts or replaces the suggestion for its asset key and flushes
// the collection.
func (s *SuggestionStore) Upsert(suggestion asset.Suggestion) error {
	key := suggestion.Key()
	if idx, ok := s.index[key]; ok {
		s.items[idx] = suggestion
	} else {
		s.index[key] = len(s.items)
		s.items = append(s.items, suggestion)
	}
	return writeCollection(s.path, s.items)
}

// Close releases the writer lock.
func (s *SuggestionStore) Close() error {
	if s == nil {
		return nil
	}
	return releaseLock(s.lock)
}

func (s *SuggestionStore) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, item := range s.items {
		s.index[item.Key()] = i
	}
}

// LoadSuggestions reads the suggestions collection without taking the
// writer lock.
func LoadSuggestions(path string) ([]asset.Suggestion, error) {
	return readCollection[asset.Suggestion](path)
}
