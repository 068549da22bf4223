package testsupport

import (
	"testing"

	"alttext/internal/store"
)

// MustOpenSuggestions opens a suggestion store for tests and registers cleanup.
func MustOpenSuggestions(t testing.TB, path string) *store.SuggestionStore {
	t.Helper()

	s, err := store.OpenSuggestions(path)
	if err != nil {
		t.Fatalf("store.OpenSuggestions: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// MustOpenCaptions opens a caption store for tests and registers cleanup.
func MustOpenCaptions(t testing.TB, path string) *store.CaptionStore {
	t.Helper()

	s, err := store.OpenCaptions(path)
	if err != nil {
		t.Fatalf("store.OpenCaptions: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
