package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"alttext/internal/asset"
	"alttext/internal/pipeline"
	"alttext/internal/store"
)

func sampleEntry(doc, locator string) asset.QueueEntry {
	return asset.QueueEntry{
		Asset: asset.Asset{
			DocumentPath:       doc,
			Locator:            locator,
			Kind:               asset.KindImage,
			ContentFingerprint: "fp-" + locator,
			LineNumber:         3,
		},
		ScanTimestamp: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestQueueReplaceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset_queue.json")

	queue, err := store.OpenQueue(path)
	if err != nil {
		t.Fatalf("OpenQueue: %v", err)
	}
	defer queue.Close()

	entries := []asset.QueueEntry{sampleEntry("a.md", "one.png"), sampleEntry("b.md", "two.png")}
	if err := queue.Replace(entries); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	loaded, err := store.LoadQueue(path)
	if err != nil {
		t.Fatalf("LoadQueue: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded[0] != entries[0] || loaded[1] != entries[1] {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset_queue.json")

	queue, err := store.OpenQueue(path)
	if err != nil {
		t.Fatalf("OpenQueue: %v", err)
	}
	defer queue.Close()

	entries := []asset.QueueEntry{sampleEntry("a.md", "one.png")}
	if err := queue.Replace(entries); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := queue.Replace(entries); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("identical content must produce byte-identical files")
	}
	if first[len(first)-1] != '\n' {
		t.Fatal("collection file must end with a newline")
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	loaded, err := store.LoadQueue(path)
	if err != nil {
		t.Fatalf("LoadQueue: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty collection, got %d entries", len(loaded))
	}
}

func TestLoadCorruptFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := store.LoadQueue(path)
	if err == nil {
		t.Fatal("expected corruption error")
	}
	if !errors.Is(err, pipeline.ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
}

func TestOpenRejectsSecondWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggested_alts.json")

	first, err := store.OpenSuggestions(path)
	if err != nil {
		t.Fatalf("OpenSuggestions: %v", err)
	}
	defer first.Close()

	if _, err := store.OpenSuggestions(path); err == nil {
		t.Fatal("second writer must be rejected while the lock is held")
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	second, err := store.OpenSuggestions(path)
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	second.Close()
}

func TestSuggestionStoreUpsertFlushesEachCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggested_alts.json")

	suggestions, err := store.OpenSuggestions(path)
	if err != nil {
		t.Fatalf("OpenSuggestions: %v", err)
	}
	defer suggestions.Close()

	item := asset.Suggestion{DocumentPath: "a.md", Locator: "one.png", SuggestedText: "A stone bridge"}
	if err := suggestions.Upsert(item); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Visible on disk before Close: a crash loses at most the in-flight item.
	loaded, err := store.LoadSuggestions(path)
	if err != nil {
		t.Fatalf("LoadSuggestions: %v", err)
	}
	if len(loaded) != 1 || loaded[0].SuggestedText != "A stone bridge" {
		t.Fatalf("expected flushed suggestion, got %+v", loaded)
	}

	item.SuggestedText = "A stone bridge at dawn"
	if err := suggestions.Upsert(item); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if all := suggestions.All(); len(all) != 1 || all[0].SuggestedText != "A stone bridge at dawn" {
		t.Fatalf("Upsert must replace by key, got %+v", all)
	}
}

func TestSuggestionStoreResumesPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggested_alts.json")

	first, err := store.OpenSuggestions(path)
	if err != nil {
		t.Fatalf("OpenSuggestions: %v", err)
	}
	if err := first.Upsert(asset.Suggestion{DocumentPath: "a.md", Locator: "one.png", SuggestedText: "kept"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := store.OpenSuggestions(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if got, ok := second.Get(asset.Key("a.md", "one.png")); !ok || got.SuggestedText != "kept" {
		t.Fatalf("prior content must survive reopen, got (%+v, %t)", got, ok)
	}
}

func TestCaptionStoreRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset_captions.json")

	captions, err := store.OpenCaptions(path)
	if err != nil {
		t.Fatalf("OpenCaptions: %v", err)
	}
	defer captions.Close()

	caption := asset.Caption{DocumentPath: "a.md", Locator: "one.png", FinalText: "final", Source: asset.CaptionAccepted}
	if err := captions.Upsert(caption); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := captions.Remove(caption.Key()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := captions.Get(caption.Key()); ok {
		t.Fatal("removed caption still present")
	}
	if err := captions.Remove("absent"); err != nil {
		t.Fatalf("removing absent key must be a no-op, got %v", err)
	}

	loaded, err := store.LoadCaptions(path)
	if err != nil {
		t.Fatalf("LoadCaptions: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("removal must be flushed, got %+v", loaded)
	}
}
