package pricing_test

import (
	"errors"
	"path/filepath"
	"testing"

	"alttext/internal/asset"
	"alttext/internal/pipeline"
	"alttext/internal/pricing"
	"alttext/internal/testsupport"
)

func queueFor(t *testing.T, sizes map[string]int64) ([]asset.QueueEntry, string) {
	t.Helper()
	root := t.TempDir()

	var queue []asset.QueueEntry
	for name, size := range sizes {
		testsupport.WriteMedia(t, filepath.Join(root, name), size)
		queue = append(queue, asset.QueueEntry{Asset: asset.Asset{
			DocumentPath: filepath.Join(root, "doc.md"),
			Locator:      name,
			Kind:         asset.KindImage,
		}})
	}
	return queue, root
}

func TestEstimateUnknownModel(t *testing.T) {
	_, err := pricing.Estimate(nil, "nonexistent/model", 300, "")
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !errors.Is(err, pipeline.ErrEstimationConfig) {
		t.Fatalf("expected ErrEstimationConfig, got %v", err)
	}
}

func TestEstimateCostMonotonicInMaxChars(t *testing.T) {
	queue, root := queueFor(t, map[string]int64{"a.png": 40_000, "b.png": 150_000})

	short, err := pricing.Estimate(queue, "anthropic/claude-sonnet-4", 300, root)
	if err != nil {
		t.Fatalf("Estimate(300): %v", err)
	}
	long, err := pricing.Estimate(queue, "anthropic/claude-sonnet-4", 600, root)
	if err != nil {
		t.Fatalf("Estimate(600): %v", err)
	}
	if short.TotalUSD > long.TotalUSD {
		t.Fatalf("cost must be monotonic in max chars: %f > %f", short.TotalUSD, long.TotalUSD)
	}
}

func TestEstimateCostGrowsWithMediaSize(t *testing.T) {
	small, rootSmall := queueFor(t, map[string]int64{"a.png": 10_000})
	large, rootLarge := queueFor(t, map[string]int64{"a.png": 10_000_000})

	smallReport, err := pricing.Estimate(small, "openai/gpt-4o-mini", 300, rootSmall)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	largeReport, err := pricing.Estimate(large, "openai/gpt-4o-mini", 300, rootLarge)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if smallReport.TotalUSD >= largeReport.TotalUSD {
		t.Fatalf("larger media must cost more: %f >= %f", smallReport.TotalUSD, largeReport.TotalUSD)
	}
}

func TestEstimateUnsizedMedia(t *testing.T) {
	queue := []asset.QueueEntry{{Asset: asset.Asset{
		DocumentPath: "doc.md",
		Locator:      "https://example.com/remote.png",
		Kind:         asset.KindImage,
	}}}

	report, err := pricing.Estimate(queue, "google/gemini-2.0-flash-001", 300, t.TempDir())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if report.UnsizedCount != 1 {
		t.Fatalf("remote media must count as unsized, got %d", report.UnsizedCount)
	}
	if report.TotalUSD <= 0 {
		t.Fatal("unsized media still incurs prompt and output cost")
	}
}

func TestEstimateEmptyQueue(t *testing.T) {
	report, err := pricing.Estimate(nil, "anthropic/claude-haiku-4.5", 300, "")
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if len(report.Assets) != 0 || report.TotalUSD != 0 {
		t.Fatalf("empty queue must estimate to zero, got %+v", report)
	}
}

func TestEstimateRejectsNonPositiveMaxChars(t *testing.T) {
	_, err := pricing.Estimate(nil, "anthropic/claude-sonnet-4", 0, "")
	if !errors.Is(err, pipeline.ErrEstimationConfig) {
		t.Fatalf("expected ErrEstimationConfig, got %v", err)
	}
}

func TestProfileListsKnownModels(t *testing.T) {
	_, err := pricing.Profile("bogus")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, model := range pricing.KnownModels() {
		if _, perr := pricing.Profile(model); perr != nil {
			t.Fatalf("known model %s must resolve: %v", model, perr)
		}
	}
}
