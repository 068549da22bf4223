package classify_test

import (
	"testing"

	"alttext/internal/asset"
	"alttext/internal/classify"
)

func TestClassify(t *testing.T) {
	classifier := classify.New(nil)

	cases := []struct {
		name    string
		caption string
		kind    asset.MediaKind
		locator string
		want    classify.Classification
	}{
		{"empty", "", asset.KindImage, "a.png", classify.Empty},
		{"whitespace", "   \t", asset.KindImage, "a.png", classify.Empty},
		{"image placeholder", "image", asset.KindImage, "a.png", classify.Placeholder},
		{"placeholder case insensitive", "Screenshot", asset.KindImage, "a.png", classify.Placeholder},
		{"video placeholder", "clip", asset.KindVideo, "a.mp4", classify.Placeholder},
		{"kind specific", "clip", asset.KindImage, "a.png", classify.Meaningful},
		{"filename with extension", "diagram.png", asset.KindImage, "assets/diagram.png", classify.Placeholder},
		{"filename stem", "diagram", asset.KindImage, "assets/diagram.png", classify.Placeholder},
		{"meaningful", "A heron wading through a tidal marsh", asset.KindImage, "heron.jpg", classify.Meaningful},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.Classify(tc.caption, tc.kind, tc.locator)
			if got != tc.want {
				t.Fatalf("Classify(%q, %s, %q) = %s, want %s", tc.caption, tc.kind, tc.locator, got, tc.want)
			}
		})
	}
}

func TestClassifyExtraPlaceholders(t *testing.T) {
	classifier := classify.New([]string{"TODO", "  fixme  "})

	if got := classifier.Classify("todo", asset.KindImage, "a.png"); got != classify.Placeholder {
		t.Fatalf("expected extra placeholder to apply to images, got %s", got)
	}
	if got := classifier.Classify("fixme", asset.KindVideo, "a.mp4"); got != classify.Placeholder {
		t.Fatalf("expected extra placeholder to apply to videos, got %s", got)
	}
}

func TestClassifyUnicodeNormalization(t *testing.T) {
	classifier := classify.New([]string{"caf\u00e9"})

	// Decomposed form of the same token must match the configured placeholder.
	if got := classifier.Classify("cafe\u0301", asset.KindImage, "a.png"); got != classify.Placeholder {
		t.Fatalf("expected NFC-equivalent caption to classify as placeholder, got %s", got)
	}
}

func TestMeaningful(t *testing.T) {
	classifier := classify.New(nil)

	if classifier.Meaningful("photo", asset.KindImage, "a.png") {
		t.Fatal("placeholder caption reported meaningful")
	}
	if !classifier.Meaningful("Two sailboats at dusk", asset.KindImage, "a.png") {
		t.Fatal("descriptive caption reported not meaningful")
	}
}
