package asset

import (
	"path"
	"strings"
	"time"
)

// MediaKind distinguishes still images from video embeds.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

var imageExtensions = map[string]struct{}{
	".avif": {}, ".bmp": {}, ".gif": {}, ".ico": {}, ".jpeg": {},
	".jpg": {}, ".png": {}, ".svg": {}, ".webp": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".webm": {},
}

// KindForLocator classifies a locator by extension. The second return is
// false when the extension names no known media type.
func KindForLocator(locator string) (MediaKind, bool) {
	ext := strings.ToLower(path.Ext(stripLocatorQuery(locator)))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage, true
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo, true
	}
	return "", false
}

// MediaExtensions returns every extension recognized as scannable media.
func MediaExtensions() []string {
	out := make([]string, 0, len(imageExtensions)+len(videoExtensions))
	for ext := range imageExtensions {
		out = append(out, ext)
	}
	for ext := range videoExtensions {
		out = append(out, ext)
	}
	return out
}

func stripLocatorQuery(locator string) string {
	if idx := strings.IndexAny(locator, "?#"); idx >= 0 {
		return locator[:idx]
	}
	return locator
}

// Asset is one media reference inside one document.
type Asset struct {
	DocumentPath       string    `json:"document_path"`
	Locator            string    `json:"asset_locator"`
	Kind               MediaKind `json:"media_kind"`
	ContentFingerprint string    `json:"content_fingerprint"`
	ExistingCaption    string    `json:"existing_caption"`
	LineNumber         int       `json:"line_number"`
	ContextSnippet     string    `json:"context_snippet"`
}

// Key returns the stable identity of the asset within a scan.
func (a Asset) Key() string {
	return Key(a.DocumentPath, a.Locator)
}

// Key builds the composite asset key from its two components.
func Key(documentPath, locator string) string {
	return documentPath + "\x1f" + locator
}

// SplitKey reverses Key. Malformed keys return empty components.
func SplitKey(key string) (documentPath, locator string) {
	documentPath, locator, _ = strings.Cut(key, "\x1f")
	return documentPath, locator
}

// QueueEntry is an asset flagged as missing meaningful alt text.
type QueueEntry struct {
	Asset
	ScanTimestamp time.Time `json:"scan_timestamp"`
}

// SuggestionSource records whether a suggestion was generated or copied from
// another asset sharing the same content fingerprint.
type SuggestionSource string

const (
	SuggestionGenerated SuggestionSource = "generated"
	SuggestionShared    SuggestionSource = "shared"
)

// Suggestion is a model-proposed caption awaiting review.
type Suggestion struct {
	DocumentPath       string           `json:"document_path"`
	Locator            string           `json:"asset_locator"`
	Kind               MediaKind        `json:"media_kind"`
	ContentFingerprint string           `json:"content_fingerprint"`
	SuggestedText      string           `json:"suggested_text"`
	ModelID            string           `json:"model_id"`
	GeneratedAt        time.Time        `json:"generation_timestamp"`
	Truncated          bool             `json:"truncated"`
	EstimatedCostUSD   float64          `json:"estimated_cost"`
	Source             SuggestionSource `json:"source,omitempty"`
	LineNumber         int              `json:"line_number"`
	ContextSnippet     string           `json:"context_snippet,omitempty"`
}

// Key returns the asset key the suggestion belongs to.
func (s Suggestion) Key() string {
	return Key(s.DocumentPath, s.Locator)
}

// CaptionSource records how the reviewer produced the final text.
type CaptionSource string

const (
	CaptionAccepted CaptionSource = "accepted"
	CaptionEdited   CaptionSource = "edited"
)

// Caption is the human-approved final alt text for an asset.
type Caption struct {
	DocumentPath       string        `json:"document_path"`
	Locator            string        `json:"asset_locator"`
	ContentFingerprint string        `json:"content_fingerprint"`
	FinalText          string        `json:"final_text"`
	Source             CaptionSource `json:"source"`
	ApprovedAt         time.Time     `json:"approval_timestamp"`
	LineNumber         int           `json:"line_number"`
}

// Key returns the asset key the caption belongs to.
func (c Caption) Key() string {
	return Key(c.DocumentPath, c.Locator)
}
