// Package classify decides whether an existing caption is meaningful enough
// to keep an asset out of the work queue. The policy is a standalone
// predicate so scanner mechanics and classification rules test separately.
package classify

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"alttext/internal/asset"
)

// Classification tags the quality of an existing caption.
type Classification string

const (
	// Empty captions are absent or whitespace-only.
	Empty Classification = "empty"
	// Placeholder captions carry a generic token or echo the filename.
	Placeholder Classification = "placeholder"
	// Meaningful captions describe the media and keep the asset off the queue.
	Meaningful Classification = "meaningful"
)

var imagePlaceholders = []string{
	"img", "image", "photo", "placeholder", "screenshot", "picture",
}

var videoPlaceholders = []string{
	"video", "movie", "clip", "media", "content", "placeholder",
}

// Classifier evaluates captions against per-kind placeholder vocabularies.
// Extra tokens extend both vocabularies without replacing the built-ins.
type Classifier struct {
	placeholders map[asset.MediaKind]map[string]struct{}
}

// New builds a classifier. extraPlaceholders come from configuration and
// apply to both media kinds.
func New(extraPlaceholders []string) *Classifier {
	c := &Classifier{placeholders: map[asset.MediaKind]map[string]struct{}{
		asset.KindImage: tokenSet(imagePlaceholders),
		asset.KindVideo: tokenSet(videoPlaceholders),
	}}
	for _, token := range extraPlaceholders {
		normalized := normalizeToken(token)
		if normalized == "" {
			continue
		}
		c.placeholders[asset.KindImage][normalized] = struct{}{}
		c.placeholders[asset.KindVideo][normalized] = struct{}{}
	}
	return c
}

// Classify tags the caption for an asset referenced by locator.
func (c *Classifier) Classify(caption string, kind asset.MediaKind, locator string) Classification {
	normalized := normalizeToken(caption)
	if normalized == "" {
		return Empty
	}
	if _, ok := c.placeholders[kind][normalized]; ok {
		return Placeholder
	}
	if matchesFilename(normalized, locator) {
		return Placeholder
	}
	return Meaningful
}

// Meaningful reports whether the caption keeps the asset off the queue.
func (c *Classifier) Meaningful(caption string, kind asset.MediaKind, locator string) bool {
	return c.Classify(caption, kind, locator) == Meaningful
}

// matchesFilename treats an alt equal to the asset's base name (with or
// without extension) as a placeholder; editors insert these automatically.
func matchesFilename(normalized, locator string) bool {
	base := path.Base(strings.TrimSpace(locator))
	if base == "." || base == "/" || base == "" {
		return false
	}
	full := normalizeToken(base)
	stem := normalizeToken(strings.TrimSuffix(base, path.Ext(base)))
	return normalized == full || (stem != "" && normalized == stem)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[normalizeToken(token)] = struct{}{}
	}
	return set
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(value)))
}
