package llm

import (
	"fmt"
	"strings"

	"alttext/internal/asset"
)

// SystemPrompt captures the standing instructions sent with every caption
// request. Keep updates centralized here so it is easy to tweak without
// hunting through call sites.
const SystemPrompt = `You write accessibility alt text for images and video stills embedded in markdown documents.

Rules:

- Describe what the media shows, concretely and specifically. Lead with the subject.

- Do not start with "Image of", "Photo of", "Screenshot of", or similar framing.

- Use the surrounding document context to pick the right level of detail, but never invent facts the media does not show.

- For video stills, describe the frame and, when the context makes it clear, what the clip demonstrates.

- Respond with the alt text only: one plain-text line, no quotes, no markdown.`

// BuildPrompt renders the per-asset user prompt, embedding the length bound
// as an instruction.
func BuildPrompt(entry asset.QueueEntry, maxChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write alt text for the attached %s, at most %d characters.\n", entry.Kind, maxChars)
	fmt.Fprintf(&b, "\nIt appears in %s as %q.\n", entry.DocumentPath, entry.Locator)
	if snippet := strings.TrimSpace(entry.ContextSnippet); snippet != "" {
		fmt.Fprintf(&b, "\nSurrounding document context:\n%s\n", snippet)
	}
	if existing := strings.TrimSpace(entry.ExistingCaption); existing != "" {
		fmt.Fprintf(&b, "\nThe current alt text is a placeholder: %q. Replace it.\n", existing)
	}
	return b.String()
}

// MaxTokensFor converts a character bound into a generous token ceiling for
// the request, leaving room so mid-word cutoffs stay rare.
func MaxTokensFor(maxChars int) int {
	if maxChars <= 0 {
		return 0
	}
	return maxChars/2 + 32
}
