// Package apply writes approved captions back into the documents that
// reference them. Three embed forms are rewritten in place on the recorded
// line: markdown images, wikilink embeds, and HTML img tags. Unmatched or
// out-of-range entries are warnings, never run failures.
package apply

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"alttext/internal/asset"
	"alttext/internal/pipeline"
)

// Options control one apply pass.
type Options struct {
	// DryRun reports what would change without touching any document.
	DryRun bool
}

// Report summarizes an apply pass.
type Report struct {
	Applied       int
	SkippedNoText int
	Unmatched     int
	MissingFiles  int
}

// Run patches every caption with final text into its document. Captions are
// grouped per file and applied from the bottom of the file upward. A document
// that cannot be read or written aborts the run; a caption that cannot be
// matched is skipped with a warning.
func Run(captions []asset.Caption, opts Options, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var report Report

	byDocument := make(map[string][]asset.Caption)
	var documents []string
	for _, caption := range captions {
		if strings.TrimSpace(caption.FinalText) == "" {
			logger.Warn("skipping caption without final text", "stage", "apply",
				"document", caption.DocumentPath, "locator", caption.Locator)
			report.SkippedNoText++
			continue
		}
		if _, ok := byDocument[caption.DocumentPath]; !ok {
			documents = append(documents, caption.DocumentPath)
		}
		byDocument[caption.DocumentPath] = append(byDocument[caption.DocumentPath], caption)
	}
	sort.Strings(documents)

	for _, document := range documents {
		if err := applyToDocument(document, byDocument[document], opts, logger, &report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func applyToDocument(document string, captions []asset.Caption, opts Options, logger *slog.Logger, report *Report) error {
	source, err := os.ReadFile(document)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("document not found", "stage", "apply", "document", document)
			report.MissingFiles++
			report.Unmatched += len(captions)
			return nil
		}
		return pipeline.Wrap(pipeline.ErrScanIO, "apply", "read document", document, err)
	}

	text := string(source)
	trailingNewline := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	// Bottom-up so an edit can never shift the line number of a later one.
	sorted := append([]asset.Caption(nil), captions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LineNumber > sorted[j].LineNumber })

	changed := false
	for _, caption := range sorted {
		idx := caption.LineNumber - 1
		if idx < 0 || idx >= len(lines) {
			logger.Warn("line out of range", "stage", "apply",
				"document", document, "line", caption.LineNumber, "locator", caption.Locator)
			report.Unmatched++
			continue
		}
		patched, oldAlt, ok := patchLine(lines[idx], caption.Locator, caption.FinalText)
		if !ok {
			logger.Warn("locator not found on line", "stage", "apply",
				"document", document, "line", caption.LineNumber, "locator", caption.Locator)
			report.Unmatched++
			continue
		}
		lines[idx] = patched
		changed = true
		report.Applied++

		action := "applied"
		if opts.DryRun {
			action = "would apply"
		}
		if oldAlt == "" {
			oldAlt = "(no alt)"
		} else {
			oldAlt = fmt.Sprintf("%q", oldAlt)
		}
		logger.Info(action, "stage", "apply", "document", document,
			"line", caption.LineNumber, "old", oldAlt, "new", caption.FinalText)
	}

	if !changed || opts.DryRun {
		return nil
	}
	output := strings.Join(lines, "\n")
	if trailingNewline {
		output += "\n"
	}
	if err := os.WriteFile(document, []byte(output), 0o644); err != nil {
		return pipeline.Wrap(pipeline.ErrScanIO, "apply", "write document", document, err)
	}
	return nil
}

// patchLine rewrites the first embed of locator on the line, trying markdown,
// wikilink, then HTML syntax. Returns the previous alt text when present.
func patchLine(line, locator, text string) (patched, oldAlt string, ok bool) {
	if patched, oldAlt, ok = patchMarkdownImage(line, locator, text); ok {
		return patched, oldAlt, true
	}
	if patched, oldAlt, ok = patchWikilink(line, locator, text); ok {
		return patched, oldAlt, true
	}
	return patchHTMLImage(line, locator, text)
}

func patchMarkdownImage(line, locator, text string) (string, string, bool) {
	pattern := regexp.MustCompile(`!\[([^\]]*)\]\(` + regexp.QuoteMeta(locator) + `\s*\)`)
	loc := pattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return line, "", false
	}
	oldAlt := line[loc[2]:loc[3]]
	patched := line[:loc[0]] + "![" + text + "](" + locator + ")" + line[loc[1]:]
	return patched, oldAlt, true
}

func patchWikilink(line, locator, text string) (string, string, bool) {
	pattern := regexp.MustCompile(`!\[\[` + regexp.QuoteMeta(locator) + `(?:\|([^\]]*))?\]\]`)
	loc := pattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return line, "", false
	}
	oldAlt := ""
	if loc[2] >= 0 {
		oldAlt = line[loc[2]:loc[3]]
	}
	patched := line[:loc[0]] + "![[" + locator + "|" + text + "]]" + line[loc[1]:]
	return patched, oldAlt, true
}

var htmlAltPattern = regexp.MustCompile(`(?i)alt="([^"]*)"`)

func patchHTMLImage(line, locator, text string) (string, string, bool) {
	escaped := regexp.QuoteMeta(locator)
	tagPattern := regexp.MustCompile(`(?is)<img\s+([^>]*src="` + escaped + `"[^/>]*?)(\s*)(/?)>`)
	loc := tagPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return line, "", false
	}
	attrs := strings.TrimRight(line[loc[2]:loc[3]], " \t")
	closing := line[loc[4]:loc[5]] + line[loc[6]:loc[7]]

	oldAlt := ""
	var newAttrs string
	if altLoc := htmlAltPattern.FindStringSubmatchIndex(attrs); altLoc != nil {
		oldAlt = attrs[altLoc[2]:altLoc[3]]
		newAttrs = attrs[:altLoc[0]] + `alt="` + text + `"` + attrs[altLoc[1]:]
	} else {
		srcPattern := regexp.MustCompile(`(?i)src="` + escaped + `"`)
		srcLoc := srcPattern.FindStringIndex(attrs)
		if srcLoc == nil {
			return line, "", false
		}
		newAttrs = attrs[:srcLoc[0]] + `alt="` + text + `" ` + attrs[srcLoc[0]:]
	}
	patched := line[:loc[0]] + "<img " + newAttrs + closing + ">" + line[loc[1]:]
	return patched, oldAlt, true
}
