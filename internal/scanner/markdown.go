package scanner

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"alttext/internal/asset"
)

// reference is one media embed found in a document body.
type reference struct {
	locator string
	alt     string
	line    int // 1-based within the original document
	kind    asset.MediaKind
	// decorative marks an HTML image explicitly opted out via alt="".
	decorative bool
}

var wikilinkPattern = regexp.MustCompile(`!\[\[([^\]|]+?)(?:\|([^\]]*))?\]\]`)

var markdownEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// extractReferences parses a markdown document and returns every media
// reference with its existing caption and line number.
func extractReferences(source []byte) []reference {
	body, lineOffset := stripFrontmatter(source)
	lines := strings.Split(string(body), "\n")

	finder := newLineFinder(lines, lineOffset)
	var refs []reference
	seen := make(map[string]struct{})

	record := func(ref reference) {
		dedupKey := ref.locator + "\x00" + strconv.Itoa(ref.line)
		if _, ok := seen[dedupKey]; ok {
			return
		}
		seen[dedupKey] = struct{}{}
		refs = append(refs, ref)
	}

	doc := markdownEngine.Parser().Parse(text.NewReader(body))
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Image:
			if ref, ok := markdownImageRef(n, body, finder); ok {
				record(ref)
			}
		case *ast.HTMLBlock:
			content, startLine := blockSource(n, body, finder)
			for _, ref := range htmlRefs(content, startLine, finder) {
				record(ref)
			}
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			content, startLine := blockSource(node, body, finder)
			lower := strings.ToLower(content)
			if strings.Contains(lower, "<img") || strings.Contains(lower, "<video") {
				for _, ref := range htmlRefs(content, startLine, finder) {
					record(ref)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	for _, ref := range wikilinkRefs(lines, lineOffset) {
		record(ref)
	}
	return refs
}

// stripFrontmatter removes a leading YAML/TOML frontmatter block, returning
// the body and the number of source lines the block occupied.
func stripFrontmatter(source []byte) ([]byte, int) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil || len(body) == 0 || len(body) == len(source) {
		return source, 0
	}
	consumed := bytes.Count(source[:len(source)-len(body)], []byte{'\n'})
	return body, consumed
}

func markdownImageRef(img *ast.Image, body []byte, finder *lineFinder) (reference, bool) {
	dest := strings.TrimSpace(string(img.Destination))
	if dest == "" {
		return reference{}, false
	}
	locator := decodeLocator(dest)
	kind, ok := asset.KindForLocator(locator)
	if !ok {
		kind = asset.KindImage
	}
	line := finder.find(locator, "("+dest+")", "("+locator+")", dest)
	return reference{
		locator: locator,
		alt:     string(nodeText(img, body)),
		line:    line,
		kind:    kind,
	}, true
}

// htmlRefs extracts <img> and <video> references from an HTML fragment.
// Video accessibility comes from aria-label, title, or aria-describedby;
// an <img alt=""> is explicitly decorative and reported as such.
func htmlRefs(fragment string, startLine int, finder *lineFinder) []reference {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var refs []reference
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		alt, hasAlt := sel.Attr("alt")
		refs = append(refs, reference{
			locator:    src,
			alt:        alt,
			line:       finder.findFrom(src, startLine, src),
			kind:       asset.KindImage,
			decorative: hasAlt && strings.TrimSpace(alt) == "",
		})
	})
	doc.Find("video").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, _ = sel.Find("source").First().Attr("src")
		}
		if strings.TrimSpace(src) == "" {
			return
		}
		label := firstAttr(sel, "aria-label", "title", "aria-describedby")
		refs = append(refs, reference{
			locator: src,
			alt:     label,
			line:    finder.findFrom(src, startLine, src),
			kind:    asset.KindVideo,
		})
	})
	return refs
}

func wikilinkRefs(lines []string, lineOffset int) []reference {
	var refs []reference
	for idx, line := range lines {
		for _, match := range wikilinkPattern.FindAllStringSubmatch(line, -1) {
			locator := strings.TrimSpace(match[1])
			if locator == "" {
				continue
			}
			kind, ok := asset.KindForLocator(locator)
			if !ok {
				continue
			}
			refs = append(refs, reference{
				locator: locator,
				alt:     strings.TrimSpace(match[2]),
				line:    lineOffset + idx + 1,
				kind:    kind,
			})
		}
	}
	return refs
}

func firstAttr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if value, ok := sel.Attr(name); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// decodeLocator reverses percent-encoding the markdown parser applies to
// unicode destinations. Undecodable locators pass through untouched.
func decodeLocator(locator string) string {
	decoded, err := url.PathUnescape(locator)
	if err != nil {
		return locator
	}
	return decoded
}

// nodeText collects the literal text of an inline node's children.
func nodeText(node ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(source))
		case *ast.String:
			buf.Write(c.Value)
		default:
			buf.Write(nodeText(child, source))
		}
	}
	return buf.Bytes()
}

// blockSource reconstructs a block node's source text and first line.
func blockSource(node ast.Node, body []byte, finder *lineFinder) (string, int) {
	lines := node.Lines()
	if lines == nil || lines.Len() == 0 {
		return "", 1
	}
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(body))
	}
	first := lines.At(0)
	return buf.String(), finder.lineOfOffset(first.Start)
}

// lineFinder recovers 1-based document line numbers. Snippet search advances
// a per-locator cursor so repeated references to the same asset resolve to
// successive lines.
type lineFinder struct {
	lines      []string
	offsets    []int // byte offset of each line start within the body
	lineOffset int   // frontmatter lines preceding the body
	cursors    map[string]int
}

func newLineFinder(lines []string, lineOffset int) *lineFinder {
	offsets := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line) + 1
	}
	return &lineFinder{lines: lines, offsets: offsets, lineOffset: lineOffset, cursors: make(map[string]int)}
}

// lineOfOffset maps a byte offset within the body to a document line number.
func (f *lineFinder) lineOfOffset(offset int) int {
	lo, hi := 0, len(f.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.offsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return f.lineOffset + lo + 1
}

// find searches for any candidate snippet, resuming after the last hit for
// the same locator.
func (f *lineFinder) find(locator string, candidates ...string) int {
	return f.findFrom(locator, 0, candidates...)
}

// findFrom behaves like find but never reports a line before fromLine.
func (f *lineFinder) findFrom(locator string, fromLine int, candidates ...string) int {
	start := f.cursors[locator]
	if bodyStart := fromLine - f.lineOffset - 1; bodyStart > start {
		start = bodyStart
	}
	if start < 0 {
		start = 0
	}
	candidates = append(candidates, decodeLocator(locator))
	for _, candidate := range dedupe(candidates) {
		if candidate == "" {
			continue
		}
		for idx := start; idx < len(f.lines); idx++ {
			if strings.Contains(f.lines[idx], candidate) {
				f.cursors[locator] = idx + 1
				return f.lineOffset + idx + 1
			}
		}
	}
	if fromLine > 0 {
		return fromLine
	}
	return f.lineOffset + 1
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// paragraphContext returns the blank-line-delimited block surrounding a
// document line, used as prompt context for the model.
func paragraphContext(lines []string, lineIdx int, maxChars int) string {
	if lineIdx < 0 || lineIdx >= len(lines) {
		return ""
	}
	start := lineIdx
	for start > 0 && strings.TrimSpace(lines[start-1]) != "" {
		start--
	}
	end := lineIdx
	for end < len(lines)-1 && strings.TrimSpace(lines[end+1]) != "" {
		end++
	}
	snippet := strings.TrimSpace(strings.Join(lines[start:end+1], "\n"))
	if maxChars > 0 {
		runes := []rune(snippet)
		if len(runes) > maxChars {
			snippet = string(runes[:maxChars])
		}
	}
	return snippet
}
