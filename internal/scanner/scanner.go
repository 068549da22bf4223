package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"alttext/internal/asset"
	"alttext/internal/classify"
	"alttext/internal/pipeline"
)

const contextSnippetMaxChars = 600

// Stats summarizes one scan pass.
type Stats struct {
	FilesScanned int
	FilesSkipped int
	RefsFound    int
	Queued       int
}

// Option configures the scanner.
type Option func(*Scanner)

// WithIgnoreDirs sets directory names skipped during the walk.
func WithIgnoreDirs(dirs []string) Option {
	return func(s *Scanner) {
		s.ignoreDirs = make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			s.ignoreDirs[dir] = struct{}{}
		}
	}
}

// WithApprovedFingerprints excludes assets whose media already carries an
// approved caption elsewhere in the corpus.
func WithApprovedFingerprints(fingerprints map[string]struct{}) Option {
	return func(s *Scanner) {
		s.approved = fingerprints
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scanner finds assets lacking meaningful alt text beneath a root.
type Scanner struct {
	classifier *classify.Classifier
	ignoreDirs map[string]struct{}
	approved   map[string]struct{}
	logger     *slog.Logger
}

// New constructs a scanner around a caption classifier.
func New(classifier *classify.Classifier, opts ...Option) *Scanner {
	s := &Scanner{
		classifier: classifier,
		ignoreDirs: map[string]struct{}{".git": {}},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the document tree under root and returns queue entries in
// deterministic order (document path, line, locator). Unreadable documents
// are skipped with a diagnostic; an unreadable root is fatal.
func (s *Scanner) Scan(ctx context.Context, root string) ([]asset.QueueEntry, Stats, error) {
	var stats Stats

	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, pipeline.Wrap(pipeline.ErrScanIO, "scan", "open root", root, err)
	}
	if !info.IsDir() {
		return nil, stats, pipeline.Wrap(pipeline.ErrScanIO, "scan", "open root",
			fmt.Sprintf("%s is not a directory", root), nil)
	}

	var documents []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			s.logger.Warn("skipping unreadable path", "stage", "scan", "path", path, "error", walkErr)
			stats.FilesSkipped++
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if _, ok := s.ignoreDirs[entry.Name()]; ok && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			documents = append(documents, path)
		}
		return nil
	})
	if err != nil {
		return nil, stats, pipeline.Wrap(pipeline.ErrScanIO, "scan", "walk root", root, err)
	}
	sort.Strings(documents)

	var queue []asset.QueueEntry
	for _, document := range documents {
		entries, ok := s.scanDocument(document, &stats)
		if !ok {
			continue
		}
		queue = append(queue, entries...)
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].DocumentPath != queue[j].DocumentPath {
			return queue[i].DocumentPath < queue[j].DocumentPath
		}
		if queue[i].LineNumber != queue[j].LineNumber {
			return queue[i].LineNumber < queue[j].LineNumber
		}
		return queue[i].Locator < queue[j].Locator
	})
	stats.Queued = len(queue)
	return queue, stats, nil
}

func (s *Scanner) scanDocument(document string, stats *Stats) ([]asset.QueueEntry, bool) {
	source, err := os.ReadFile(document)
	if err != nil {
		s.logger.Warn("skipping unreadable document", "stage", "scan", "document", document, "error", err)
		stats.FilesSkipped++
		return nil, false
	}
	info, err := os.Stat(document)
	if err != nil {
		s.logger.Warn("skipping unreadable document", "stage", "scan", "document", document, "error", err)
		stats.FilesSkipped++
		return nil, false
	}
	stats.FilesScanned++

	refs := extractReferences(source)
	stats.RefsFound += len(refs)
	if len(refs) == 0 {
		return nil, true
	}

	lines := strings.Split(string(source), "\n")
	scanTimestamp := info.ModTime().UTC().Truncate(time.Second)

	var entries []asset.QueueEntry
	for _, ref := range refs {
		if ref.decorative {
			continue
		}
		if s.classifier.Meaningful(ref.alt, ref.kind, ref.locator) {
			continue
		}
		record := asset.Asset{
			DocumentPath:    document,
			Locator:         ref.locator,
			Kind:            ref.kind,
			ExistingCaption: strings.TrimSpace(ref.alt),
			LineNumber:      ref.line,
			ContextSnippet:  paragraphContext(lines, ref.line-1, contextSnippetMaxChars),
		}
		record.ContentFingerprint = s.fingerprint(record)
		if _, done := s.approved[record.ContentFingerprint]; done {
			continue
		}
		entries = append(entries, asset.QueueEntry{Asset: record, ScanTimestamp: scanTimestamp})
	}
	return entries, true
}

func (s *Scanner) fingerprint(record asset.Asset) string {
	locator := strings.TrimSpace(record.Locator)
	if locator == "" || strings.Contains(locator, "://") {
		return asset.FingerprintKey(record.DocumentPath, record.Locator)
	}
	resolved := filepath.Join(filepath.Dir(record.DocumentPath), filepath.FromSlash(locator))
	return asset.FingerprintFile(resolved, record.DocumentPath, record.Locator)
}

// ApprovedFingerprints builds the exclusion set from a captions collection.
func ApprovedFingerprints(captions []asset.Caption) map[string]struct{} {
	set := make(map[string]struct{}, len(captions))
	for _, caption := range captions {
		if caption.ContentFingerprint != "" && strings.TrimSpace(caption.FinalText) != "" {
			set[caption.ContentFingerprint] = struct{}{}
		}
	}
	return set
}
