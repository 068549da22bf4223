// Package label runs the interactive caption review loop. Transition logic
// lives in Session; Labeler owns only prompt rendering and input handling,
// flushing every decision through the caption store before advancing.
package label

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"alttext/internal/asset"
	"alttext/internal/render"
	"alttext/internal/store"
)

// Labeler drives a review session over an input/output pair.
type Labeler struct {
	in       io.Reader
	out      io.Writer
	renderer *render.Renderer
	logger   *slog.Logger
	preview  bool
}

// Option configures the labeler.
type Option func(*Labeler)

// WithRenderer enables terminal media previews.
func WithRenderer(renderer *render.Renderer) Option {
	return func(l *Labeler) {
		l.renderer = renderer
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Labeler) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New constructs a labeler reading decisions from in and prompting on out.
// Previews are attempted only when out is a terminal.
func New(in io.Reader, out io.Writer, opts ...Option) *Labeler {
	l := &Labeler{in: in, out: out, logger: slog.Default()}
	if f, ok := out.(*os.File); ok {
		l.preview = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run reviews every pending suggestion in the session. Input ending early
// (EOF, interrupt) leaves the collection at its last committed decision. The
// return value counts decisions committed during this run.
func (l *Labeler) Run(ctx context.Context, session *Session, captions *store.CaptionStore) (int, error) {
	reader := bufio.NewScanner(l.in)
	reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	decided := 0

	for !session.Done() {
		if err := ctx.Err(); err != nil {
			return decided, err
		}
		current, _ := session.Current()
		l.present(ctx, session, current)

		if !reader.Scan() {
			if err := reader.Err(); err != nil {
				return decided, err
			}
			fmt.Fprintln(l.out)
			return decided, nil
		}
		input := strings.TrimSpace(reader.Text())

		switch input {
		case "undo", "u":
			reverted, err := session.Undo(captions)
			if err != nil {
				return decided, err
			}
			if reverted {
				decided--
				fmt.Fprintln(l.out, "reverted previous decision")
			} else {
				fmt.Fprintln(l.out, "nothing to undo")
			}
		case "":
			if err := session.Accept(captions); err != nil {
				return decided, err
			}
			decided++
		default:
			if err := session.Edit(captions, input); err != nil {
				return decided, err
			}
			decided++
		}
	}
	return decided, nil
}

func (l *Labeler) present(ctx context.Context, session *Session, current asset.Suggestion) {
	position, total := session.Position()
	fmt.Fprintf(l.out, "\n[%d/%d] %s\n", position, total, current.DocumentPath)
	fmt.Fprintf(l.out, "  asset: %s (%s, line %d)\n", current.Locator, current.Kind, current.LineNumber)

	if l.preview && l.renderer.Enabled() {
		if path, ok := localMediaPath(current); ok {
			if !l.renderer.Preview(ctx, path, l.out) {
				l.logger.Debug("preview unavailable", "stage", "label", "locator", current.Locator)
			}
		}
	}

	if snippet := strings.TrimSpace(current.ContextSnippet); snippet != "" {
		fmt.Fprintf(l.out, "  context: %s\n", snippet)
	}
	suffix := ""
	if current.Truncated {
		suffix = " (truncated)"
	}
	fmt.Fprintf(l.out, "  suggested%s: %s\n", suffix, current.SuggestedText)
	fmt.Fprint(l.out, "enter=accept, text=edit, u=undo> ")
}

// localMediaPath resolves the suggestion's locator relative to its document.
// Remote locators have no previewable file.
func localMediaPath(suggestion asset.Suggestion) (string, bool) {
	locator := strings.TrimSpace(suggestion.Locator)
	if locator == "" || strings.Contains(locator, "://") {
		return "", false
	}
	path := filepath.Join(filepath.Dir(suggestion.DocumentPath), filepath.FromSlash(locator))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
