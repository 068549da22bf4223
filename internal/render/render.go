// Package render shows media previews in the terminal during labeling. The
// preview is best-effort: a missing or failing renderer binary degrades the
// session to text-only review, never aborts it.
package render

import (
	"context"
	"io"
	"strings"
	"time"

	"alttext/internal/media"
)

const previewTimeout = 10 * time.Second

// Renderer invokes an external terminal-graphics binary (chafa, viu, ...).
type Renderer struct {
	binary string
	args   []string
	exec   media.Executor
}

// Option configures the renderer.
type Option func(*Renderer)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec media.Executor) Option {
	return func(r *Renderer) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// New constructs a renderer. An empty binary yields a disabled renderer.
func New(binary string, args []string, opts ...Option) *Renderer {
	renderer := &Renderer{
		binary: strings.TrimSpace(binary),
		args:   args,
		exec:   media.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(renderer)
	}
	return renderer
}

// Enabled reports whether previews can be attempted at all.
func (r *Renderer) Enabled() bool {
	return r != nil && r.binary != ""
}

// Preview renders the media file at path into out. Returns false when the
// preview could not be produced; the caller proceeds text-only.
func (r *Renderer) Preview(ctx context.Context, path string, out io.Writer) bool {
	if !r.Enabled() || strings.TrimSpace(path) == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, previewTimeout)
	defer cancel()

	args := append(append([]string{}, r.args...), path)
	output, err := r.exec.Run(ctx, r.binary, args)
	if err != nil || len(output) == 0 {
		return false
	}
	if _, err := out.Write(output); err != nil {
		return false
	}
	return true
}
