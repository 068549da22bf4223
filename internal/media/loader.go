package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"alttext/internal/asset"
)

// Payload is a prepared media attachment for one completion request.
type Payload struct {
	Data []byte
	MIME string
	// SourceBytes is the on-disk size before any downscaling.
	SourceBytes int64
}

// Option configures the loader.
type Option func(*Loader)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(l *Loader) {
		if exec != nil {
			l.exec = exec
		}
	}
}

// WithHTTPClient overrides the client used for remote locators.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.httpClient = client
		}
	}
}

// Loader resolves locators and produces completion payloads.
type Loader struct {
	rootDir      string
	maxImageEdge int
	ffmpegBinary string
	exec         Executor
	httpClient   *http.Client
}

// NewLoader constructs a loader rooted at the document tree.
func NewLoader(rootDir string, maxImageEdge int, ffmpegBinary string, opts ...Option) *Loader {
	loader := &Loader{
		rootDir:      rootDir,
		maxImageEdge: maxImageEdge,
		ffmpegBinary: strings.TrimSpace(ffmpegBinary),
		exec:         CommandExecutor{},
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

// Load fetches and prepares the media payload for a queue entry.
func (l *Loader) Load(ctx context.Context, entry asset.QueueEntry) (Payload, error) {
	raw, sourceBytes, err := l.fetch(ctx, entry)
	if err != nil {
		return Payload{}, err
	}

	switch entry.Kind {
	case asset.KindVideo:
		frame, err := l.extractFrame(ctx, entry)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Data: frame, MIME: "image/jpeg", SourceBytes: sourceBytes}, nil
	default:
		data, mimeType := l.prepareImage(raw, entry.Locator)
		return Payload{Data: data, MIME: mimeType, SourceBytes: sourceBytes}, nil
	}
}

// Resolve maps a locator to a local filesystem path. Remote locators return
// an empty path.
func (l *Loader) Resolve(entry asset.QueueEntry) string {
	locator := strings.TrimSpace(entry.Locator)
	if locator == "" || isRemote(locator) {
		return ""
	}
	relative := filepath.FromSlash(locator)
	candidates := []string{
		filepath.Join(filepath.Dir(entry.DocumentPath), relative),
	}
	if l.rootDir != "" {
		candidates = append(candidates, filepath.Join(l.rootDir, filepath.FromSlash(strings.TrimPrefix(locator, "/"))))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func (l *Loader) fetch(ctx context.Context, entry asset.QueueEntry) ([]byte, int64, error) {
	locator := strings.TrimSpace(entry.Locator)
	if isRemote(locator) {
		return l.fetchRemote(ctx, locator)
	}
	resolved := l.Resolve(entry)
	if resolved == "" {
		return nil, 0, fmt.Errorf("media %q not found relative to %s", entry.Locator, entry.DocumentPath)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, 0, fmt.Errorf("read media %s: %w", resolved, err)
	}
	return data, int64(len(data)), nil
}

func (l *Loader) fetchRemote(ctx context.Context, locator string) ([]byte, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch media %s: %w", locator, err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch media %s: %w", locator, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetch media %s: http %d", locator, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch media %s: %w", locator, err)
	}
	return data, int64(len(data)), nil
}

// prepareImage downscales decodable images whose longer edge exceeds the
// budget; everything else (SVG, unusual formats) passes through untouched.
func (l *Loader) prepareImage(data []byte, locator string) ([]byte, string) {
	mimeType := mimeForLocator(locator)
	if l.maxImageEdge <= 0 {
		return data, mimeType
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType
	}
	bounds := img.Bounds()
	if bounds.Dx() <= l.maxImageEdge && bounds.Dy() <= l.maxImageEdge {
		return data, mimeType
	}
	resized := imaging.Fit(img, l.maxImageEdge, l.maxImageEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return data, mimeType
	}
	return buf.Bytes(), "image/jpeg"
}

// extractFrame pulls one representative frame from a local video file.
func (l *Loader) extractFrame(ctx context.Context, entry asset.QueueEntry) ([]byte, error) {
	if l.ffmpegBinary == "" {
		return nil, errors.New("video frame extraction requires an ffmpeg binary")
	}
	resolved := l.Resolve(entry)
	if resolved == "" {
		return nil, fmt.Errorf("video %q not found relative to %s", entry.Locator, entry.DocumentPath)
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", "1", "-i", resolved,
		"-frames:v", "1",
		"-f", "image2pipe", "-c:v", "mjpeg", "pipe:1",
	}
	frame, err := l.exec.Run(ctx, l.ffmpegBinary, args)
	if err != nil {
		return nil, fmt.Errorf("extract frame from %s: %w", resolved, err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("extract frame from %s: empty output", resolved)
	}
	return frame, nil
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

func mimeForLocator(locator string) string {
	ext := strings.ToLower(path.Ext(locator))
	if idx := strings.IndexAny(ext, "?#"); idx >= 0 {
		ext = ext[:idx]
	}
	if typ := mime.TypeByExtension(ext); typ != "" {
		return typ
	}
	switch ext {
	case ".avif":
		return "image/avif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
