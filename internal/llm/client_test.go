package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"alttext/internal/llm"
)

func captionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(baseURL string, opts ...llm.Option) *llm.Client {
	opts = append(opts, llm.WithSleeper(func(time.Duration) {}))
	return llm.NewClient(llm.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "anthropic/claude-sonnet-4",
	}, opts...)
}

func sampleRequest() llm.CaptionRequest {
	return llm.CaptionRequest{
		Prompt:    "describe the image",
		MediaData: []byte{0xff, 0xd8, 0xff},
		MediaMIME: "image/jpeg",
		MaxTokens: 182,
	}
}

func TestCaptionSuccess(t *testing.T) {
	var gotAuth, gotBody string
	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		encoded, _ := json.Marshal(payload)
		gotBody = string(encoded)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  A lighthouse on a rocky point.  "}}]}`))
	})

	client := newTestClient(server.URL)
	text, err := client.Caption(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if text != "A lighthouse on a rocky point." {
		t.Fatalf("unexpected caption %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("missing bearer auth, got %q", gotAuth)
	}
	if !strings.Contains(gotBody, "data:image/jpeg;base64,") {
		t.Fatal("request must embed media as a base64 data URL")
	}
	if !strings.Contains(gotBody, `"model":"anthropic/claude-sonnet-4"`) {
		t.Fatal("request must carry the configured model")
	}
}

func TestCaptionRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"second try"}}]}`))
	})

	client := newTestClient(server.URL, llm.WithRetryMaxAttempts(3), llm.WithRetryBackoff(time.Millisecond, time.Millisecond))
	text, err := client.Caption(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if text != "second try" {
		t.Fatalf("unexpected caption %q", text)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestCaptionDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	client := newTestClient(server.URL, llm.WithRetryMaxAttempts(3), llm.WithRetryBackoff(time.Millisecond, time.Millisecond))
	if _, err := client.Caption(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected error for http 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not retry, got %d calls", calls.Load())
	}
}

func TestCaptionRetriesEmptyContent(t *testing.T) {
	var calls atomic.Int32
	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"choices":[{"message":{"content":""},"finish_reason":"length"}]}`))
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	})

	client := newTestClient(server.URL, llm.WithRetryMaxAttempts(2), llm.WithRetryBackoff(time.Millisecond, time.Millisecond))
	text, err := client.Caption(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("unexpected caption %q", text)
	}
}

func TestCaptionValidation(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")

	if _, err := client.Caption(context.Background(), llm.CaptionRequest{MediaData: []byte{1}}); err == nil {
		t.Fatal("expected error for missing prompt")
	}
	if _, err := client.Caption(context.Background(), llm.CaptionRequest{Prompt: "p"}); err == nil {
		t.Fatal("expected error for missing media")
	}
}

func TestCaptionHonorsContextCancellation(t *testing.T) {
	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestClient(server.URL)
	if _, err := client.Caption(ctx, sampleRequest()); err == nil {
		t.Fatal("expected error after context deadline")
	}
}
