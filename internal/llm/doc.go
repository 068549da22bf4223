// Package llm wraps the external chat-completion service used to draft
// captions. Requests carry the media payload as a base64 data URL content
// part alongside the text prompt; responses are plain caption text.
//
// Transient failures (rate limits, 5xx, timeouts mid-retry-budget) are
// retried with exponential backoff; the caller's context bounds the whole
// exchange.
package llm
