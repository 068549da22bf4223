// Package suggest turns queued assets into model-drafted caption
// suggestions. Completion calls fan out with bounded concurrency while all
// collection writes stay on one goroutine, flushed per item, so an
// interrupted run resumes from its last committed suggestion.
package suggest
