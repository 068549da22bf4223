// Package store persists the three pipeline collections as JSON files:
// queued assets (full replace per scan), suggestions, and approved captions
// (both incrementally updated, flushed per mutation).
//
// Writers take an advisory flock on a sibling .lock file for the lifetime of
// the store, enforcing the single-writer-per-file discipline; readers load
// without locking. Every write lands via temp file + rename so readers never
// observe a partial document.
package store
