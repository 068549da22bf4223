// Package pipeline defines the error taxonomy and run bookkeeping shared by
// the scan, generate, and label stages.
//
// Per-asset failures in batch stages are isolated and summarized; structural
// failures (bad root, corrupt state file, unknown model) abort the stage.
// IsFatal distinguishes the two.
package pipeline
