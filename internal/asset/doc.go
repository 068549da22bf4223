// Package asset defines the records that flow between pipeline stages: queue
// entries produced by scanning, suggestions produced by generation, and
// captions produced by labeling.
//
// An asset is identified by its (document path, locator) pair. Content
// fingerprints identify the referenced media itself and may coincide across
// assets when the same file is embedded from several documents.
package asset
