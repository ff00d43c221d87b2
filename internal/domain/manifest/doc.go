// Package manifest contains the core domain types for release manifests.
//
// It defines Document (a loosely typed profile tree as stored on disk),
// the typed Manifest produced by assembly, version derivation helpers and
// the version filler that walks a document tree.
package manifest
