// Package version exposes build metadata for the manifest binaries.
//
// Version, Commit and BuildTime are injected at build time via ldflags.
// Full renders them for the CLI and UserAgent identifies the service to the
// upstream systems it queries.
package version
