// Package resolver turns logical references into addressable locations.
//
// TagResolver maps a project and version to a browsable tag URL and never
// fails: misses and upstream errors fall back to the project id.
// ArtifactResolver maps a logical artifact name to exactly one repository
// item and its checksum, and fails loudly on unknown names, misses and
// ambiguous matches.
package resolver
