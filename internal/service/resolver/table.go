package resolver

import (
	"slices"

	"github.com/oshokin/release-manifest/internal/domain/manifest"
)

// VersionSource selects which derived version feeds the search predicate.
type VersionSource int

const (
	// ByBaselineVersion matches the full build version under "baseline.sw.version".
	ByBaselineVersion VersionSource = iota + 1
	// ByRelease matches the dotted release under "release".
	ByRelease
)

// ArtifactSpec describes how a logical artifact is searched for.
type ArtifactSpec struct {
	// Source selects the version property.
	Source VersionSource
	// TypeTag is the value of the repository "type" property.
	TypeTag string
}

// Properties builds the property predicate for a build version.
func (s ArtifactSpec) Properties(swVersion string) map[string]string {
	props := map[string]string{"type": s.TypeTag}

	switch s.Source {
	case ByBaselineVersion:
		props["baseline.sw.version"] = swVersion
	case ByRelease:
		props["release"] = manifest.DeriveRelease(swVersion)
	}

	return props
}

// artifactTable maps logical artifact names to their search description.
//
//nolint:gochecknoglobals // Static lookup table.
var artifactTable = map[string]ArtifactSpec{
	"SUM SWLM": {Source: ByBaselineVersion, TypeTag: "swlm"},
	"SUM SWP1": {Source: ByRelease, TypeTag: "swp1"},
	"SUM SWP2": {Source: ByRelease, TypeTag: "swp2"},
	"SUM SWP4": {Source: ByRelease, TypeTag: "swp4"},
}

// LookupArtifact returns the search description of a logical artifact name.
func LookupArtifact(name string) (ArtifactSpec, bool) {
	spec, ok := artifactTable[name]

	return spec, ok
}

// ArtifactNames lists the known logical artifact names in sorted order.
func ArtifactNames() []string {
	names := make([]string, 0, len(artifactTable))
	for name := range artifactTable {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
