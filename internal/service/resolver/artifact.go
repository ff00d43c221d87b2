package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/release-manifest/internal/client/artifactory"
	"github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
)

// ResolvedArtifact is the concrete location of a logical artifact.
type ResolvedArtifact struct {
	URL    string `json:"location"`
	SHA256 string `json:"sha256"`
}

// PathFilter decides whether a candidate path belongs to the wanted file kind.
type PathFilter func(name, path string) bool

// AnySuffix is the path suffix that keeps every candidate.
const AnySuffix = "*"

// SuffixFilter keeps candidates whose path ends with the suffix configured for
// the artifact name, falling back to defaultSuffix. An empty suffix or
// AnySuffix keeps everything.
func SuffixFilter(defaultSuffix string, perName map[string]string) PathFilter {
	return func(name, path string) bool {
		suffix := defaultSuffix
		if override, ok := perName[name]; ok {
			suffix = override
		}

		if suffix == AnySuffix {
			return true
		}

		return strings.HasSuffix(strings.TrimRight(path, "/"), strings.TrimRight(suffix, "/"))
	}
}

// ArtifactOptions configures an ArtifactResolver.
type ArtifactOptions struct {
	// Repo is the repository key searched.
	Repo string
	// PathContains narrows the search server-side when non-empty.
	PathContains string
	// Filter selects candidates client-side; nil keeps every candidate.
	Filter PathFilter
}

// ArtifactResolver resolves logical artifact names to repository items.
type ArtifactResolver struct {
	repository ArtifactRepository
	opts       ArtifactOptions
}

// NewArtifactResolver creates a resolver over repository.
func NewArtifactResolver(repository ArtifactRepository, opts ArtifactOptions) *ArtifactResolver {
	return &ArtifactResolver{
		repository: repository,
		opts:       opts,
	}
}

// Resolve finds the single repository item for name at swVersion and its checksum.
//
// Unknown names fail with ErrUnknownArtifactName, zero candidates with
// ErrArtifactNotFound and several with *AmbiguousArtifactError. A failed
// checksum lookup keeps the URL and returns an empty checksum.
func (r *ArtifactResolver) Resolve(ctx context.Context, name, swVersion string) (ResolvedArtifact, error) {
	spec, ok := LookupArtifact(name)
	if !ok {
		return ResolvedArtifact{}, fmt.Errorf("%w: %q, known names are %s",
			manifest.ErrUnknownArtifactName, name, strings.Join(ArtifactNames(), ", "))
	}

	if r.repository == nil {
		return ResolvedArtifact{}, fmt.Errorf("%w: artifact repository is not configured", manifest.ErrArtifactNotFound)
	}

	candidates, err := r.repository.Query(ctx, artifactory.Query{
		Repo:         r.opts.Repo,
		Properties:   spec.Properties(swVersion),
		Type:         artifactory.TypeFile,
		PathContains: r.opts.PathContains,
	})
	if err != nil {
		return ResolvedArtifact{}, fmt.Errorf("%w: %q: %w", manifest.ErrArtifactNotFound, name, err)
	}

	var matches []artifactory.Item

	for _, candidate := range candidates {
		if r.opts.Filter == nil || r.opts.Filter(name, candidate.Path) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return ResolvedArtifact{}, fmt.Errorf("%w: %q", manifest.ErrArtifactNotFound, name)
	case 1:
	default:
		urls := make([]string, 0, len(matches))
		for _, m := range matches {
			urls = append(urls, r.repository.DownloadURL(m))
		}

		return ResolvedArtifact{}, &manifest.AmbiguousArtifactError{Name: name, URLs: urls}
	}

	item := matches[0]
	resolved := ResolvedArtifact{URL: r.repository.DownloadURL(item)}

	sum, err := r.repository.Checksum(ctx, item)
	if err != nil {
		logger.WarnKV(ctx, "Checksum lookup failed, leaving sha256 empty", "artifact", name, "url", resolved.URL, "error", err)

		return resolved, nil
	}

	resolved.SHA256 = sum

	return resolved, nil
}
