package resolver

import (
	"context"

	"github.com/oshokin/release-manifest/internal/client/artifactory"
)

// TagLookup is the version-control capability the tag resolver needs.
//
//go:generate go run go.uber.org/mock/mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks
type TagLookup interface {
	// FindTagURL returns the browse URL of the exact tag, or "" when absent.
	FindTagURL(ctx context.Context, project, tagName string) (string, error)
}

// ArtifactRepository is the artifact-repository capability the artifact resolver needs.
type ArtifactRepository interface {
	// Query returns every item matching the search.
	Query(ctx context.Context, q artifactory.Query) ([]artifactory.Item, error)
	// Checksum returns the item's SHA-256, or "" when none is recorded.
	Checksum(ctx context.Context, item artifactory.Item) (string, error)
	// DownloadURL composes the canonical URL of the item.
	DownloadURL(item artifactory.Item) string
}
