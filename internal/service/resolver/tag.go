package resolver

import (
	"context"
	"strings"

	"github.com/oshokin/release-manifest/internal/logger"
)

// TagResolver resolves project ids to tag URLs.
type TagResolver struct {
	lookup TagLookup
}

// NewTagResolver creates a resolver backed by lookup. A nil lookup makes
// every resolution fall back to the project id.
func NewTagResolver(lookup TagLookup) *TagResolver {
	return &TagResolver{lookup: lookup}
}

// Resolve returns the browse URL of the tag named version in project.
// A blank project yields "" without calling upstream; a miss or an upstream
// failure yields the trimmed project id.
func (r *TagResolver) Resolve(ctx context.Context, project, version string) string {
	project = strings.TrimSpace(project)
	if project == "" {
		return ""
	}

	if r == nil || r.lookup == nil {
		return project
	}

	url, err := r.lookup.FindTagURL(ctx, project, version)
	if err != nil {
		logger.WarnKV(ctx, "Tag lookup failed, keeping project id", "project", project, "tag", version, "error", err)

		return project
	}

	if url == "" {
		logger.DebugKV(ctx, "Tag not found, keeping project id", "project", project, "tag", version)

		return project
	}

	return url
}
