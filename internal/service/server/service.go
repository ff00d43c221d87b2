package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	api "github.com/oshokin/release-manifest/internal/api/grpc/manifest"
	"github.com/oshokin/release-manifest/internal/client/artifactory"
	"github.com/oshokin/release-manifest/internal/client/carweaver"
	"github.com/oshokin/release-manifest/internal/client/gerrit"
	"github.com/oshokin/release-manifest/internal/client/httpx"
	"github.com/oshokin/release-manifest/internal/config"
	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
	repo "github.com/oshokin/release-manifest/internal/repository/profile"
	"github.com/oshokin/release-manifest/internal/service/assembler"
	"github.com/oshokin/release-manifest/internal/service/resolver"
)

// upstreams groups the optional clients of external systems. A nil client
// means the system is not configured.
type upstreams struct {
	gerrit      *gerrit.Client
	artifactory *artifactory.Client
	carweaver   *carweaver.Client
}

// service implements api.Service on top of the profile store, the
// assembler and the upstream clients.
type service struct {
	// profiles is the long-lived profile store.
	profiles repo.Repository
	// assembler builds manifests.
	assembler *assembler.Assembler
	// artifacts resolves single artifacts on demand.
	artifacts *resolver.ArtifactResolver

	upstreams upstreams
	// session is the CarWeaver session shared by item lookups.
	session *carweaver.Session
}

var _ api.Service = (*service)(nil)

// newUpstreams builds a client for every upstream that has a URL configured.
func newUpstreams(cfg *config.Config) (upstreams, error) {
	var (
		u   upstreams
		err error
	)

	httpClient := httpx.NewClient(cfg.Timeout)

	if cfg.Gerrit.URL != "" {
		u.gerrit, err = gerrit.New(gerrit.Config{
			BaseURL:    cfg.Gerrit.URL,
			User:       cfg.Gerrit.User,
			Password:   cfg.Gerrit.Password,
			HTTPClient: httpClient,
		})
		if err != nil {
			return u, fmt.Errorf("gerrit client: %w", err)
		}
	}

	if cfg.Artifactory.BaseURL != "" {
		u.artifactory, err = artifactory.New(artifactory.Config{
			BaseURL:    cfg.Artifactory.BaseURL,
			Token:      cfg.Artifactory.Token,
			HTTPClient: httpClient,
		})
		if err != nil {
			return u, fmt.Errorf("artifactory client: %w", err)
		}
	}

	if cfg.CarWeaver.URL != "" {
		u.carweaver, err = carweaver.New(carweaver.Config{
			URL:        cfg.CarWeaver.URL,
			User:       cfg.CarWeaver.User,
			Password:   cfg.CarWeaver.Password,
			UserKey:    cfg.CarWeaver.UserKey,
			HTTPClient: httpClient,
		})
		if err != nil {
			return u, fmt.Errorf("carweaver client: %w", err)
		}
	}

	return u, nil
}

// newService wires the resolvers and the assembler over the given upstreams.
func newService(cfg *config.Config, profiles repo.Repository, u upstreams) *service {
	var (
		tagLookup resolver.TagLookup
		artifacts resolver.ArtifactRepository
	)

	// Typed nil clients must not leak into the interfaces.
	if u.gerrit != nil {
		tagLookup = u.gerrit
	}

	if u.artifactory != nil {
		artifacts = u.artifactory
	}

	artifactResolver := resolver.NewArtifactResolver(artifacts, resolver.ArtifactOptions{
		Repo:   cfg.Artifactory.Repo,
		Filter: resolver.SuffixFilter(cfg.Artifactory.PathSuffix, cfg.Artifactory.PathSuffixes),
	})

	s := &service{
		profiles: profiles,
		assembler: assembler.New(
			profiles,
			resolver.NewTagResolver(tagLookup),
			artifactResolver,
			assembler.Options{Workers: cfg.ResolveWorkers},
		),
		artifacts: artifactResolver,
		upstreams: u,
	}

	if u.carweaver != nil {
		s.session = u.carweaver.NewSession()
	}

	return s
}

// Generate assembles the manifest of a stored profile.
func (s *service) Generate(ctx context.Context, id, swVersion string) (*domain.Manifest, error) {
	return s.assembler.Generate(ctx, id, swVersion)
}

// ListProfiles returns every stored profile in storage order.
func (s *service) ListProfiles(ctx context.Context) ([]domain.Document, error) {
	return s.profiles.GetAll(ctx)
}

// GetProfile returns the stored profile with the given id.
func (s *service) GetProfile(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, profileError(id, err)
	}

	return doc, nil
}

// UpsertProfile stores doc. With an id the slot of that id is replaced and a
// missing sw_package_id is taken from it, as a number when it is all digits.
// Without an id the document's own sw_package_id is used.
func (s *service) UpsertProfile(ctx context.Context, id string, doc domain.Document) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		created, err := s.profiles.Upsert(ctx, doc)
		if err == nil {
			logger.InfoKV(ctx, "Profile stored", "sw_package_id", doc.ID(), "created", created)
		}

		return created, err
	}

	if !doc.HasID() {
		doc = doc.Clone()
		doc[domain.IDKey] = idValue(id)
	}

	created, err := s.profiles.Put(ctx, id, doc)
	if err != nil {
		return false, err
	}

	logger.InfoKV(ctx, "Profile stored", "sw_package_id", id, "created", created)

	return created, nil
}

// ReplaceProfiles overwrites the stored list.
func (s *service) ReplaceProfiles(ctx context.Context, docs []domain.Document) error {
	if err := s.profiles.ReplaceAll(ctx, docs); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Profiles replaced", "count", len(docs))

	return nil
}

// DeleteProfile removes a stored profile, failing when it does not exist.
func (s *service) DeleteProfile(ctx context.Context, id string) (bool, error) {
	deleted, err := s.profiles.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	if !deleted {
		return false, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, id)
	}

	logger.InfoKV(ctx, "Profile deleted", "sw_package_id", id)

	return true, nil
}

// ResolveTag looks up one exact tag. Unlike manifest assembly it reports a miss.
func (s *service) ResolveTag(ctx context.Context, project, tag string) (string, error) {
	project = strings.TrimSpace(project)
	if project == "" || strings.TrimSpace(tag) == "" {
		return "", fmt.Errorf("%w: project and tag are required", domain.ErrInvalidInput)
	}

	if s.upstreams.gerrit == nil {
		return "", fmt.Errorf("gerrit: %w", domain.ErrNotConfigured)
	}

	url, err := s.upstreams.gerrit.FindTagURL(ctx, project, tag)
	if err != nil {
		return "", err
	}

	if url == "" {
		return "", fmt.Errorf("%w: %s in %s", domain.ErrTagNotFound, tag, project)
	}

	return url, nil
}

// ListTags returns the tags of a project with their browse URLs.
func (s *service) ListTags(ctx context.Context, project string) ([]api.TagInfo, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, fmt.Errorf("%w: project is required", domain.ErrInvalidInput)
	}

	if s.upstreams.gerrit == nil {
		return nil, fmt.Errorf("gerrit: %w", domain.ErrNotConfigured)
	}

	tags, err := s.upstreams.gerrit.ListTags(ctx, project)
	if err != nil {
		return nil, err
	}

	result := make([]api.TagInfo, 0, len(tags))
	for _, tag := range tags {
		result = append(result, api.TagInfo{Tag: tag, URL: s.upstreams.gerrit.BrowseURL(tag)})
	}

	return result, nil
}

// ResolveArtifact resolves a single logical artifact.
func (s *service) ResolveArtifact(ctx context.Context, name, swVersion string) (resolver.ResolvedArtifact, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(swVersion) == "" {
		return resolver.ResolvedArtifact{}, fmt.Errorf("%w: name and sw_version are required", domain.ErrInvalidInput)
	}

	if s.upstreams.artifactory == nil {
		return resolver.ResolvedArtifact{}, fmt.Errorf("artifactory: %w", domain.ErrNotConfigured)
	}

	return s.artifacts.Resolve(ctx, strings.TrimSpace(name), strings.TrimSpace(swVersion))
}

// GetItem fetches a CarWeaver item through the shared session.
func (s *service) GetItem(ctx context.Context, id string) (*carweaver.Item, error) {
	if s.upstreams.carweaver == nil {
		return nil, fmt.Errorf("carweaver: %w", domain.ErrNotConfigured)
	}

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	return s.upstreams.carweaver.GetItem(ctx, s.session, id)
}

// profileError maps store misses to the domain error.
func profileError(id string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, id)
	}

	return err
}

// idValue stores all-digit ids as numbers.
func idValue(id string) any {
	if strings.Trim(id, "0123456789") == "" {
		if n, err := strconv.Atoi(id); err == nil {
			return n
		}
	}

	return id
}
