package assembler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
	"github.com/oshokin/release-manifest/internal/repository/profile"
	"github.com/oshokin/release-manifest/internal/service/resolver"
)

// DefaultWorkers bounds concurrent resolutions when Options.Workers is unset.
const DefaultWorkers = 4

// ProfileSource loads stored profile documents.
type ProfileSource interface {
	Get(ctx context.Context, id string) (manifest.Document, error)
}

// TagResolver turns a project id into a tag URL, falling back to the id.
type TagResolver interface {
	Resolve(ctx context.Context, project, version string) string
}

// ArtifactResolver finds the location and checksum of a logical artifact.
type ArtifactResolver interface {
	Resolve(ctx context.Context, name, swVersion string) (resolver.ResolvedArtifact, error)
}

// Options tunes an Assembler.
type Options struct {
	// Workers bounds concurrent upstream resolutions per request.
	Workers int
}

// Assembler generates manifests.
type Assembler struct {
	profiles  ProfileSource
	tags      TagResolver
	artifacts ArtifactResolver
	workers   int
}

// New creates an Assembler. Nil resolvers make every lookup degrade.
func New(profiles ProfileSource, tags TagResolver, artifacts ArtifactResolver, opts Options) *Assembler {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Assembler{
		profiles:  profiles,
		tags:      tags,
		artifacts: artifacts,
		workers:   workers,
	}
}

// Generate assembles the manifest of package id at build version swVersion.
//
// It fails with manifest.ErrInvalidInput when either argument is blank and
// with manifest.ErrProfileNotFound when no profile matches id.
func (a *Assembler) Generate(ctx context.Context, id, swVersion string) (*manifest.Manifest, error) {
	id = strings.TrimSpace(id)
	swVersion = strings.TrimSpace(swVersion)

	switch {
	case id == "":
		return nil, fmt.Errorf("%w: sw_package_id is required", manifest.ErrInvalidInput)
	case swVersion == "":
		return nil, fmt.Errorf("%w: sw_version is required", manifest.ErrInvalidInput)
	}

	ctx = logger.WithFields(ctx, map[string]any{"sw_package_id": id, "sw_version": swVersion})

	doc, err := a.load(ctx, id)
	if err != nil {
		return nil, err
	}

	p := manifest.ParseProfile(manifest.FillDocumentVersions(doc, swVersion))

	run := &generation{
		assembler: a,
		swVersion: swVersion,
		tags:      newTagCache(a.tags),
	}

	refs, artifacts := run.resolve(ctx, p)

	m := &manifest.Manifest{
		SWPackageID:          p.ID,
		SWPackageVersion:     manifest.DerivePackageVersion(swVersion),
		SWPackageType:        manifest.FirstNonEmpty(p.PackageType, manifest.DefaultPackageType),
		GenericProductModule: p.GenericProductModule,
		SourceReferences:     refs,
		SWAD:                 p.SWAD,
		SWDD:                 p.SWDD,
		Artifacts:            artifacts,
		SWVersion:            swVersion,
	}

	if m.SWPackageID == nil {
		m.SWPackageID = id
	}

	if m.GenericProductModule == nil {
		m.GenericProductModule = manifest.Document{}
	}

	if m.SWAD == nil {
		m.SWAD = []any{}
	}

	if m.SWDD == nil {
		m.SWDD = []any{}
	}

	logger.InfoKV(ctx, "Manifest generated",
		"source_references", len(m.SourceReferences), "artifacts", len(m.Artifacts))

	return m, nil
}

func (a *Assembler) load(ctx context.Context, id string) (manifest.Document, error) {
	if a.profiles == nil {
		return nil, fmt.Errorf("%w: %s", manifest.ErrProfileNotFound, id)
	}

	doc, err := a.profiles.Get(ctx, id)

	switch {
	case errors.Is(err, profile.ErrNotFound), err == nil && doc == nil:
		return nil, fmt.Errorf("%w: %s", manifest.ErrProfileNotFound, id)
	case err != nil:
		return nil, fmt.Errorf("load profile %s: %w", id, err)
	}

	return doc, nil
}

// generation holds the state of a single Generate call.
type generation struct {
	assembler *Assembler
	swVersion string
	tags      *tagCache
}

// resolve runs every reference and artifact resolution on a bounded group.
// Results are stored by input position so output order never depends on
// completion order.
func (g *generation) resolve(ctx context.Context, p *manifest.Profile) ([]manifest.SourceReference, []manifest.Artifact) {
	refs := make([]manifest.SourceReference, len(p.SourceReferences))
	results := make([]manifest.Result[resolver.ResolvedArtifact], len(p.Artifacts))

	var group errgroup.Group

	group.SetLimit(g.assembler.workers)

	for i, ref := range p.SourceReferences {
		group.Go(func() error {
			refs[i] = g.resolveReference(ctx, ref)

			return nil
		})
	}

	for i, artifact := range p.Artifacts {
		group.Go(func() error {
			results[i] = g.resolveArtifact(ctx, artifact.Name)

			return nil
		})
	}

	// Workers never fail; degraded items are carried in the results.
	_ = group.Wait()

	for i := range refs {
		refs[i].Idx = i + 1
	}

	artifacts := make([]manifest.Artifact, len(p.Artifacts))
	for i, artifact := range p.Artifacts {
		artifacts[i] = g.buildArtifact(ctx, i+1, artifact, results[i])
	}

	return refs, artifacts
}

// resolveReference resolves the locations of a reference and its documents.
// Every tag lookup uses the requested build version, including references
// that pin their own version.
func (g *generation) resolveReference(ctx context.Context, ref manifest.SourceReference) manifest.SourceReference {
	project := strings.TrimSpace(ref.Location)

	out := manifest.SourceReference{
		Name:                   ref.Name,
		Version:                manifest.FirstNonEmpty(ref.Version, g.swVersion),
		Location:               g.tags.resolve(ctx, project, g.swVersion),
		Components:             slices.Clone(ref.Components),
		AdditionalInformation:  make([]manifest.AdditionalInformation, 0, len(ref.AdditionalInformation)),
		RegulatoryRequirements: ref.RegulatoryRequirements,
		Extra:                  ref.Extra,
	}

	if out.Components == nil {
		out.Components = []any{}
	}

	for _, ai := range ref.AdditionalInformation {
		ai.Location = g.tags.resolve(ctx, manifest.FirstNonEmpty(ai.Location, project), g.swVersion)
		out.AdditionalInformation = append(out.AdditionalInformation, ai)
	}

	out.ChangeLog = manifest.ChangeLog{
		Filenamn: manifest.FirstNonEmpty(ref.ChangeLog.Filenamn, manifest.DefaultChangeLogName),
		Version:  manifest.FirstNonEmpty(ref.ChangeLog.Version, g.swVersion),
		Location: g.tags.resolve(ctx, manifest.FirstNonEmpty(ref.ChangeLog.Location, project), g.swVersion),
	}

	return out
}

func (g *generation) resolveArtifact(ctx context.Context, name string) manifest.Result[resolver.ResolvedArtifact] {
	if g.assembler.artifacts == nil {
		return manifest.Fail[resolver.ResolvedArtifact](
			fmt.Errorf("%w: artifact repository is not configured", manifest.ErrArtifactNotFound))
	}

	resolved, err := g.assembler.artifacts.Resolve(ctx, name, g.swVersion)
	if err != nil {
		return manifest.Fail[resolver.ResolvedArtifact](err)
	}

	return manifest.Ok(resolved)
}

func (g *generation) buildArtifact(
	ctx context.Context,
	idx int,
	artifact manifest.Artifact,
	result manifest.Result[resolver.ResolvedArtifact],
) manifest.Artifact {
	out := manifest.Artifact{
		Idx:                     idx,
		Name:                    artifact.Name,
		Kind:                    manifest.ArtifactKind,
		Version:                 manifest.FirstNonEmpty(artifact.Version, g.swVersion),
		TargetPlatform:          manifest.TargetPlatform,
		BuildtimeConfigurations: manifest.DefaultBuildtimeConfigurations(),
		SourceReferencesIdx:     slices.Sorted(slices.Values(artifact.SourceReferencesIdx)),
	}

	if out.SourceReferencesIdx == nil {
		out.SourceReferencesIdx = []int{}
	}

	if !result.OK() {
		logger.WarnKV(ctx, "Artifact resolution failed, leaving location empty",
			"artifact", artifact.Name, "idx", idx, "error", result.Err)

		return out
	}

	out.Location = result.Value.URL
	out.SHA256 = result.Value.SHA256

	return out
}
