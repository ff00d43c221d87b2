package assembler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/release-manifest/internal/client/artifactory"
	"github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/repository/profile"
	"github.com/oshokin/release-manifest/internal/service/resolver"
	"github.com/oshokin/release-manifest/internal/service/resolver/mocks"
)

const (
	testSWVersion = "BSW_VCC_20.0.1"
	testRepo      = "ARTBC-SUM-LTS"
	testSuffix    = "SWLM/xcp_disabled/vbf"
)

var errTestUpstream = errors.New("upstream unavailable")

// memoryProfiles serves documents keyed by id string.
type memoryProfiles map[string]manifest.Document

func (m memoryProfiles) Get(_ context.Context, id string) (manifest.Document, error) {
	doc, ok := m[id]
	if !ok {
		return nil, profile.ErrNotFound
	}

	return doc.Clone(), nil
}

type fixture struct {
	tags      *mocks.MockTagLookup
	repo      *mocks.MockArtifactRepository
	assembler *Assembler
}

func newFixture(t *testing.T, profiles ProfileSource) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		tags: mocks.NewMockTagLookup(ctrl),
		repo: mocks.NewMockArtifactRepository(ctrl),
	}

	f.assembler = New(
		profiles,
		resolver.NewTagResolver(f.tags),
		resolver.NewArtifactResolver(f.repo, resolver.ArtifactOptions{
			Repo:   testRepo,
			Filter: resolver.SuffixFilter(testSuffix, nil),
		}),
		Options{Workers: 2},
	)

	return f
}

func item(typeTag string) artifactory.Item {
	return artifactory.Item{Repo: testRepo, Path: typeTag + "/" + testSuffix, Name: typeTag + ".vbf"}
}

func itemURL(it artifactory.Item) string {
	return "https://artifactory/" + it.Repo + "/" + it.Path + "/" + it.Name
}

// expectArtifacts answers each query with the items listed for its type tag.
func (f *fixture) expectArtifacts(byType map[string][]artifactory.Item) {
	f.repo.EXPECT().Query(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q artifactory.Query) ([]artifactory.Item, error) {
			return byType[q.Properties["type"]], nil
		}).AnyTimes()
	f.repo.EXPECT().DownloadURL(gomock.Any()).DoAndReturn(itemURL).AnyTimes()
	f.repo.EXPECT().Checksum(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, it artifactory.Item) (string, error) {
			return "sha-" + it.Name, nil
		}).AnyTimes()
}

// TestGenerate_PackageVersionFromBuildVersion checks the numeric id scenario.
func TestGenerate_PackageVersionFromBuildVersion(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memoryProfiles{
		"42": {
			"sw_package_id": float64(42),
			"artifacts":     []any{map[string]any{"name": "SUM SWLM"}},
		},
	})
	f.expectArtifacts(map[string][]artifactory.Item{"swlm": {item("swlm")}})

	m, err := f.assembler.Generate(context.Background(), "42", testSWVersion)
	require.NoError(t, err)

	require.Equal(t, float64(42), m.SWPackageID)
	require.Equal(t, "20.0.1.0", m.SWPackageVersion)
	require.Equal(t, testSWVersion, m.SWVersion)
	require.Equal(t, manifest.DefaultPackageType, m.SWPackageType)
	require.Equal(t, manifest.Document{}, m.GenericProductModule)
	require.Equal(t, []any{}, m.SWAD)
	require.Equal(t, []any{}, m.SWDD)
	require.Empty(t, m.SourceReferences)

	require.Len(t, m.Artifacts, 1)
	require.Equal(t, manifest.Artifact{
		Idx:                     1,
		Name:                    "SUM SWLM",
		Kind:                    manifest.ArtifactKind,
		Version:                 testSWVersion,
		Location:                itemURL(item("swlm")),
		SHA256:                  "sha-swlm.vbf",
		TargetPlatform:          manifest.TargetPlatform,
		BuildtimeConfigurations: manifest.DefaultBuildtimeConfigurations(),
		SourceReferencesIdx:     []int{},
	}, m.Artifacts[0])
}

// TestGenerate_ArtifactFailuresDegrade keeps the manifest when single artifacts fail.
func TestGenerate_ArtifactFailuresDegrade(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memoryProfiles{
		"7": {
			"sw_package_id": "7",
			"artifacts": []any{
				map[string]any{"name": "SUM SWLM", "source_references_idx": []any{float64(3), float64(1)}},
				map[string]any{"name": "SUM SWP1"},
				map[string]any{"name": "NOT A THING"},
				map[string]any{"name": "SUM SWP2"},
			},
		},
	})
	f.expectArtifacts(map[string][]artifactory.Item{
		// Two candidates under the right folder make SWLM ambiguous.
		"swlm": {item("swlm"), {Repo: testRepo, Path: "other/" + testSuffix, Name: "swlm.vbf"}},
		"swp1": {item("swp1")},
	})

	m, err := f.assembler.Generate(context.Background(), "7", testSWVersion)
	require.NoError(t, err)
	require.Len(t, m.Artifacts, 4)

	for i, a := range m.Artifacts {
		require.Equal(t, i+1, a.Idx)
		require.Equal(t, manifest.ArtifactKind, a.Kind)
	}

	require.Empty(t, m.Artifacts[0].Location)
	require.Empty(t, m.Artifacts[0].SHA256)
	require.Equal(t, []int{1, 3}, m.Artifacts[0].SourceReferencesIdx)

	require.Equal(t, itemURL(item("swp1")), m.Artifacts[1].Location)
	require.Equal(t, "sha-swp1.vbf", m.Artifacts[1].SHA256)

	require.Empty(t, m.Artifacts[2].Location)
	require.Equal(t, "NOT A THING", m.Artifacts[2].Name)

	require.Empty(t, m.Artifacts[3].Location)
}

// TestGenerate_SourceReferences resolves locations, inherits project ids and renumbers.
func TestGenerate_SourceReferences(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memoryProfiles{
		"1": {
			"sw_package_id":   float64(1),
			"sw_package_type": "delta",
			"source_references": []any{
				map[string]any{
					"idx":      float64(10),
					"name":     "Generated data",
					"version":  nil,
					"location": " GenData/Foo ",
					"additional_information": []any{
						map[string]any{"title": "Spec", "location": ""},
						map[string]any{"title": "Design", "location": "Docs/Bar", "version": "keep"},
					},
					"change_log": map[string]any{"version": ""},
				},
				map[string]any{
					"idx":        float64(4),
					"name":       "Pinned",
					"owner":      "Core team",
					"version":    "BSW_VCC_19.0.0",
					"location":   "Core/Baz",
					"components": []any{"a", "b"},
					"change_log": map[string]any{"filename": "History", "location": "Core/Log"},
				},
			},
		},
	})

	const bazURL = "https://gerrit/Core/Baz/+/refs/tags/" + testSWVersion

	// GenData/Foo misses and is asked for once despite three uses.
	f.tags.EXPECT().FindTagURL(gomock.Any(), "GenData/Foo", testSWVersion).Return("", nil).Times(1)
	f.tags.EXPECT().FindTagURL(gomock.Any(), "Docs/Bar", testSWVersion).Return("", errTestUpstream)
	// A pinned reference version does not change the tag that is looked up.
	f.tags.EXPECT().FindTagURL(gomock.Any(), "Core/Baz", testSWVersion).Return(bazURL, nil)
	f.tags.EXPECT().FindTagURL(gomock.Any(), "Core/Log", testSWVersion).Return("https://gerrit/log", nil)

	m, err := f.assembler.Generate(context.Background(), "1", testSWVersion)
	require.NoError(t, err)
	require.Equal(t, "delta", m.SWPackageType)
	require.Empty(t, m.Artifacts)
	require.Len(t, m.SourceReferences, 2)

	first := m.SourceReferences[0]
	require.Equal(t, 1, first.Idx)
	require.Equal(t, testSWVersion, first.Version)
	require.Equal(t, "GenData/Foo", first.Location)
	require.Equal(t, []any{}, first.Components)
	require.Equal(t, []manifest.AdditionalInformation{
		{Title: "Spec", Location: "GenData/Foo"},
		{Title: "Design", Location: "Docs/Bar", Extra: manifest.Document{"version": "keep"}},
	}, first.AdditionalInformation)
	require.Equal(t, manifest.ChangeLog{
		Filenamn: manifest.DefaultChangeLogName,
		Version:  testSWVersion,
		Location: "GenData/Foo",
	}, first.ChangeLog)

	second := m.SourceReferences[1]
	require.Equal(t, 2, second.Idx)
	require.Equal(t, "BSW_VCC_19.0.0", second.Version)
	require.Equal(t, bazURL, second.Location)
	require.Equal(t, []any{"a", "b"}, second.Components)
	require.Empty(t, second.AdditionalInformation)
	require.Equal(t, manifest.ChangeLog{
		Filenamn: "History",
		Version:  testSWVersion,
		Location: "https://gerrit/log",
	}, second.ChangeLog)

	doc, err := m.Document()
	require.NoError(t, err)

	refs := doc.List("source_references")
	require.Len(t, refs, 2)

	firstDoc, ok := refs[0].(map[string]any)
	require.True(t, ok)

	infos, ok := firstDoc["additional_information"].([]any)
	require.True(t, ok)
	require.Len(t, infos, 2)
	require.Equal(t, map[string]any{
		"title":        "Design",
		"category":     "",
		"kind":         "",
		"content_type": "",
		"location":     "Docs/Bar",
		"version":      "keep",
	}, infos[1])

	secondDoc, ok := refs[1].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Core team", secondDoc["owner"])
	require.Equal(t, "BSW_VCC_19.0.0", secondDoc["version"])
}

// TestGenerate_Idempotent returns equal manifests for equal inputs.
func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memoryProfiles{
		"9": {
			"sw_package_id":          float64(9),
			"generic_product_module": map[string]any{"name": "SUM", "version": nil},
			"swad":                   []any{map[string]any{"version": ""}},
			"source_references":      []any{map[string]any{"name": "r", "location": "P/Q"}},
			"artifacts": []any{
				map[string]any{"name": "SUM SWP4", "source_references_idx": []any{float64(1)}},
			},
		},
	})
	f.expectArtifacts(map[string][]artifactory.Item{"swp4": {item("swp4")}})
	f.tags.EXPECT().FindTagURL(gomock.Any(), "P/Q", testSWVersion).Return("https://gerrit/P/Q", nil).Times(2)

	first, err := f.assembler.Generate(context.Background(), "9", testSWVersion)
	require.NoError(t, err)

	second, err := f.assembler.Generate(context.Background(), "9", testSWVersion)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Equal(t, testSWVersion, first.GenericProductModule["version"])
	require.Equal(t, []any{map[string]any{"version": testSWVersion}}, first.SWAD)

	doc, err := first.Document()
	require.NoError(t, err)
	require.Equal(t, "20.0.1.0", doc["sw_package_version"])
}

// TestGenerate_Aborts covers the only failures surfaced to callers.
func TestGenerate_Aborts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memoryProfiles{})
	ctx := context.Background()

	_, err := f.assembler.Generate(ctx, "404", testSWVersion)
	require.ErrorIs(t, err, manifest.ErrProfileNotFound)

	_, err = f.assembler.Generate(ctx, " ", testSWVersion)
	require.ErrorIs(t, err, manifest.ErrInvalidInput)

	_, err = f.assembler.Generate(ctx, "42", "")
	require.ErrorIs(t, err, manifest.ErrInvalidInput)

	_, err = New(nil, nil, nil, Options{}).Generate(ctx, "42", testSWVersion)
	require.ErrorIs(t, err, manifest.ErrProfileNotFound)
}

// TestGenerate_FileRepository reads numeric ids stored on disk.
func TestGenerate_FileRepository(t *testing.T) {
	t.Parallel()

	repo := profile.NewFileRepository(t.TempDir() + "/profiles.json")

	_, err := repo.Upsert(context.Background(), manifest.Document{
		"sw_package_id": 42,
		"artifacts":     []any{map[string]any{"name": "SUM SWLM"}},
	})
	require.NoError(t, err)

	m, err := New(repo, nil, nil, Options{}).Generate(context.Background(), "42", testSWVersion)
	require.NoError(t, err)
	require.True(t, manifest.SameID(42, m.SWPackageID))
	require.Len(t, m.Artifacts, 1)
	require.Empty(t, m.Artifacts[0].Location)
}
