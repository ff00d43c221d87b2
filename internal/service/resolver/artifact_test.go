package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/release-manifest/internal/client/artifactory"
	"github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/service/resolver/mocks"
)

const (
	testRepo    = "ARTBC-SUM-LTS"
	testSuffix  = "SWLM/xcp_disabled/vbf"
	testVersion = "BSW_VCC_20.0.1"
)

func downloadURL(item artifactory.Item) string {
	return "https://artifactory/" + item.Repo + "/" + item.Path + "/" + item.Name
}

func newTestResolver(repo ArtifactRepository) *ArtifactResolver {
	return NewArtifactResolver(repo, ArtifactOptions{
		Repo:   testRepo,
		Filter: SuffixFilter(testSuffix, nil),
	})
}

// TestArtifactResolver_Success filters by path suffix and fetches the checksum.
func TestArtifactResolver_Success(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockArtifactRepository(ctrl)

	want := artifactory.Item{Repo: testRepo, Path: "20.0.1/SWLM/xcp_disabled/vbf", Name: "swlm.vbf"}
	other := artifactory.Item{Repo: testRepo, Path: "20.0.1/SWLM/xcp_enabled/vbf", Name: "swlm.vbf"}

	repo.EXPECT().Query(gomock.Any(), artifactory.Query{
		Repo:       testRepo,
		Type:       artifactory.TypeFile,
		Properties: map[string]string{"baseline.sw.version": testVersion, "type": "swlm"},
	}).Return([]artifactory.Item{other, want}, nil)
	repo.EXPECT().DownloadURL(want).DoAndReturn(downloadURL)
	repo.EXPECT().Checksum(gomock.Any(), want).Return("abc123", nil)

	got, err := newTestResolver(repo).Resolve(context.Background(), "SUM SWLM", testVersion)
	require.NoError(t, err)
	require.Equal(t, ResolvedArtifact{URL: downloadURL(want), SHA256: "abc123"}, got)
}

// TestArtifactResolver_ReleaseProperties uses the release for SWP artifacts.
func TestArtifactResolver_ReleaseProperties(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockArtifactRepository(ctrl)

	repo.EXPECT().Query(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q artifactory.Query) ([]artifactory.Item, error) {
			require.Equal(t, map[string]string{"release": "20.0.1", "type": "swp2"}, q.Properties)

			return nil, nil
		})

	_, err := newTestResolver(repo).Resolve(context.Background(), "SUM SWP2", testVersion)
	require.ErrorIs(t, err, manifest.ErrArtifactNotFound)
}

// TestArtifactResolver_Ambiguous fails with every conflicting URL.
func TestArtifactResolver_Ambiguous(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockArtifactRepository(ctrl)

	a := artifactory.Item{Repo: testRepo, Path: "a/" + testSuffix, Name: "1.vbf"}
	b := artifactory.Item{Repo: testRepo, Path: "b/" + testSuffix, Name: "2.vbf"}

	repo.EXPECT().Query(gomock.Any(), gomock.Any()).Return([]artifactory.Item{a, b}, nil)
	repo.EXPECT().DownloadURL(gomock.Any()).DoAndReturn(downloadURL).Times(2)

	_, err := newTestResolver(repo).Resolve(context.Background(), "SUM SWLM", testVersion)
	require.ErrorIs(t, err, manifest.ErrArtifactAmbiguous)

	var ambiguous *manifest.AmbiguousArtifactError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, []string{downloadURL(a), downloadURL(b)}, ambiguous.URLs)
}

// TestArtifactResolver_Failures covers unknown names and upstream errors.
func TestArtifactResolver_Failures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockArtifactRepository(ctrl)
	r := newTestResolver(repo)

	_, err := r.Resolve(context.Background(), "SUM SWP3", testVersion)
	require.ErrorIs(t, err, manifest.ErrUnknownArtifactName)
	require.ErrorContains(t, err, "known names are SUM SWLM, SUM SWP1")

	repo.EXPECT().Query(gomock.Any(), gomock.Any()).Return(nil, errTestUpstream)

	_, err = r.Resolve(context.Background(), "SUM SWLM", testVersion)
	require.ErrorIs(t, err, manifest.ErrArtifactNotFound)
	require.ErrorIs(t, err, errTestUpstream)

	_, err = NewArtifactResolver(nil, ArtifactOptions{}).Resolve(context.Background(), "SUM SWLM", testVersion)
	require.ErrorIs(t, err, manifest.ErrArtifactNotFound)
}

// TestArtifactResolver_ChecksumFailureKeepsURL degrades only the checksum.
func TestArtifactResolver_ChecksumFailureKeepsURL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockArtifactRepository(ctrl)

	item := artifactory.Item{Repo: testRepo, Path: testSuffix, Name: "x.vbf"}

	repo.EXPECT().Query(gomock.Any(), gomock.Any()).Return([]artifactory.Item{item}, nil)
	repo.EXPECT().DownloadURL(item).DoAndReturn(downloadURL)
	repo.EXPECT().Checksum(gomock.Any(), item).Return("", errTestUpstream)

	got, err := newTestResolver(repo).Resolve(context.Background(), "SUM SWLM", testVersion)
	require.NoError(t, err)
	require.Equal(t, downloadURL(item), got.URL)
	require.Empty(t, got.SHA256)
}

// TestSuffixFilter applies per-name overrides and the default.
func TestSuffixFilter(t *testing.T) {
	t.Parallel()

	f := SuffixFilter(testSuffix, map[string]string{"SUM SWP1": "SWP1/vbf"})

	require.True(t, f("SUM SWLM", "x/"+testSuffix))
	require.True(t, f("SUM SWLM", "x/"+testSuffix+"/"))
	require.False(t, f("SUM SWLM", "x/SWP1/vbf"))
	require.True(t, f("SUM SWP1", "x/SWP1/vbf"))
	require.True(t, SuffixFilter("", nil)("any", "path"))
	require.True(t, SuffixFilter(AnySuffix, nil)("any", "path"))
	require.True(t, SuffixFilter(testSuffix, map[string]string{"SUM SWP2": AnySuffix})("SUM SWP2", "x/other"))
}

// TestArtifactTable lists the known names in order.
func TestArtifactTable(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"SUM SWLM", "SUM SWP1", "SUM SWP2", "SUM SWP4"}, ArtifactNames())

	spec, ok := LookupArtifact("SUM SWLM")
	require.True(t, ok)
	require.Equal(t, map[string]string{"baseline.sw.version": testVersion, "type": "swlm"}, spec.Properties(testVersion))
}
