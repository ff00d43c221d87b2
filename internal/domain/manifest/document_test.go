package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDocumentID compares numeric and string identifiers by their string form.
func TestDocumentID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "42", Document{IDKey: 42.0}.ID())
	require.Equal(t, "42", Document{IDKey: "42"}.ID())
	require.Equal(t, "42", Document{IDKey: 42}.ID())
	require.True(t, SameID(42.0, "42"))
	require.False(t, SameID(42.5, "42"))
	require.False(t, Document{}.HasID())
}

// TestDocumentClone verifies that nested maps and lists are copied.
func TestDocumentClone(t *testing.T) {
	t.Parallel()

	doc := Document{"a": []any{map[string]any{"b": "c"}}}
	cloned := doc.Clone()
	cloned.List("a")[0].(map[string]any)["b"] = "changed"

	require.Equal(t, "c", doc.List("a")[0].(map[string]any)["b"])
	require.Nil(t, Document(nil).Clone())
}

// TestParseProfile reads typed fields and tolerates wrong shapes.
func TestParseProfile(t *testing.T) {
	t.Parallel()

	doc := Document{
		IDKey:             42.0,
		"sw_package_type": "delta",
		"source_references": []any{
			map[string]any{
				"idx":      7.0,
				"name":     "ref",
				"location": "GenData/Foo",
				"additional_information": []any{
					map[string]any{"title": "t", "location": "GenData/Bar"},
					"garbage",
				},
				"change_log": map[string]any{"filename": "legacy", "version": "1"},
			},
			"garbage",
		},
		"artifacts": []any{
			map[string]any{"name": " SUM SWLM ", "source_references_idx": []any{3.0, "1", 2.5, "x"}},
		},
	}

	p := ParseProfile(doc)

	require.InDelta(t, 42.0, p.ID, 0)
	require.Equal(t, "delta", p.PackageType)
	require.Len(t, p.SourceReferences, 1)

	ref := p.SourceReferences[0]
	require.Equal(t, 7, ref.Idx)
	require.Equal(t, "GenData/Foo", ref.Location)
	require.Len(t, ref.AdditionalInformation, 1)
	require.Equal(t, "legacy", ref.ChangeLog.Filenamn)

	require.Len(t, p.Artifacts, 1)
	require.Equal(t, "SUM SWLM", p.Artifacts[0].Name)
	require.Equal(t, []int{3, 1}, p.Artifacts[0].SourceReferencesIdx)
}

// TestAmbiguousArtifactError matches the sentinel and lists URLs.
func TestAmbiguousArtifactError(t *testing.T) {
	t.Parallel()

	err := error(&AmbiguousArtifactError{Name: "SUM SWLM", URLs: []string{"u1", "u2"}})

	require.ErrorIs(t, err, ErrArtifactAmbiguous)
	require.Contains(t, err.Error(), "u1, u2")

	var ambiguous *AmbiguousArtifactError
	require.True(t, errors.As(err, &ambiguous))
	require.Len(t, ambiguous.URLs, 2)
}

// TestFirstNonEmpty returns the first non-blank candidate trimmed.
func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, "b", FirstNonEmpty("", "  ", " b ", "c"))
	require.Empty(t, FirstNonEmpty())
	require.Empty(t, FirstNonEmpty(" "))
}

// TestManifestDocument renders the manifest with its JSON field names.
func TestManifestDocument(t *testing.T) {
	t.Parallel()

	m := &Manifest{SWPackageID: 42, SWVersion: "BSW_VCC_20.0.1", Artifacts: []Artifact{{Idx: 1}}}

	doc, err := m.Document()
	require.NoError(t, err)
	require.Equal(t, "42", doc.ID())
	require.Equal(t, "BSW_VCC_20.0.1", doc.String("sw_version"))
	require.Len(t, doc.List("artifacts"), 1)
}

// TestManifestDocument_ExtraFields keeps stored fields that have no typed counterpart.
func TestManifestDocument_ExtraFields(t *testing.T) {
	t.Parallel()

	p := ParseProfile(Document{
		"source_references": []any{
			map[string]any{
				"name":     "ref",
				"owner":    "Core team",
				"location": "GenData/Foo",
				"additional_information": []any{
					map[string]any{"title": "t", "version": "BSW_VCC_20.0.1", "pages": 3.0},
				},
			},
		},
	})

	require.Len(t, p.SourceReferences, 1)

	ref := p.SourceReferences[0]
	require.Equal(t, Document{"owner": "Core team"}, ref.Extra)
	require.Equal(t, Document{"version": "BSW_VCC_20.0.1", "pages": 3.0}, ref.AdditionalInformation[0].Extra)

	// Typed fields win over extras of the same name.
	ref.Extra["name"] = "shadowed"

	doc, err := (&Manifest{SourceReferences: []SourceReference{ref}}).Document()
	require.NoError(t, err)

	rendered, ok := doc.List("source_references")[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ref", rendered["name"])
	require.Equal(t, "Core team", rendered["owner"])

	info, ok := rendered["additional_information"].([]any)[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "BSW_VCC_20.0.1", info["version"])
	require.InDelta(t, 3.0, info["pages"], 0)
}
