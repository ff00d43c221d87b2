package client

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
)

// TestPrint renders strings as lines and documents as JSON.
func TestPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, Print(&buf, "https://gerrit/tag"))
	require.Equal(t, "https://gerrit/tag\n", buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, []domain.Document{{"sw_package_id": 42, "nested": domain.Document{"a": true}}}))
	require.JSONEq(t, `[{"sw_package_id": 42, "nested": {"a": true}}]`, buf.String())
}

// TestReadJSON accepts objects and lists and rejects garbage.
func TestReadJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	object := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(object, []byte(`{"sw_package_id": 42}`), 0o600))

	value, err := ReadJSON(object)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"sw_package_id": float64(42)}, value)

	list := filepath.Join(dir, "profiles.json")
	require.NoError(t, os.WriteFile(list, []byte(`[{"sw_package_id": "a"}]`), 0o600))

	value, err = ReadJSON(list)
	require.NoError(t, err)
	require.Equal(t, []any{map[string]any{"sw_package_id": "a"}}, value)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))

	_, err = ReadJSON(bad)
	require.Error(t, err)

	_, err = ReadJSON(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
