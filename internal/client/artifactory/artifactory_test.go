package artifactory

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestQueryAQL renders repo, type, path and sorted property conditions.
func TestQueryAQL(t *testing.T) {
	t.Parallel()

	q := Query{
		Repo:         "ARTBC-SUM-LTS",
		Type:         TypeFile,
		PathContains: "SWLM",
		Properties: map[string]string{
			"type":                "swlm",
			"baseline.sw.version": "BSW_VCC_20.0.1",
		},
	}

	require.Equal(t,
		`items.find({"repo": "ARTBC-SUM-LTS", "type": "file", "path": {"$match": "*SWLM*"}, `+
			`"@baseline.sw.version": "BSW_VCC_20.0.1", "@type": "swlm"})`,
		q.AQL())

	// Quotes in values are escaped.
	q = Query{Repo: "r", Type: TypeFile, Properties: map[string]string{"k": `a"b`}}
	require.Equal(t, `items.find({"repo": "r", "type": "file", "@k": "a\"b"})`, q.AQL())
}

// TestClient_QueryAndChecksum exercises search, storage lookup and URL composition.
func TestClient_QueryAndChecksum(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/artifactory/api/search/aql", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		if r.Method != http.MethodPost ||
			r.Header.Get("Authorization") != "Bearer tok" ||
			r.Header.Get("Content-Type") != "text/plain" ||
			!strings.Contains(string(body), `"@type": "swlm"`) {
			http.Error(w, "unexpected request", http.StatusBadRequest)

			return
		}

		_, _ = w.Write([]byte(`{"results": [{"repo": "R", "path": "a/SWLM/xcp_disabled/vbf", "name": "x.vbf"}]}`))
	})
	mux.HandleFunc("/artifactory/api/storage/R/a/SWLM/xcp_disabled/vbf/x.vbf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"checksums": {"sha1": "s1", "sha256": "abc123"}}`))
	})
	mux.HandleFunc("/artifactory/api/storage/R/nochecksum.vbf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"repo": "R"}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/artifactory/", Token: "tok", HTTPClient: srv.Client()})
	require.NoError(t, err)

	ctx := context.Background()

	items, err := c.Query(ctx, Query{Repo: "R", Type: TypeFile, Properties: map[string]string{"type": "swlm"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, srv.URL+"/artifactory/R/a/SWLM/xcp_disabled/vbf/x.vbf", c.DownloadURL(items[0]))

	sum, err := c.Checksum(ctx, items[0])
	require.NoError(t, err)
	require.Equal(t, "abc123", sum)

	// Root items have path "." and no checksum block.
	sum, err = c.Checksum(ctx, Item{Repo: "R", Path: ".", Name: "nochecksum.vbf"})
	require.NoError(t, err)
	require.Empty(t, sum)

	_, err = c.Checksum(ctx, Item{Repo: "R", Path: "missing", Name: "x"})
	require.Error(t, err)
}

// TestNew_RequiresBaseURL rejects an empty base URL.
func TestNew_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
}
