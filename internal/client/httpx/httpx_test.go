package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-manifest/internal/version"
)

// TestDo_Success returns the body and sends the User-Agent header.
func TestDo_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != version.UserAgent() {
			http.Error(w, "bad user agent", http.StatusBadRequest)

			return
		}

		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	body, err := Do(context.Background(), NewClient(time.Second), "test", req)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}

// TestDo_StatusError converts non-2xx answers into *StatusError.
func TestDo_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = Do(context.Background(), NewClient(time.Second), "test", req)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Contains(t, statusErr.Error(), "nope")
}
