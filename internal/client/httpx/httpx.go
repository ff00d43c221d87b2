// Package httpx holds the small HTTP helpers shared by the upstream clients.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oshokin/release-manifest/internal/version"
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	// Service names the upstream system.
	Service string
	// StatusCode is the HTTP status code.
	StatusCode int
	// Body is the beginning of the response body.
	Body string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: %d %s", e.Service, e.StatusCode, strings.TrimSpace(e.Body))
}

// NewClient returns an HTTP client whose requests are bounded by timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Do sends the request with the service User-Agent and returns the body of a
// 2xx response. Other statuses become *StatusError.
func Do(ctx context.Context, client *http.Client, service string, req *http.Request) ([]byte, error) {
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request %s %s: %w", service, req.Method, req.URL.Path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, &StatusError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read response: %w", service, err)
	}

	return body, nil
}
