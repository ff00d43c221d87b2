// Package artifactory is a minimal Artifactory client: AQL item search and
// storage checksum lookup.
package artifactory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/oshokin/release-manifest/internal/client/httpx"
)

const serviceName = "artifactory"

// TypeFile restricts searches to files.
const TypeFile = "file"

var errBaseURLRequired = errors.New("artifactory base url must be provided")

// Item is one search result.
type Item struct {
	Repo string `json:"repo"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// Query describes an AQL item search.
type Query struct {
	// Repo is the repository key.
	Repo string
	// Properties are matched exactly as @key conditions.
	Properties map[string]string
	// Type is the item type, usually TypeFile.
	Type string
	// PathContains adds a wildcard path match when non-empty.
	PathContains string
}

// AQL renders the query in Artifactory Query Language. Property conditions
// are emitted in key order.
func (q Query) AQL() string {
	conditions := []string{
		quote("repo") + ": " + quote(q.Repo),
		quote("type") + ": " + quote(q.Type),
	}

	if q.PathContains != "" {
		conditions = append(conditions, quote("path")+`: {"$match": `+quote("*"+q.PathContains+"*")+"}")
	}

	keys := make([]string, 0, len(q.Properties))
	for k := range q.Properties {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		conditions = append(conditions, quote("@"+k)+": "+quote(q.Properties[k]))
	}

	return "items.find({" + strings.Join(conditions, ", ") + "})"
}

// Config holds the client settings.
type Config struct {
	// BaseURL is the Artifactory root, e.g. https://host/artifactory.
	BaseURL string
	// Token is sent as a bearer token.
	Token      string
	HTTPClient *http.Client
}

// Client talks to Artifactory.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client from the given configuration.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errBaseURLRequired
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
	}, nil
}

type searchResponse struct {
	Results []Item `json:"results"`
}

type storageResponse struct {
	Checksums struct {
		SHA256 string `json:"sha256"`
	} `json:"checksums"`
}

// Query runs an AQL search and returns every matching item.
func (c *Client) Query(ctx context.Context, q Query) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search/aql", strings.NewReader(q.AQL()))
	if err != nil {
		return nil, fmt.Errorf("build aql request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain")
	c.authorize(req)

	body, err := httpx.Do(ctx, c.httpClient, serviceName, req)
	if err != nil {
		return nil, fmt.Errorf("search by properties: %w", err)
	}

	var resp searchResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode aql results: %w", err)
	}

	return resp.Results, nil
}

// Checksum returns the SHA-256 recorded in the item's storage metadata, or ""
// when the metadata has none.
func (c *Client) Checksum(ctx context.Context, item Item) (string, error) {
	endpoint := c.baseURL + "/api/storage/" + itemPath(item)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build storage request: %w", err)
	}

	c.authorize(req)

	body, err := httpx.Do(ctx, c.httpClient, serviceName, req)
	if err != nil {
		return "", fmt.Errorf("storage info: %w", err)
	}

	var resp storageResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode storage info: %w", err)
	}

	return resp.Checksums.SHA256, nil
}

// DownloadURL returns the canonical download URL of the item.
func (c *Client) DownloadURL(item Item) string {
	return c.baseURL + "/" + itemPath(item)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// itemPath joins repo, path and name; "." is the repository root.
func itemPath(item Item) string {
	parts := []string{item.Repo}

	if p := strings.Trim(item.Path, "/"); p != "" && p != "." {
		parts = append(parts, p)
	}

	return strings.Join(append(parts, item.Name), "/")
}

func quote(s string) string {
	data, _ := json.Marshal(s) //nolint:errchkjson // Strings always marshal.

	return string(data)
}
