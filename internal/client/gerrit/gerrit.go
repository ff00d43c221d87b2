// Package gerrit is a minimal Gerrit REST client for tag lookups.
package gerrit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/oshokin/release-manifest/internal/client/httpx"
)

const (
	serviceName  = "gerrit"
	tagRefPrefix = "refs/tags/"

	// xssiPrefix guards every Gerrit JSON response.
	xssiPrefix = ")]}'"

	// browseLink is the web link name pointing at the tag in the repository browser.
	browseLink = "browse"
)

var errBaseURLRequired = errors.New("gerrit base url must be provided")

// WebLink is a named link attached to a tag.
type WebLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Tag is one entry of the project tag list.
type Tag struct {
	Ref      string    `json:"ref"`
	Revision string    `json:"revision"`
	Message  string    `json:"message,omitempty"`
	WebLinks []WebLink `json:"web_links,omitempty"`
}

// Config holds the client settings.
type Config struct {
	// BaseURL is the REST root, usually ending in the authenticated "/a/" segment.
	BaseURL  string
	User     string
	Password string
	// HTTPClient defaults to a client without timeout; callers should set one.
	HTTPClient *http.Client
}

// Client queries a Gerrit server.
type Client struct {
	baseURL    string
	user       string
	password   string
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
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/",
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: httpClient,
	}, nil
}

// ListTags returns every tag of the project.
func (c *Client) ListTags(ctx context.Context, project string) ([]Tag, error) {
	endpoint := c.baseURL + "projects/" + url.PathEscape(project) + "/tags/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build gerrit request: %w", err)
	}

	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	req.Header.Set("Accept", "application/json")

	body, err := httpx.Do(ctx, c.httpClient, serviceName, req)
	if err != nil {
		return nil, err
	}

	var tags []Tag
	if err = json.Unmarshal(stripXSSI(body), &tags); err != nil {
		return nil, fmt.Errorf("decode gerrit tags of %q: %w", project, err)
	}

	return tags, nil
}

// FindTagURL returns the browse URL of the tag named exactly tagName, or ""
// when the project has no such tag or the tag has no browse link.
func (c *Client) FindTagURL(ctx context.Context, project, tagName string) (string, error) {
	tags, err := c.ListTags(ctx, project)
	if err != nil {
		return "", err
	}

	ref := tagRefPrefix + tagName

	for _, tag := range tags {
		if tag.Ref == ref {
			return c.BrowseURL(tag), nil
		}
	}

	return "", nil
}

// BrowseURL returns the absolute browse link of tag, or "" when it has none.
func (c *Client) BrowseURL(tag Tag) string {
	for _, link := range tag.WebLinks {
		if link.Name == browseLink {
			return c.absoluteLink(link.URL)
		}
	}

	return ""
}

// absoluteLink joins relative web links to the browsable root. Links are
// served outside the authenticated "/a/" prefix, so that segment is dropped.
func (c *Client) absoluteLink(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}

	root := strings.TrimRight(c.baseURL, "/")
	root = strings.TrimSuffix(root, "/a")

	return root + "/" + strings.TrimLeft(link, "/")
}

func stripXSSI(body []byte) []byte {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte(xssiPrefix)) {
		return body
	}

	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		return trimmed[i+1:]
	}

	return nil
}
