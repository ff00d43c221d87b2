package carweaver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/release-manifest/internal/client/httpx"
	"github.com/oshokin/release-manifest/internal/domain/manifest"
)

const serviceName = "carweaver"

var (
	errBaseURLRequired = errors.New("carweaver url must be provided")
	errEmptyItemID     = errors.New("carweaver item id must be provided")
	errNoAccessToken   = errors.New("carweaver token response has no access_token")
)

// Item is the subset of a CarWeaver item the manifest tooling uses.
type Item struct {
	ID           string `json:"id"`
	PersistentID string `json:"persistent_id"`
	Version      string `json:"version"`
}

// Config holds the client settings.
type Config struct {
	URL        string
	User       string
	Password   string
	UserKey    string
	HTTPClient *http.Client
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Client talks to CarWeaver.
type Client struct {
	baseURL    string
	user       string
	password   string
	userKey    string
	httpClient *http.Client
	clock      clockwork.Clock
}

// New creates a client from the given configuration.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errBaseURLRequired
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		user:       cfg.User,
		password:   cfg.Password,
		userKey:    cfg.UserKey,
		httpClient: httpClient,
		clock:      clock,
	}, nil
}

// NewSession returns an empty session; the first request logs in.
func (c *Client) NewSession() *Session {
	return new(Session)
}

// login authenticates with the password grant and returns a fresh session.
func (c *Client) login(ctx context.Context) (*Session, error) {
	session := c.NewSession()

	session.mu.Lock()
	defer session.mu.Unlock()

	if err := c.passwordGrant(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// GetItem fetches an item by raw id or by swap:// URL.
func (c *Client) GetItem(ctx context.Context, session *Session, itemID string) (*Item, error) {
	rawID := RawItemID(itemID)
	if rawID == "" {
		return nil, errEmptyItemID
	}

	token, err := c.ensureSession(ctx, session)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/restapi/items/"+url.PathEscape(rawID), nil)
	if err != nil {
		return nil, fmt.Errorf("build item request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("user-key", c.userKey)
	req.Header.Set("Accept", "application/json")

	body, err := httpx.Do(ctx, c.httpClient, serviceName, req)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", rawID, err)
	}

	var doc manifest.Document
	if err = json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", rawID, err)
	}

	return &Item{
		ID:           manifest.FirstNonEmpty(doc.String("id"), rawID),
		PersistentID: manifest.FirstNonEmpty(doc.String("persistent_id"), doc.String("persistentId")),
		Version: manifest.FirstNonEmpty(
			doc.String("version"),
			doc.String("Version"),
			doc.String("versionNumber"),
		),
	}, nil
}

// RawItemID strips URL forms such as swap://SystemWeaver:3000/x04... down to the id.
func RawItemID(itemID string) string {
	itemID = strings.TrimSpace(itemID)
	if i := strings.LastIndex(itemID, "/"); i >= 0 {
		itemID = itemID[i+1:]
	}

	return itemID
}

// ensureSession refreshes the session when needed and returns its access token.
func (c *Client) ensureSession(ctx context.Context, session *Session) (string, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.needsRefresh(c.clock.Now()) {
		return session.accessToken, nil
	}

	if session.refreshToken != "" {
		err := c.grant(ctx, session, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {session.refreshToken},
		})
		if err == nil {
			return session.accessToken, nil
		}
	}

	if err := c.passwordGrant(ctx, session); err != nil {
		return "", err
	}

	return session.accessToken, nil
}

// passwordGrant logs in with the configured credentials. The caller must hold session.mu.
func (c *Client) passwordGrant(ctx context.Context, session *Session) error {
	return c.grant(ctx, session, url.Values{
		"grant_type": {"password"},
		"username":   {c.user},
		"password":   {c.password},
	})
}

// grant posts to the token endpoint and stores the answer. The caller must hold session.mu.
func (c *Client) grant(ctx context.Context, session *Session, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("user-key", c.userKey)

	body, err := httpx.Do(ctx, c.httpClient, serviceName, req)
	if err != nil {
		return fmt.Errorf("obtain token: %w", err)
	}

	var resp tokenResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}

	if resp.AccessToken == "" {
		return errNoAccessToken
	}

	session.set(&resp, c.clock.Now())

	return nil
}
