package carweaver

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// RefreshMargin is how long before expiry a session is renewed.
const RefreshMargin = 5 * time.Second

// Session holds the tokens of one authenticated CarWeaver login.
// A Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// ExpiresAt returns the access token expiry.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.expiresAt
}

// needsRefresh reports whether the access token is missing or expires within RefreshMargin.
// The caller must hold s.mu.
func (s *Session) needsRefresh(now time.Time) bool {
	return s.accessToken == "" || !now.Before(s.expiresAt.Add(-RefreshMargin))
}

// set stores a token response. The caller must hold s.mu.
func (s *Session) set(resp *tokenResponse, now time.Time) {
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	s.expiresAt = now.Add(time.Duration(float64(resp.ExpiresIn) * float64(time.Second)))
}

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    seconds `json:"expires_in"`
}

// seconds accepts both numeric and quoted numeric JSON values.
type seconds float64

func (s *seconds) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		*s = seconds(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("expires_in: %w", err)
		}

		*s = seconds(parsed)
	default:
		return fmt.Errorf("expires_in: unexpected value %s", data)
	}

	return nil
}
