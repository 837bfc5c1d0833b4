package idp

import (
	"time"

	"golang.org/x/oauth2"
)

// Session is this gateway's own representation of a provider-issued session.
// It matches the wire format the provider's browser library stores in the
// auth cookie, so a session round-trips through the cookie unchanged.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

// User is the provider's user object as carried inside a Session.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
}

// Identity is the validated identity forwarded to upstream applications.
type Identity struct {
	ID       string
	Email    string
	Name     string
	Provider string
}

// Valid reports whether the session is fully populated. A partially
// populated session is never acted upon; callers treat it as absent.
func (s *Session) Valid() bool {
	return s != nil &&
		s.AccessToken != "" &&
		s.RefreshToken != "" &&
		s.TokenType != "" &&
		s.ExpiresAt > 0 &&
		s.User.ID != ""
}

// Expired reports whether the access token has expired at the given time.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.Unix()
}

// Token converts the session's credentials to an oauth2 token.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       time.Unix(s.ExpiresAt, 0),
	}
}

// Identity derives the forwardable identity from the session's user.
func (u User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.displayName(),
		Provider: u.provider(),
	}
}

func (u User) displayName() string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := u.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func (u User) provider() string {
	if v, ok := u.AppMetadata["provider"].(string); ok {
		return v
	}
	return ""
}
