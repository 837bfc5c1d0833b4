// Package cookie owns the wire representation of a session: the auth cookie
// shared with the provider's browser library, and the short-lived access
// token cookie written on transparent refresh.
package cookie

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/log"
)

// Manager issues, clears, and reads the session cookies. Constructed once
// from configuration; request handling never consults ambient state.
type Manager struct {
	authName   string
	accessName string
	domain     string
	secure     bool
}

// Config for a Manager.
type Config struct {
	// ProviderURL is the identity provider endpoint. The cookie names embed
	// its first host label so deployments sharing a parent domain do not
	// clobber each other's cookies.
	ProviderURL string

	// Domain scopes the cookies; a leading dot shares them across subdomains.
	Domain string

	// Secure sets the Secure attribute on every issued cookie.
	Secure bool
}

// NewManager derives the cookie names from the provider endpoint.
func NewManager(cfg Config) (*Manager, error) {
	ref, err := projectRef(cfg.ProviderURL)
	if err != nil {
		return nil, err
	}
	return &Manager{
		authName:   fmt.Sprintf("sb-%s-auth-token", ref),
		accessName: fmt.Sprintf("sb-%s-access-token", ref),
		domain:     cfg.Domain,
		secure:     cfg.Secure,
	}, nil
}

// AuthName returns the auth cookie name.
func (m *Manager) AuthName() string {
	return m.authName
}

// Issue serializes a session into the auth cookie. Not HTTP-only: the
// provider's browser library reads this cookie directly.
func (m *Manager) Issue(session *idp.Session) (*http.Cookie, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encoding session cookie: %w", err)
	}

	log.LogDebugWithFields("cookie", "Issuing auth cookie", map[string]any{
		"name":   m.authName,
		"maxAge": session.ExpiresIn,
		"secure": m.secure,
	})

	return &http.Cookie{
		Name: m.authName,
		// The payload is JSON; escape it so quotes and commas survive the
		// cookie value character restrictions.
		Value:    url.QueryEscape(string(payload)),
		Path:     "/",
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(session.ExpiresIn),
	}, nil
}

// Clear produces the auth cookie removal directive. Name, path, and domain
// match Issue exactly; browsers will not remove the cookie otherwise.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.authName,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// IssueAccessToken writes the renewed access token as its own cookie for the
// request that performed a transparent refresh. Unlike the auth cookie it is
// HTTP-only; no script needs to read it.
func (m *Manager) IssueAccessToken(session *idp.Session) *http.Cookie {
	return &http.Cookie{
		Name:     m.accessName,
		Value:    session.AccessToken,
		Path:     "/",
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(session.ExpiresIn),
	}
}

// ClearAccessToken produces the access-token cookie removal directive.
func (m *Manager) ClearAccessToken() *http.Cookie {
	return &http.Cookie{
		Name:     m.accessName,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// Read reconstructs the session carried by the request's auth cookie. A
// missing, malformed, or partially populated cookie returns nil; partial
// sessions are never acted upon.
func (m *Manager) Read(r *http.Request) *idp.Session {
	c, err := r.Cookie(m.authName)
	if err != nil {
		return nil
	}

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		log.LogDebugWithFields("cookie", "Auth cookie not unescapable", map[string]any{"error": err.Error()})
		return nil
	}

	var session idp.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		log.LogDebugWithFields("cookie", "Auth cookie not parseable", map[string]any{"error": err.Error()})
		return nil
	}
	if !session.Valid() {
		log.LogDebugWithFields("cookie", "Auth cookie carries partial session", nil)
		return nil
	}
	return &session
}

// projectRef extracts the first DNS label of the provider endpoint host.
func projectRef(providerURL string) (string, error) {
	u, err := url.Parse(providerURL)
	if err != nil {
		return "", fmt.Errorf("parsing provider URL: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("provider URL %q has no host", providerURL)
	}
	ref, _, _ := strings.Cut(host, ".")
	return ref, nil
}
