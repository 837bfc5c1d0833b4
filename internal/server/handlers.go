package server

import (
	"cmp"
	"net/http"
	"net/url"
	"strings"

	"github.com/dgellow/auth-front/internal/config"
	"github.com/dgellow/auth-front/internal/cookie"
	"github.com/dgellow/auth-front/internal/gateway"
	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/metrics"
	"github.com/dgellow/auth-front/internal/redirect"
)

// AuthHandlers provides the checkpoint's HTTP handlers with dependency
// injection: configuration, gateway, cookies, and policy are fixed at
// construction and nothing is read from ambient state per request.
type AuthHandlers struct {
	cfg      *config.Config
	gateway  *gateway.Gateway
	cookies  *cookie.Manager
	policy   redirect.Policy
	provider idp.Provider
	metrics  *metrics.Metrics
}

// NewAuthHandlers creates the handlers.
func NewAuthHandlers(
	cfg *config.Config,
	gw *gateway.Gateway,
	cookies *cookie.Manager,
	policy redirect.Policy,
	provider idp.Provider,
	m *metrics.Metrics,
) *AuthHandlers {
	return &AuthHandlers{
		cfg:      cfg,
		gateway:  gw,
		cookies:  cookies,
		policy:   policy,
		provider: provider,
		metrics:  m,
	}
}

// originalTarget reconstructs the URL the proxy is guarding from the
// forwarding headers. Requests reaching the checkpoint directly fall back to
// their own URL.
func originalTarget(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		u := *r.URL
		u.Host = r.Host
		if u.Scheme == "" {
			u.Scheme = "http"
			if r.TLS != nil {
				u.Scheme = "https"
			}
		}
		return u.String()
	}

	uri := cmp.Or(r.Header.Get("X-Forwarded-Uri"), "/")
	proto := cmp.Or(r.Header.Get("X-Forwarded-Proto"), "https")

	path := uri
	var rawQuery string
	if n := strings.Index(uri, "?"); n > 0 {
		rawQuery = uri[n+1:]
		path = uri[:n]
	}

	u := url.URL{
		Scheme:   proto,
		Host:     host,
		Path:     path,
		RawQuery: rawQuery,
	}
	return u.String()
}

// loginURL builds the login-page URL carrying the original target.
func (h *AuthHandlers) loginURL(target string) string {
	return h.cfg.LoginURL() + "?redirect=" + url.QueryEscape(target)
}

// loginErrorURL builds the login-page URL carrying a diagnostic error code
// for the legitimate user.
func (h *AuthHandlers) loginErrorURL(code string) string {
	return h.cfg.LoginURL() + "?error=" + url.QueryEscape(code)
}
