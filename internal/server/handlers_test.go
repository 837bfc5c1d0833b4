package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dgellow/auth-front/internal/config"
	"github.com/dgellow/auth-front/internal/cookie"
	"github.com/dgellow/auth-front/internal/gateway"
	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/metrics"
	"github.com/dgellow/auth-front/internal/redirect"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts identity-provider behavior per test.
type fakeProvider struct {
	user        *idp.User
	userErr     error
	refreshed   *idp.Session
	refreshErr  error
	exchanged   *idp.Session
	exchangeErr error
	signOutErr  error

	getCalls      int
	refreshCalls  int
	exchangeCalls int
	signOutCalls  int
}

func (f *fakeProvider) GetSession(ctx context.Context, accessToken string) (*idp.User, error) {
	f.getCalls++
	return f.user, f.userErr
}

func (f *fakeProvider) RefreshSession(ctx context.Context, refreshToken string) (*idp.Session, error) {
	f.refreshCalls++
	return f.refreshed, f.refreshErr
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (*idp.Session, error) {
	f.exchangeCalls++
	return f.exchanged, f.exchangeErr
}

func (f *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	f.signOutCalls++
	return f.signOutErr
}

// panickyProvider blows up on every call; used to verify fail-closed.
type panickyProvider struct{}

func (panickyProvider) GetSession(context.Context, string) (*idp.User, error) { panic("boom") }
func (panickyProvider) RefreshSession(context.Context, string) (*idp.Session, error) {
	panic("boom")
}
func (panickyProvider) ExchangeCode(context.Context, string) (*idp.Session, error) { panic("boom") }
func (panickyProvider) SignOut(context.Context, string) error                      { panic("boom") }

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:                "https://auth.example.com",
		Addr:                   ":0",
		AllowedRedirectDomains: []string{"*.example.com"},
		CookieDomain:           ".example.com",
		DefaultLandingPath:     "/dashboard",
		Production:             true,
		ProviderURL:            "https://myproject.identity.example",
		ProviderAnonKey:        "anon-key",
		ProviderTimeout:        5 * time.Second,
	}
}

// harness wires real components around a scripted provider, mirroring the
// production wiring.
type harness struct {
	provider *fakeProvider
	cookies  *cookie.Manager
	router   http.Handler
	cfg      *config.Config
}

func newHarness(t *testing.T, provider idp.Provider) *harness {
	t.Helper()

	cfg := testConfig()
	cookies, err := cookie.NewManager(cookie.Config{
		ProviderURL: cfg.ProviderURL,
		Domain:      cfg.CookieDomain,
		Secure:      cfg.Production,
	})
	require.NoError(t, err)

	m := metrics.New()
	h := NewAuthHandlers(
		cfg,
		gateway.New(provider, cfg.ProviderTimeout),
		cookies,
		redirect.NewPolicy(cfg.AllowedRedirectDomains),
		provider,
		m,
	)

	fake, _ := provider.(*fakeProvider)
	return &harness{
		provider: fake,
		cookies:  cookies,
		router:   NewRouter(h, m),
		cfg:      cfg,
	}
}

func (h *harness) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, r)
	return w
}

func activeSession() *idp.Session {
	return &idp.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    3600,
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		TokenType:    "bearer",
		User: idp.User{
			ID:           "user-1",
			Email:        "alice@example.com",
			UserMetadata: map[string]any{"full_name": "张三"},
		},
	}
}

func expiredSession() *idp.Session {
	s := activeSession()
	s.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	return s
}

func (h *harness) guardedRequest(t *testing.T, session *idp.Session) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/auth", nil)
	r.Header.Set("X-Forwarded-Host", "app.example.com")
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("X-Forwarded-Uri", "/private?tab=1")
	if session != nil {
		c, err := h.cookies.Issue(session)
		require.NoError(t, err)
		r.AddCookie(c)
	}
	return r
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func locationQuery(t *testing.T, w *httptest.ResponseRecorder, param string) string {
	t.Helper()
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get(param)
}

var errProviderDown = errors.New("dial tcp: connection refused")
