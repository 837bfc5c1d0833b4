package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dgellow/auth-front/internal/idp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callbackRequest(query url.Values) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/callback?"+query.Encode(), nil)
}

func TestCallbackSuccessWithAllowedRedirect(t *testing.T) {
	h := newHarness(t, &fakeProvider{exchanged: activeSession()})

	w := h.do(callbackRequest(url.Values{
		"code":     {"abc123"},
		"redirect": {"https://app.example.com/welcome"},
	}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/welcome", w.Header().Get("Location"))

	authCookie := responseCookie(t, w, h.cookies.AuthName())
	require.NotNil(t, authCookie)
	assert.Equal(t, 3600, authCookie.MaxAge)
	assert.Equal(t, 1, h.provider.exchangeCalls)
}

func TestCallbackDisallowedRedirectFallsBack(t *testing.T) {
	h := newHarness(t, &fakeProvider{exchanged: activeSession()})

	w := h.do(callbackRequest(url.Values{
		"code":     {"abc123"},
		"redirect": {"https://evil.com/phish"},
	}))

	// Silently substituted; the attacker learns nothing about the rules.
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://auth.example.com/dashboard", w.Header().Get("Location"))
	require.NotNil(t, responseCookie(t, w, h.cookies.AuthName()))
}

func TestCallbackNoRedirectUsesDefaultLanding(t *testing.T) {
	h := newHarness(t, &fakeProvider{exchanged: activeSession()})

	w := h.do(callbackRequest(url.Values{"code": {"abc123"}}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://auth.example.com/dashboard", w.Header().Get("Location"))
}

func TestCallbackMissingCode(t *testing.T) {
	h := newHarness(t, &fakeProvider{})

	w := h.do(callbackRequest(url.Values{"redirect": {"https://app.example.com/"}}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "no_code", locationQuery(t, w, "error"))
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 0, h.provider.exchangeCalls)
}

func TestCallbackExchangeFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"provider message surfaced", &idp.Error{Status: 400, Message: "code expired"}, "code expired"},
		{"transport failure masked", errProviderDown, "unexpected_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &fakeProvider{exchangeErr: tt.err})

			w := h.do(callbackRequest(url.Values{"code": {"abc123"}}))

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.wantCode, locationQuery(t, w, "error"))
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestCallbackPartialSession(t *testing.T) {
	h := newHarness(t, &fakeProvider{exchanged: &idp.Session{AccessToken: "only-this"}})

	w := h.do(callbackRequest(url.Values{"code": {"abc123"}}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "no_session", locationQuery(t, w, "error"))
	assert.Empty(t, w.Result().Cookies())
}
