package server

import (
	"context"
	"net/http"

	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/log"
)

// Error codes surfaced to the login page. Provider-supplied messages are
// forwarded as-is for the legitimate user's benefit.
const (
	errNoCode     = "no_code"
	errNoSession  = "no_session"
	errUnexpected = "unexpected_error"
)

// Callback completes an interactive login: it exchanges the authorization
// code for a session, issues the auth cookie, and sends the browser to a
// validated return URL. A disallowed return URL is silently replaced with
// the default landing page so probing the validation logic reveals nothing.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		log.LogWarnWithFields("callback", "Callback without authorization code", nil)
		http.Redirect(w, r, h.loginErrorURL(errNoCode), http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ProviderTimeout)
	defer cancel()

	session, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		log.LogError("Code exchange failed: %v", err)
		errCode := errUnexpected
		if msg, ok := idp.ProviderMessage(err); ok {
			errCode = msg
		}
		http.Redirect(w, r, h.loginErrorURL(errCode), http.StatusFound)
		return
	}
	if !session.Valid() {
		log.LogError("Code exchange returned no usable session")
		http.Redirect(w, r, h.loginErrorURL(errNoSession), http.StatusFound)
		return
	}

	target := h.cfg.DefaultLandingURL()
	if requested := query.Get("redirect"); requested != "" && h.policy.IsAllowed(requested) {
		target = requested
	}

	authCookie, err := h.cookies.Issue(session)
	if err != nil {
		log.LogError("Failed to issue auth cookie: %v", err)
		http.Redirect(w, r, h.loginErrorURL(errUnexpected), http.StatusFound)
		return
	}
	http.SetCookie(w, authCookie)

	log.LogInfoWithFields("callback", "Login completed", map[string]any{
		"user":   session.User.ID,
		"target": target,
	})
	http.Redirect(w, r, target, http.StatusFound)
}
