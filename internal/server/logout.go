package server

import (
	"context"
	"net/http"

	"github.com/dgellow/auth-front/internal/log"
)

// Logout revokes the remote session and clears both cookies. Remote sign-out
// is best effort; the cookies are cleared on every exit path regardless, so a
// provider outage can never pin a browser to a dead session.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.cookies.Read(r); session != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ProviderTimeout)
		defer cancel()

		if err := h.provider.SignOut(ctx, session.AccessToken); err != nil {
			log.LogWarnWithFields("logout", "Remote sign-out failed, clearing cookie anyway", map[string]any{
				"user":  session.User.ID,
				"error": err.Error(),
			})
		}
	}

	http.SetCookie(w, h.cookies.Clear())
	http.SetCookie(w, h.cookies.ClearAccessToken())

	// The logout redirect goes through the same allow-list as the login
	// callback; it is just as much an open-redirect surface.
	target := h.cfg.LoginURL()
	if requested := r.URL.Query().Get("redirect"); requested != "" && h.policy.IsAllowed(requested) {
		target = requested
	}

	log.LogInfoWithFields("logout", "Session cleared", map[string]any{"target": target})
	http.Redirect(w, r, target, http.StatusFound)
}
