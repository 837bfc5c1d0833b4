package server

import (
	"net/http"

	"github.com/dgellow/auth-front/internal/headers"
	"github.com/dgellow/auth-front/internal/log"
	"github.com/dgellow/auth-front/internal/metrics"
)

// ForwardAuth is the per-request checkpoint the reverse proxy calls before
// forwarding any guarded request. It answers 200 with identity headers or
// 302 to the login page, and nothing else: the handler's primary contract is
// that no failure mode, including a panic, ever answers 200 without a
// validated session.
func (h *AuthHandlers) ForwardAuth(w http.ResponseWriter, r *http.Request) {
	target := originalTarget(r)

	defer func() {
		if rec := recover(); rec != nil {
			log.LogErrorWithFields("forward_auth", "Panic during auth decision, denying", map[string]any{
				"panic":  rec,
				"target": target,
			})
			h.deny(w, r, target)
		}
	}()

	outcome := h.gateway.Authenticate(r.Context(), h.cookies.Read(r))

	if !outcome.Authenticated {
		log.LogDebugWithFields("forward_auth", "Request denied", map[string]any{
			"reason": string(outcome.Reason),
			"target": target,
		})
		h.deny(w, r, target)
		return
	}

	if outcome.Refreshed {
		// Renewed session flows back to the browser on this same response.
		authCookie, err := h.cookies.Issue(outcome.Session)
		if err != nil {
			log.LogError("Failed to issue auth cookie after refresh: %v", err)
			h.deny(w, r, target)
			return
		}
		http.SetCookie(w, authCookie)
		http.SetCookie(w, h.cookies.IssueAccessToken(outcome.Session))
		h.metrics.Decision(metrics.DecisionRefreshed)

		log.LogInfoWithFields("forward_auth", "Session renewed", map[string]any{
			"user": outcome.Identity.ID,
		})
	} else {
		h.metrics.Decision(metrics.DecisionAllowed)
	}

	for name, value := range headers.Encode(outcome.Identity) {
		w.Header().Set(name, value)
	}
	// Upstream sees the same cookie header it would see without the proxy.
	if cookies := r.Header.Get("Cookie"); cookies != "" {
		w.Header().Set("Cookie", cookies)
	}
	w.WriteHeader(http.StatusOK)
}

// ForwardAuthProbe answers liveness probes on the auth route. Always 200,
// never a session decision.
func (h *AuthHandlers) ForwardAuthProbe(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// deny redirects to the login page. The cookie is deliberately left alone:
// lacking a credential is not the same event as logging out.
func (h *AuthHandlers) deny(w http.ResponseWriter, r *http.Request, target string) {
	h.metrics.Decision(metrics.DecisionDenied)
	http.Redirect(w, r, h.loginURL(target), http.StatusFound)
}
