package server

import (
	"net/http"

	"github.com/dgellow/auth-front/internal/json"
	"github.com/dgellow/auth-front/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// NewRouter wires the checkpoint's routes. Route surface:
//
//	GET  /auth      forward-auth decision (proxy-facing)
//	HEAD /auth      liveness probe, no session logic
//	GET  /callback  interactive login completion (browser-facing)
//	GET  /logout    session termination (browser-facing)
//	GET  /healthz   process liveness
//	GET  /metrics   Prometheus scrape endpoint
func NewRouter(h *AuthHandlers, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(NewMetricsMiddleware(m), NewLoggerMiddleware("http"), NewRecoverMiddleware("http"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		json.WriteNotFound(w, "unknown route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		json.WriteMethodNotAllowed(w, "method not allowed for this route")
	})

	r.Get("/auth", h.ForwardAuth)
	r.Head("/auth", h.ForwardAuthProbe)
	r.Get("/callback", h.Callback)
	r.Get("/logout", h.Logout)
	r.Method(http.MethodGet, "/healthz", NewHealthHandler())
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}
