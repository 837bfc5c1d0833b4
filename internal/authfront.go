// Package internal wires the auth-front application together.
package internal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgellow/auth-front/internal/config"
	"github.com/dgellow/auth-front/internal/cookie"
	"github.com/dgellow/auth-front/internal/gateway"
	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/log"
	"github.com/dgellow/auth-front/internal/metrics"
	"github.com/dgellow/auth-front/internal/redirect"
	"github.com/dgellow/auth-front/internal/server"
	"golang.org/x/sync/errgroup"
)

// AuthFront is the complete checkpoint application.
type AuthFront struct {
	cfg        *config.Config
	httpServer *server.HTTPServer
}

// NewAuthFront builds the application with all dependencies injected. The
// configuration is the only input; nothing below this point reads the
// process environment.
func NewAuthFront(cfg *config.Config) (*AuthFront, error) {
	log.LogInfoWithFields("authfront", "Building auth checkpoint", map[string]any{
		"baseURL":        cfg.BaseURL,
		"allowedDomains": len(cfg.AllowedRedirectDomains),
		"production":     cfg.Production,
	})

	provider := idp.NewClient(idp.ClientConfig{
		Endpoint: cfg.ProviderURL,
		APIKey:   string(cfg.ProviderAnonKey),
		Timeout:  cfg.ProviderTimeout,
	})

	cookies, err := cookie.NewManager(cookie.Config{
		ProviderURL: cfg.ProviderURL,
		Domain:      cfg.CookieDomain,
		Secure:      cfg.Production,
	})
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	handlers := server.NewAuthHandlers(
		cfg,
		gateway.New(provider, cfg.ProviderTimeout),
		cookies,
		redirect.NewPolicy(cfg.AllowedRedirectDomains),
		provider,
		m,
	)

	return &AuthFront{
		cfg:        cfg,
		httpServer: server.NewHTTPServer(server.NewRouter(handlers, m), cfg.Addr),
	}, nil
}

// Run starts the HTTP server and blocks until a shutdown signal or a server
// error, then shuts down gracefully.
func (a *AuthFront) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.httpServer.Start()
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return a.httpServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.LogInfoWithFields("authfront", "Shutdown complete", nil)
	return nil
}
