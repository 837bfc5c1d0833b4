package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// Config holds everything auth-front needs to run. It is built once at
// startup and passed explicitly to every component; request handling never
// reads the process environment.
type Config struct {
	// BaseURL is the public base URL of the login application, e.g.
	// "https://auth.example.com". Login and error redirects are built from it.
	BaseURL string

	// Addr is the listen address for the HTTP server.
	Addr string

	// AllowedRedirectDomains lists hostnames that post-login redirects may
	// target. Entries are exact hostnames or wildcards like "*.example.com".
	AllowedRedirectDomains []string

	// CookieDomain scopes the auth cookie. A leading dot shares the cookie
	// across subdomains.
	CookieDomain string

	// DefaultLandingPath is where a successful login lands when no valid
	// redirect target was supplied.
	DefaultLandingPath string

	// Production toggles the Secure attribute on issued cookies.
	Production bool

	// ProviderURL is the identity provider endpoint, e.g.
	// "https://myproject.identity.example". The auth cookie name is derived
	// from its first host label.
	ProviderURL string

	// ProviderAnonKey is the provider's public API key, sent on every call.
	ProviderAnonKey Secret

	// ProviderTimeout bounds every identity-provider call. Timeouts deny.
	ProviderTimeout time.Duration
}

const (
	defaultAddr            = ":4180"
	defaultLandingPath     = "/dashboard"
	defaultProviderTimeout = 10 * time.Second
)

// FromEnv builds a Config from the process environment. Validation is a
// separate step so the -validate mode can report all problems at once.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL:            strings.TrimSuffix(os.Getenv("AUTH_FRONT_BASE_URL"), "/"),
		Addr:               os.Getenv("AUTH_FRONT_ADDR"),
		CookieDomain:       os.Getenv("AUTH_FRONT_COOKIE_DOMAIN"),
		DefaultLandingPath: os.Getenv("AUTH_FRONT_DEFAULT_LANDING"),
		Production:         isProduction(os.Getenv("AUTH_FRONT_ENV")),
		ProviderURL:        strings.TrimSuffix(os.Getenv("AUTH_PROVIDER_URL"), "/"),
		ProviderAnonKey:    Secret(os.Getenv("AUTH_PROVIDER_ANON_KEY")),
	}

	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.DefaultLandingPath == "" {
		cfg.DefaultLandingPath = defaultLandingPath
	}

	if domains := os.Getenv("AUTH_FRONT_ALLOWED_REDIRECT_DOMAINS"); domains != "" {
		for _, d := range strings.Split(domains, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.AllowedRedirectDomains = append(cfg.AllowedRedirectDomains, d)
			}
		}
	}

	cfg.ProviderTimeout = defaultProviderTimeout
	if raw := os.Getenv("AUTH_PROVIDER_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_PROVIDER_TIMEOUT %q: %w", raw, err)
		}
		cfg.ProviderTimeout = timeout
	}

	return cfg, nil
}

// LoginURL returns the login page URL for the configured base.
func (c *Config) LoginURL() string {
	return c.BaseURL + "/login"
}

// DefaultLandingURL returns the absolute default post-login destination.
func (c *Config) DefaultLandingURL() string {
	return c.BaseURL + c.DefaultLandingPath
}

func isProduction(env string) bool {
	switch strings.ToLower(env) {
	case "production", "prod":
		return true
	}
	return false
}
