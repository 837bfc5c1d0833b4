package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("AUTH_FRONT_BASE_URL", "https://auth.example.com/")
	t.Setenv("AUTH_FRONT_ADDR", ":9000")
	t.Setenv("AUTH_FRONT_ALLOWED_REDIRECT_DOMAINS", "app.example.com, *.example.org,,")
	t.Setenv("AUTH_FRONT_COOKIE_DOMAIN", ".example.com")
	t.Setenv("AUTH_FRONT_ENV", "production")
	t.Setenv("AUTH_PROVIDER_URL", "https://myproject.identity.example/")
	t.Setenv("AUTH_PROVIDER_ANON_KEY", "anon-key")
	t.Setenv("AUTH_PROVIDER_TIMEOUT", "3s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com", cfg.BaseURL)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, []string{"app.example.com", "*.example.org"}, cfg.AllowedRedirectDomains)
	assert.Equal(t, ".example.com", cfg.CookieDomain)
	assert.True(t, cfg.Production)
	assert.Equal(t, "https://myproject.identity.example", cfg.ProviderURL)
	assert.Equal(t, Secret("anon-key"), cfg.ProviderAnonKey)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("AUTH_FRONT_BASE_URL", "https://auth.example.com")
	t.Setenv("AUTH_PROVIDER_URL", "https://myproject.identity.example")
	t.Setenv("AUTH_PROVIDER_ANON_KEY", "anon-key")
	t.Setenv("AUTH_FRONT_ADDR", "")
	t.Setenv("AUTH_FRONT_ENV", "")
	t.Setenv("AUTH_FRONT_DEFAULT_LANDING", "")
	t.Setenv("AUTH_PROVIDER_TIMEOUT", "")
	t.Setenv("AUTH_FRONT_ALLOWED_REDIRECT_DOMAINS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":4180", cfg.Addr)
	assert.Equal(t, "/dashboard", cfg.DefaultLandingPath)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.Production)
	assert.Empty(t, cfg.AllowedRedirectDomains)
}

func TestFromEnvBadTimeout(t *testing.T) {
	t.Setenv("AUTH_PROVIDER_TIMEOUT", "soon")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoginAndLandingURLs(t *testing.T) {
	cfg := &Config{BaseURL: "https://auth.example.com", DefaultLandingPath: "/dashboard"}

	assert.Equal(t, "https://auth.example.com/login", cfg.LoginURL())
	assert.Equal(t, "https://auth.example.com/dashboard", cfg.DefaultLandingURL())
}

func TestSecretRedaction(t *testing.T) {
	assert.Equal(t, "***", Secret("hunter2").String())
	assert.Equal(t, "", Secret("").String())

	data, err := json.Marshal(map[string]Secret{"key": "hunter2", "empty": ""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"***","empty":""}`, string(data))
}
