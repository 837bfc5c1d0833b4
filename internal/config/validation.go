package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationResult holds validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// ValidationError represents a validation issue
type ValidationError struct {
	Path    string
	Message string
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *ValidationResult) addError(path, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationResult) addWarning(path, format string, args ...any) {
	v.Warnings = append(v.Warnings, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the configuration for startup errors. Misconfiguration is
// caught here, before the server accepts a single request.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	checkHTTPURL(result, "AUTH_FRONT_BASE_URL", c.BaseURL)
	checkHTTPURL(result, "AUTH_PROVIDER_URL", c.ProviderURL)

	if c.ProviderAnonKey == "" {
		result.addError("AUTH_PROVIDER_ANON_KEY", "provider API key is required")
	}

	if c.ProviderTimeout <= 0 {
		result.addError("AUTH_PROVIDER_TIMEOUT", "provider timeout must be positive")
	}

	if !strings.HasPrefix(c.DefaultLandingPath, "/") {
		result.addError("AUTH_FRONT_DEFAULT_LANDING", "landing path must start with '/'")
	}

	for _, d := range c.AllowedRedirectDomains {
		if strings.Contains(d, "/") || strings.Contains(d, "://") {
			result.addError("AUTH_FRONT_ALLOWED_REDIRECT_DOMAINS",
				"entry %q must be a hostname, not a URL", d)
		}
		if after, ok := strings.CutPrefix(d, "*."); strings.Contains(d, "*") && (!ok || strings.Contains(after, "*")) {
			result.addError("AUTH_FRONT_ALLOWED_REDIRECT_DOMAINS",
				"entry %q may only use a single leading '*.' wildcard", d)
		}
	}
	if len(c.AllowedRedirectDomains) == 0 {
		result.addWarning("AUTH_FRONT_ALLOWED_REDIRECT_DOMAINS",
			"no allowed redirect domains configured; every redirect parameter will fall back to the default landing page")
	}

	if !c.Production {
		result.addWarning("AUTH_FRONT_ENV", "not running in production mode; cookies are issued without the Secure attribute")
	}

	return result
}

func checkHTTPURL(result *ValidationResult, path, raw string) {
	if raw == "" {
		result.addError(path, "value is required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil {
		result.addError(path, "invalid URL: %v", err)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		result.addError(path, "URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		result.addError(path, "URL must include a host")
	}
}
