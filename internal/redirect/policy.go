// Package redirect decides which post-login redirect targets are safe to
// honor. It is the sole defense against open-redirect attacks: anything it
// cannot positively match is rejected.
package redirect

import (
	"net"
	"net/url"
	"strings"
)

// Policy matches candidate redirect targets against a fixed allow-list of
// domain patterns. Patterns are either exact hostnames ("app.example.com")
// or wildcards ("*.example.com", which also matches the bare domain).
// Immutable after construction.
type Policy struct {
	patterns []string
}

// NewPolicy builds a Policy from configured domain patterns. Patterns are
// normalized to lower case so a mixed-case entry cannot become a dead entry
// against browser-normalized hostnames.
func NewPolicy(domains []string) Policy {
	patterns := make([]string, 0, len(domains))
	for _, d := range domains {
		patterns = append(patterns, stripPort(strings.ToLower(strings.TrimSpace(d))))
	}
	return Policy{patterns: patterns}
}

// IsAllowed reports whether raw is an acceptable redirect target. Malformed
// input is rejected, never an error. Site-relative paths are always allowed;
// they cannot leave the site. Absolute URLs must use http or https and carry
// an allow-listed hostname.
func (p Policy) IsAllowed(raw string) bool {
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Scheme == "" && u.Host == "" {
		// Browsers fold "\" into "/", so "/\evil.com" is a protocol-relative
		// escape hatch and must not count as site-relative.
		return strings.HasPrefix(u.Path, "/") &&
			!strings.HasPrefix(u.Path, "//") &&
			!strings.HasPrefix(u.Path, "/\\")
	}

	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, pattern := range p.patterns {
		if pattern == host {
			return true
		}
		if strings.HasPrefix(pattern, "*.") {
			// The dot delimiter blocks suffix tricks: "evilexample.com"
			// never matches "*.example.com".
			suffix := pattern[1:]
			if host == suffix[1:] || strings.HasSuffix(host, suffix) {
				return true
			}
		}
	}
	return false
}

func stripPort(host string) string {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	return h
}
