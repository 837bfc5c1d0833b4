// Package gateway is the session lifecycle authority. Every guarded request
// funnels through Authenticate, which resolves the request's credentials to
// exactly one of authenticated or unauthenticated. Anything ambiguous, such
// as a provider error or a partial session, resolves to unauthenticated.
package gateway

import (
	"context"
	"time"

	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/log"
)

// Reason classifies why a request was left unauthenticated. All reasons
// produce the same externally observable outcome; they exist for logs and
// metrics only.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonCredentialAbsent Reason = "credential_absent"
	ReasonRefreshRejected  Reason = "refresh_rejected"
	ReasonProviderError    Reason = "provider_error"
)

// Outcome is the result of authenticating one request.
type Outcome struct {
	Authenticated bool
	// Refreshed is set when the session was renewed during this request and
	// the new session must be written back to the browser.
	Refreshed bool
	Session   *idp.Session
	Identity  idp.Identity
	Reason    Reason
}

// Gateway resolves request credentials against the identity provider. It is
// stateless: every decision is recomputed from the request's own session, so
// there is nothing to race on between requests.
type Gateway struct {
	provider idp.Provider
	timeout  time.Duration
	now      func() time.Time
}

// New creates a Gateway. timeout bounds each individual provider call.
func New(provider idp.Provider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Authenticate resolves the session carried by a request. session may be nil
// (no cookie) or partially populated (treated as absent by the cookie layer,
// but guarded here too).
//
// A non-expired session is confirmed against the provider; an expired or
// rejected one falls through to a refresh attempt if a refresh token is
// present. Refresh failure and missing credentials are indistinguishable to
// the caller's caller by design.
func (g *Gateway) Authenticate(ctx context.Context, session *idp.Session) Outcome {
	if !session.Valid() {
		return Outcome{Reason: ReasonCredentialAbsent}
	}

	if !session.Expired(g.now()) {
		user, err := g.getSession(ctx, session.AccessToken)
		if err == nil {
			return Outcome{
				Authenticated: true,
				Session:       session,
				Identity:      user.Identity(),
			}
		}
		// A rejected or unreachable provider does not end the request yet;
		// the refresh credential may still rescue it.
		log.LogDebugWithFields("gateway", "Session validation failed, trying refresh", map[string]any{
			"error": err.Error(),
		})
	}

	return g.refresh(ctx, session.RefreshToken)
}

func (g *Gateway) refresh(ctx context.Context, refreshToken string) Outcome {
	if refreshToken == "" {
		return Outcome{Reason: ReasonCredentialAbsent}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	renewed, err := g.provider.RefreshSession(callCtx, refreshToken)
	if err != nil {
		reason := ReasonRefreshRejected
		if _, ok := idp.ProviderMessage(err); !ok {
			reason = ReasonProviderError
		}
		log.LogWarnWithFields("gateway", "Session refresh failed", map[string]any{
			"reason": string(reason),
			"error":  err.Error(),
		})
		return Outcome{Reason: reason}
	}

	if !renewed.Valid() {
		log.LogWarnWithFields("gateway", "Provider returned partial session on refresh", nil)
		return Outcome{Reason: ReasonRefreshRejected}
	}

	return Outcome{
		Authenticated: true,
		Refreshed:     true,
		Session:       renewed,
		Identity:      renewed.User.Identity(),
	}
}

func (g *Gateway) getSession(ctx context.Context, accessToken string) (*idp.User, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.provider.GetSession(callCtx, accessToken)
}
