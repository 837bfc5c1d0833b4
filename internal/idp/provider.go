// Package idp talks to the external identity provider. The rest of the
// gateway only sees the Provider interface and the value types in this
// package; the provider's wire format never leaks past this boundary.
package idp

import (
	"context"
	"errors"
	"fmt"
)

// Provider abstracts the identity-provider operations the gateway consumes.
// Every method may block on the network; callers bound each call with a
// context timeout and treat any error as unauthenticated.
type Provider interface {
	// GetSession validates an access token and returns the user it belongs to.
	GetSession(ctx context.Context, accessToken string) (*User, error)

	// RefreshSession exchanges a refresh token for a new session.
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)

	// ExchangeCode completes an interactive login by exchanging an
	// authorization code for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)

	// SignOut revokes the remote session for the given access token.
	SignOut(ctx context.Context, accessToken string) error
}

// Error is a failure reported by the provider itself, as opposed to a
// transport failure reaching it. Message is safe to surface to the
// legitimate user on the login page.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Message)
}

// ProviderMessage extracts the provider-supplied message from err, if any.
func ProviderMessage(err error) (string, bool) {
	var pErr *Error
	if errors.As(err, &pErr) && pErr.Message != "" {
		return pErr.Message, true
	}
	return "", false
}
