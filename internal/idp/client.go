package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// ClientConfig configures the HTTP provider client.
type ClientConfig struct {
	// Endpoint is the provider base URL, without a trailing slash.
	Endpoint string

	// APIKey is the provider's public API key, sent on every request.
	APIKey string

	// Timeout is the per-request HTTP timeout. The gateway additionally
	// bounds each call with a context deadline.
	Timeout time.Duration
}

// Client implements Provider against a REST identity provider. Endpoints
// follow the GoTrue layout: /auth/v1/user, /auth/v1/token, /auth/v1/logout.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient creates a provider client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// tokenResponse is the provider's /token response body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

// GetSession validates an access token against the provider's user endpoint.
func (c *Client) GetSession(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("building user request: %w", err)
	}
	c.authorize(req, accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.providerError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("provider returned user without id")
	}
	return &user, nil
}

// RefreshSession exchanges a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	return c.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// ExchangeCode exchanges an authorization code for a session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	return c.token(ctx, "authorization_code", map[string]string{"auth_code": code})
}

// SignOut revokes the remote session. A 404 from the provider means the
// session is already gone and counts as success.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("building logout request: %w", err)
	}
	c.authorize(req, accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}
	return c.providerError(resp)
}

func (c *Client) token(ctx context.Context, grantType string, body map[string]string) (*Session, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding token request: %w", err)
	}

	url := c.endpoint + "/auth/v1/token?grant_type=" + grantType
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.providerError(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	session := &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
		ExpiresAt:    tr.ExpiresAt,
		TokenType:    tr.TokenType,
		User:         tr.User,
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second).Unix()
	}
	return session, nil
}

// authorize attaches the API key and the caller's bearer token. The bearer
// header goes through oauth2's token type handling so non-standard token
// types from the provider keep working.
func (c *Client) authorize(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.apiKey)
	token := &oauth2.Token{AccessToken: accessToken, TokenType: "bearer"}
	token.SetAuthHeader(req)
}

// providerError turns a non-2xx response into an *Error. Bodies are
// truncated; the provider is not trusted to keep them small.
func (c *Client) providerError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, candidate := range []string{payload.ErrorDescription, payload.Msg, payload.Message, payload.Error} {
			if candidate != "" {
				message = candidate
				break
			}
		}
	}
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: message}
}
