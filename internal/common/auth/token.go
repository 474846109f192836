// internal/common/auth/token.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"youthunion-chat/internal/common/errors"
)

// expirySkew renews tokens slightly before the server would reject them.
const expirySkew = 30 * time.Second

// fallbackLifetime is used when the access token carries no readable exp claim.
const fallbackLifetime = 5 * time.Minute

// TokenClient obtains and caches a service-account JWT pair from the Django
// token endpoints (token/ and token/refresh/).
type TokenClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	now        func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	tokenExpiry  time.Time
}

// TokenResponse is the body returned by token/ and token/refresh/.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// NewTokenClient creates a token client. baseURL must end with a slash, as the
// API paths are appended to it directly.
func NewTokenClient(baseURL, username, password string, httpClient *http.Client) *TokenClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &TokenClient{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a valid access token, refreshing or logging in when needed.
func (c *TokenClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if c.refreshToken != "" {
		if err := c.refresh(ctx); err == nil {
			return c.accessToken, nil
		}
		c.refreshToken = ""
	}

	if err := c.login(ctx); err != nil {
		return "", errors.NewDataAPIAuthFailedError(err)
	}
	return c.accessToken, nil
}

// Invalidate drops the cached access token so the next Token call re-authenticates.
// Called after the Data API answers 401.
func (c *TokenClient) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.tokenExpiry = time.Time{}
}

func (c *TokenClient) login(ctx context.Context) error {
	resp, err := c.post(ctx, "token/", map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return err
	}
	c.store(resp)
	return nil
}

func (c *TokenClient) refresh(ctx context.Context) error {
	resp, err := c.post(ctx, "token/refresh/", map[string]string{
		"refresh": c.refreshToken,
	})
	if err != nil {
		return err
	}
	c.store(resp)
	return nil
}

func (c *TokenClient) store(resp *TokenResponse) {
	c.accessToken = resp.Access
	if resp.Refresh != "" {
		c.refreshToken = resp.Refresh
	}

	if exp, ok := expiryFromJWT(resp.Access); ok {
		c.tokenExpiry = exp.Add(-expirySkew)
	} else {
		c.tokenExpiry = c.now().Add(fallbackLifetime)
	}
}

func (c *TokenClient) post(ctx context.Context, path string, payload map[string]string) (*TokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("token request %s failed with status %d: %s", path, resp.StatusCode, string(raw))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.Access == "" {
		return nil, fmt.Errorf("token response from %s has no access token", path)
	}
	return &tokenResp, nil
}

// expiryFromJWT reads the exp claim without verifying the signature; the
// token is only forwarded, never trusted locally.
func expiryFromJWT(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
