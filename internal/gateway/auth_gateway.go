// Package gateway talks to the remote ERP API's authentication
// endpoints. It owns the cookie jar that carries the HTTP-only refresh
// cookie: the cookie's value is opaque to this client, which only ever
// replays it on the refresh exchange.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"erp-core/internal/domain"
)

// Paths on the remote API.
const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
	logoutPath  = "/auth/logout"
)

// AuthGateway implements domain.Authenticator, domain.TokenRefresher
// and domain.RefreshChannel against the remote API.
type AuthGateway struct {
	baseURL    string
	httpClient *http.Client
	jar        http.CookieJar
	logger     *slog.Logger
}

// NewAuthGateway creates a gateway with its own cookie jar and tuned
// HTTP transport.
func NewAuthGateway(baseURL string, timeout time.Duration, logger *slog.Logger) (*AuthGateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &AuthGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		jar:     jar,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			Jar:       jar,
		},
		logger: logger,
	}, nil
}

// Login exchanges credentials for a session. The server additionally
// sets the HTTP-only refresh cookie on this gateway's jar.
func (g *AuthGateway) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login returned status %d: %s", resp.StatusCode, string(data))
	}

	var result domain.LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Identity == nil || result.AccessToken == "" {
		return nil, fmt.Errorf("login response missing identity or access token")
	}
	return &result, nil
}

// RefreshAccessToken exchanges the cookie-held refresh credential for a
// new access token. The request deliberately carries no bearer and no
// tenant header: a stale bearer must never influence the server's
// refresh decision. Implements domain.TokenRefresher.
func (g *AuthGateway) RefreshAccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+refreshPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", domain.ErrInvalidRefreshGrant
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		g.logger.Warn("refresh endpoint returned non-success status",
			"status_code", resp.StatusCode,
			"body", string(data))
		return "", fmt.Errorf("%w: refresh returned status %d", domain.ErrRefreshFailed, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: refresh response missing access token", domain.ErrRefreshFailed)
	}
	return payload.AccessToken, nil
}

// Logout tells the server to revoke the refresh credential. Best
// effort: local teardown must proceed even when this call fails.
func (g *AuthGateway) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+logoutPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create logout request: %w", err)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// RefreshCookie returns the jar's cookies for the refresh endpoint in
// serialized "name=value; name=value" form, for persistence across
// restarts. Empty when the server never set one.
func (g *AuthGateway) RefreshCookie() string {
	u, err := url.Parse(g.baseURL + refreshPath)
	if err != nil {
		return ""
	}
	cookies := g.jar.Cookies(u)
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// SetRefreshCookie replays a previously persisted refresh cookie into
// the jar, so a restored session can refresh without re-login.
func (g *AuthGateway) SetRefreshCookie(serialized string) {
	if serialized == "" {
		return
	}
	u, err := url.Parse(g.baseURL + refreshPath)
	if err != nil {
		return
	}
	var cookies []*http.Cookie
	for _, part := range strings.Split(serialized, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	if len(cookies) > 0 {
		g.jar.SetCookies(u, cookies)
	}
}
