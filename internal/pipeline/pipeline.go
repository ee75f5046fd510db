// Package pipeline implements the authenticated request path: every
// outbound API call gets the bearer and tenant headers attached, a 401
// triggers one silent credential refresh over the cookie channel, the
// original call is retried exactly once, and a failed refresh tears the
// session down. The at-most-one-refresh, at-most-one-retry invariant is
// enforced structurally here instead of at call sites.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"erp-core/internal/domain"
	"erp-core/internal/session"
)

// Header names on the wire.
const (
	HeaderAuthorization = "Authorization"
	HeaderCompanyID     = "X-Company-ID"
	HeaderRequestID     = "X-Request-ID"
)

// Response is the outcome of a pipeline call. Non-2xx statuses other
// than the recovered 401 pass through here unchanged; the pipeline does
// not interpret business-level error bodies.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError reports a non-success response surfaced to the caller.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned status %d", e.StatusCode)
}

// Config configures a Pipeline.
type Config struct {
	// BaseURL is the API origin, without a trailing slash.
	BaseURL string
	// HTTPClient is the transport used for primary calls. Defaults to a
	// client with a 30s timeout.
	HTTPClient *http.Client
	// RefreshBuffer triggers a proactive refresh when the access token
	// expires within this window, instead of eating a guaranteed 401.
	// Zero disables the check.
	RefreshBuffer time.Duration
	// Limiter optionally throttles outbound calls client-side.
	Limiter *rate.Limiter
	// NavigationPath supplies the current navigation path for the
	// superuser tenant fallback. Optional.
	NavigationPath func() string
	Logger         *slog.Logger
}

// Pipeline drives authenticated API calls against the session store.
type Pipeline struct {
	store     *session.Store
	refresher domain.TokenRefresher
	client    *http.Client
	cfg       Config

	// refreshGroup coalesces concurrent refresh attempts into a single
	// in-flight exchange, so a burst of 401s cannot race the rotating
	// refresh credential.
	refreshGroup singleflight.Group

	tracer trace.Tracer
	logger *slog.Logger
}

// New creates a pipeline bound to the given session store and refresher.
func New(store *session.Store, refresher domain.TokenRefresher, cfg Config) *Pipeline {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:     store,
		refresher: refresher,
		client:    client,
		cfg:       cfg,
		tracer:    otel.Tracer("erp-core/pipeline"),
		logger:    logger,
	}
}

// Do performs an authenticated call. body is JSON-encoded when non-nil.
// A 401 is recovered through one refresh and one retry; every other
// status passes through unchanged inside the Response.
func (p *Pipeline) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	if p.store.AccessToken() == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if p.cfg.Limiter != nil {
		if err := p.cfg.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = encoded
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.Do",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	if p.cfg.RefreshBuffer > 0 && tokenExpiresWithin(p.store.AccessToken(), p.cfg.RefreshBuffer) {
		// Proactive rotation is soft: the current token is still valid,
		// so a failed exchange must not touch the session. The reactive
		// 401 path below stays the sole authority on teardown.
		if err := p.refresh(ctx); err != nil {
			p.logger.Warn("proactive token refresh failed, proceeding with current token", "error", err)
		}
	}

	resp, err := p.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		return resp, nil
	}

	// Authorization failure: one refresh, one retry, no recursion.
	// Only here does a failed exchange tear the session down; the server
	// has already rejected the current token.
	if err := p.refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrRefreshFailed) {
			p.logger.Warn("credential refresh failed, terminating session", "error", err)
			p.store.Logout()
		}
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		return resp, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	retry, err := p.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", retry.StatusCode))
	if retry.StatusCode == http.StatusUnauthorized {
		// The server rejected a freshly rotated token; surfacing this
		// as terminal is what prevents an unbounded refresh loop.
		return retry, fmt.Errorf("%w after token refresh", domain.ErrUnauthorized)
	}
	return retry, nil
}

// DoJSON performs Do and decodes a 2xx body into out. Non-2xx statuses
// become a *StatusError.
func (p *Pipeline) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := p.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// send performs a single HTTP exchange with the current credentials.
// The bearer token is read fresh from the store on every call; a
// concurrent refresh may have rotated it since the previous attempt.
func (p *Pipeline) send(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAuthorization, "Bearer "+p.store.AccessToken())
	req.Header.Set(HeaderRequestID, uuid.NewString())

	navPath := ""
	if p.cfg.NavigationPath != nil {
		navPath = p.cfg.NavigationPath()
	}
	if tenantID, ok := p.store.ResolveTenantID(navPath); ok {
		req.Header.Set(HeaderCompanyID, tenantID)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// refresh exchanges the cookie-held refresh credential for a new access
// token, coalescing concurrent callers into a single in-flight
// exchange. It never tears the session down itself: callers decide what
// a failed exchange means. A refresh racing a logout is discarded by
// the store's epoch check.
func (p *Pipeline) refresh(ctx context.Context) error {
	_, err, shared := p.refreshGroup.Do("refresh", func() (any, error) {
		epoch := p.store.BeginRefresh()
		token, err := p.refresher.RefreshAccessToken(ctx)
		if err != nil {
			p.store.EndRefresh()
			return nil, fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
		}
		if !p.store.ApplyRefreshedToken(token, epoch) {
			return nil, domain.ErrSessionClosed
		}
		return nil, nil
	})
	if shared {
		p.logger.Debug("credential refresh shared with concurrent caller")
	}
	return err
}

// tokenExpiresWithin reports whether the bearer token's exp claim falls
// inside the window. The token is parsed without verification; this
// client never validates signatures, it only schedules rotation.
func tokenExpiresWithin(token string, window time.Duration) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < window
}
