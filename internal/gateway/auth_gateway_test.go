package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-core/internal/domain"
)

func newTestGateway(t *testing.T, url string) *AuthGateway {
	t.Helper()
	g, err := NewAuthGateway(url, 5*time.Second, nil)
	require.NoError(t, err)
	return g
}

func TestLogin_CapturesRefreshCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, loginPath, r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice@example.com", creds["email"])

		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "rt-opaque-1", HttpOnly: true, Path: "/"})
		json.NewEncoder(w).Encode(map[string]any{
			"identity":     map[string]any{"id": "user-1", "name": "Alice"},
			"access_token": "at-1",
			"tenants":      []map[string]any{{"id": "COMP-1", "name": "Comp One"}},
		})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	result, err := g.Login(context.Background(), "alice@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "at-1", result.AccessToken)
	assert.Equal(t, "user-1", result.Identity.ID)
	assert.Contains(t, g.RefreshCookie(), "refresh_token=rt-opaque-1")
}

func TestLogin_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	_, err := g.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_IncompleteResponseRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	_, err := g.Login(context.Background(), "alice@example.com", "secret")
	assert.Error(t, err)
}

func TestRefreshAccessToken_CookieOnlyExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "rt-opaque-1", Path: "/"})
			json.NewEncoder(w).Encode(map[string]any{
				"identity":     map[string]any{"id": "user-1"},
				"access_token": "at-1",
			})
		case refreshPath:
			// The refresh exchange authenticates with the cookie alone.
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Empty(t, r.Header.Get("X-Company-ID"))
			cookie, err := r.Cookie("refresh_token")
			require.NoError(t, err)
			assert.Equal(t, "rt-opaque-1", cookie.Value)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "at-2"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	_, err := g.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	token, err := g.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-2", token)
}

func TestRefreshAccessToken_RejectedGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	_, err := g.RefreshAccessToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshGrant)
}

func TestRefreshAccessToken_ServerErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	_, err := g.RefreshAccessToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrRefreshFailed)
	assert.NotErrorIs(t, err, domain.ErrInvalidRefreshGrant)
}

func TestRefreshCookie_RoundTrip(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("refresh_token"); err == nil {
			gotCookie = cookie.Value
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "at-3"})
	}))
	defer server.Close()

	// A fresh gateway, as after a process restart, replays the persisted
	// cookie string and can refresh without a new login.
	g := newTestGateway(t, server.URL)
	assert.Empty(t, g.RefreshCookie())

	g.SetRefreshCookie("refresh_token=rt-persisted")
	assert.Contains(t, g.RefreshCookie(), "refresh_token=rt-persisted")

	token, err := g.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-3", token)
	assert.Equal(t, "rt-persisted", gotCookie)
}

func TestSetRefreshCookie_IgnoresGarbage(t *testing.T) {
	g := newTestGateway(t, "http://localhost:0")
	g.SetRefreshCookie("")
	g.SetRefreshCookie(";;;")
	assert.Empty(t, g.RefreshCookie())
}

func TestLogout_SendsBearer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, logoutPath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	require.NoError(t, g.Logout(context.Background(), "at-1"))
	assert.Equal(t, "Bearer at-1", gotAuth)
}
