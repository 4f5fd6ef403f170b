package oidc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-proxy/internal/config"
	"github.com/jrsteele09/go-auth-proxy/internal/errors"
	"github.com/jrsteele09/go-auth-proxy/oidc"
)

// startProvider serves a minimal OIDC discovery document plus the given
// token endpoint handler, and points the environment-backed config at it.
func startProvider(t *testing.T, tokenHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"issuer": %q,
			"authorization_endpoint": %q,
			"token_endpoint": %q,
			"jwks_uri": %q
		}`, ts.URL, ts.URL+"/authorize", ts.URL+"/token", ts.URL+"/keys")
	})
	mux.HandleFunc("POST /token", tokenHandler)

	ts = httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	t.Setenv("OIDC_PROVIDER_BASE_URL", ts.URL)
	return ts
}

func newClient(t *testing.T, ts *httptest.Server) *oidc.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := oidc.NewClient(ctx, config.New())
	require.NoError(t, err)
	return client
}

func TestNewClientFailsOnUnreachableProvider(t *testing.T) {
	t.Setenv("OIDC_PROVIDER_BASE_URL", "http://127.0.0.1:1/nowhere")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := oidc.NewClient(ctx, config.New())
	require.Error(t, err)
}

func TestAuthCodeURLCarriesPKCEParameters(t *testing.T) {
	ts := startProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	client := newClient(t, ts)

	authURL, err := url.Parse(client.AuthCodeURL("state-uuid", "challenge-value"))
	require.NoError(t, err)

	require.Equal(t, ts.URL+"/authorize", authURL.Scheme+"://"+authURL.Host+authURL.Path)
	query := authURL.Query()
	require.Equal(t, "code", query.Get("response_type"))
	require.Equal(t, "dummy-client-id", query.Get("client_id"))
	require.Equal(t, "state-uuid", query.Get("state"))
	require.Equal(t, "challenge-value", query.Get("code_challenge"))
	require.Equal(t, "S256", query.Get("code_challenge_method"))
	require.Equal(t, "openid profile email", query.Get("scope"))
}

func TestExchangeSendsVerifierAndLiftsExtras(t *testing.T) {
	var gotGrantType, gotCode, gotVerifier string
	ts := startProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrantType = r.PostForm.Get("grant_type")
		gotCode = r.PostForm.Get("code")
		gotVerifier = r.PostForm.Get("code_verifier")

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"access_token":       "provider-access-token",
			"token_type":         "Bearer",
			"refresh_token":      "provider-refresh-token",
			"id_token":           "provider-id-token",
			"expires_in":         300,
			"refresh_expires_in": 1800,
			"session_state":      "provider-session-state",
			"scope":              "openid profile email",
		}))
	})
	client := newClient(t, ts)

	response, err := client.Exchange(context.Background(), "provider-code", "the-verifier")
	require.NoError(t, err)

	require.Equal(t, "authorization_code", gotGrantType)
	require.Equal(t, "provider-code", gotCode)
	require.Equal(t, "the-verifier", gotVerifier)

	require.Equal(t, "provider-access-token", response.AccessToken)
	require.Equal(t, "provider-refresh-token", response.RefreshToken)
	require.Equal(t, "provider-id-token", response.IDToken)
	require.Equal(t, 300, response.ExpireSeconds)
	require.Equal(t, 1800, response.RefreshExpireSeconds)
	require.Equal(t, "provider-session-state", response.SessionState)
}

func TestRefreshUsesRefreshTokenGrant(t *testing.T) {
	var gotGrantType, gotRefreshToken string
	ts := startProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrantType = r.PostForm.Get("grant_type")
		gotRefreshToken = r.PostForm.Get("refresh_token")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "refreshed-access-token", "token_type": "Bearer", "refresh_token": "rotated-refresh-token"}`)
	})
	client := newClient(t, ts)

	response, err := client.Refresh(context.Background(), "old-refresh-token")
	require.NoError(t, err)

	require.Equal(t, "refresh_token", gotGrantType)
	require.Equal(t, "old-refresh-token", gotRefreshToken)
	require.Equal(t, "refreshed-access-token", response.AccessToken)
	require.Equal(t, "rotated-refresh-token", response.RefreshToken)
}

func TestProviderFailureMapsStatusAndBody(t *testing.T) {
	ts := startProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "invalid_grant"}`)
	})
	client := newClient(t, ts)

	_, err := client.Exchange(context.Background(), "provider-code", "the-verifier")

	var providerErr *errors.ProviderError
	require.ErrorAs(t, err, &providerErr)
	require.Equal(t, http.StatusBadRequest, providerErr.Status)
	require.Contains(t, providerErr.Body, "invalid_grant")
}
