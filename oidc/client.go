package oidc

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-auth-proxy/internal/config"
	"github.com/jrsteele09/go-auth-proxy/internal/errors"
	"github.com/jrsteele09/go-auth-proxy/oauthmodel"
)

// Client talks to the OIDC provider's authorization and token endpoints.
// Discovery happens once at construction; a provider that cannot be
// discovered is a fatal startup condition for the proxy.
type Client struct {
	provider     *gooidc.Provider
	oauth2Config *oauth2.Config
	responseType string
}

// NewClient discovers the provider configuration from its well-known
// endpoint and prepares the oauth2 configuration used for the code
// exchange and refresh grants.
func NewClient(ctx context.Context, cfg config.OidcConfig) (*Client, error) {
	provider, err := gooidc.NewProvider(ctx, cfg.GetProviderBaseURL())
	if err != nil {
		return nil, fmt.Errorf("[oidc NewClient] provider discovery failed: %w", err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		RedirectURL:  cfg.GetRedirectURI(),
		Endpoint:     provider.Endpoint(),
		Scopes:       cfg.GetScopes(),
	}

	log.Info().
		Str("auth_endpoint", oauth2Config.Endpoint.AuthURL).
		Str("token_endpoint", oauth2Config.Endpoint.TokenURL).
		Msg("OIDC provider discovered")

	return &Client{
		provider:     provider,
		oauth2Config: oauth2Config,
		responseType: cfg.GetResponseType(),
	}, nil
}

// AuthCodeURL builds the authorization-initiation URL for a fresh PKCE
// session: response type, client id, redirect URI, state and S256
// challenge embedded in the provider's authorization endpoint.
func (c *Client) AuthCodeURL(state, codeChallenge string) string {
	params := url.Values{
		"response_type":         {c.responseType},
		"client_id":             {c.oauth2Config.ClientID},
		"redirect_uri":          {c.oauth2Config.RedirectURL},
		"scope":                 {strings.Join(c.oauth2Config.Scopes, " ")},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	return c.oauth2Config.Endpoint.AuthURL + "?" + params.Encode()
}

// Exchange trades the provider's authorization code for a token response
// using the authorization_code grant with the PKCE verifier.
func (c *Client) Exchange(ctx context.Context, code, codeVerifier string) (*oauthmodel.AccessTokenResponse, error) {
	log.Info().Msg("Getting access_token ...")

	oauth2Token, err := c.oauth2Config.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, providerError(err)
	}

	return toTokenResponse(oauth2Token), nil
}

// Refresh obtains a new access token using the refresh_token grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauthmodel.AccessTokenResponse, error) {
	log.Info().Msg("Refreshing access_token ...")

	oauth2Token, err := c.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, providerError(err)
	}

	return toTokenResponse(oauth2Token), nil
}

// providerError maps oauth2 retrieval failures onto ProviderError,
// preserving the provider's status and body.
func providerError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &errors.ProviderError{
			Status: retrieveErr.Response.StatusCode,
			Body:   string(retrieveErr.Body),
		}
	}
	return fmt.Errorf("token endpoint call failed: %w", err)
}

// toTokenResponse lifts an oauth2 token and its provider extras into the
// wire model the cache stores.
func toTokenResponse(t *oauth2.Token) *oauthmodel.AccessTokenResponse {
	idToken, _ := t.Extra("id_token").(string)
	sessionState, _ := t.Extra("session_state").(string)
	scope, _ := t.Extra("scope").(string)

	return &oauthmodel.AccessTokenResponse{
		AccessToken:          t.AccessToken,
		RefreshToken:         t.RefreshToken,
		IDToken:              idToken,
		TokenType:            t.TokenType,
		SessionState:         sessionState,
		Scope:                scope,
		ExpireSeconds:        extraSeconds(t, "expires_in"),
		RefreshExpireSeconds: extraSeconds(t, "refresh_expires_in"),
	}
}

func extraSeconds(t *oauth2.Token, key string) int {
	if v, ok := t.Extra(key).(float64); ok {
		return int(v)
	}
	return 0
}
