package oauthmodel

// AccessTokenResponse is the OIDC provider's token endpoint response, as
// defined in RFC 6749 plus the provider extras we care about. The proxy
// caches the whole response keyed by the opaque authorization code it
// mints for the client; expiry decisions are made from the JWT claims,
// not from the relative expires_in hints.
type AccessTokenResponse struct {
	// AccessToken is the bearer token injected on proxied backend calls.
	AccessToken string `json:"access_token"`

	// ExpireSeconds is the provider's relative lifetime hint for the
	// access token. The authoritative expiry is the JWT "exp" claim.
	ExpireSeconds int `json:"expires_in,omitempty"`

	// RefreshExpireSeconds is the relative lifetime hint for the refresh
	// token (Keycloak extension).
	RefreshExpireSeconds int `json:"refresh_expires_in,omitempty"`

	// RefreshToken is used by the refresh coordinator to obtain a new
	// access token when the cached one nears expiry. May be empty.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the OIDC identity token. The proxy stores it but never
	// verifies it; identity assertions are the backend's concern.
	IDToken string `json:"id_token,omitempty"`

	// TokenType is "Bearer" for every provider we proxy.
	TokenType string `json:"token_type,omitempty"`

	// SessionState is the provider-side session identifier (Keycloak).
	SessionState string `json:"session_state,omitempty"`

	Scope string `json:"scope,omitempty"`
}
