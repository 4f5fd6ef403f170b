package config

import "strings"

// OidcConfig holds the settings used when talking to the OIDC provider.
type OidcConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetProviderBaseURL() string
	GetResponseType() string
	GetScopes() []string
}

type Oidc struct{}

var _ OidcConfig = Oidc{}

func (Oidc) GetClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "dummy-client-id")
}

func (Oidc) GetClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "dummy-client-secret")
}

func (Oidc) GetRedirectURI() string {
	return GetEnv("OIDC_REDIRECT_URI", "http://localhost:8080/oidc/callback")
}

func (Oidc) GetProviderBaseURL() string {
	return GetEnv("OIDC_PROVIDER_BASE_URL", "http://localhost:8180/realms/master")
}

func (Oidc) GetResponseType() string {
	return GetEnv("OIDC_RESPONSE_TYPE", "code")
}

func (Oidc) GetScopes() []string {
	return strings.Fields(GetEnv("OIDC_SCOPES", "openid profile email"))
}
