package config

import "net/http"

// AuthType selects where the proxy looks for the client's opaque
// authorization code on inbound requests.
type AuthType string

const (
	AuthTypeBearer AuthType = "BEARER"
	AuthTypeCookie AuthType = "COOKIE"
)

// ProxyConfig holds the client-facing settings of the proxy.
type ProxyConfig interface {
	GetAuthType() AuthType
	GetHeaderName() string
	GetCookieName() string
	GetCookieDomain() string
	GetCookieSameSite() http.SameSite
	GetFrontendRedirect() string
	GetCallbackParamName() string
	GetBackendBaseURL() string
}

type Proxy struct{}

var _ ProxyConfig = Proxy{}

func (Proxy) GetAuthType() AuthType {
	if GetEnv("AUTH_PROXY_TYPE", "BEARER") == string(AuthTypeCookie) {
		return AuthTypeCookie
	}
	return AuthTypeBearer
}

func (Proxy) GetHeaderName() string {
	return GetEnv("AUTH_PROXY_HEADER_NAME", "Authorization")
}

func (Proxy) GetCookieName() string {
	return GetEnv("AUTH_PROXY_COOKIE_NAME", "auth-proxy-code")
}

func (Proxy) GetCookieDomain() string {
	return GetEnv("AUTH_PROXY_COOKIE_DOMAIN", "localhost")
}

func (Proxy) GetCookieSameSite() http.SameSite {
	switch GetEnv("AUTH_PROXY_COOKIE_SAMESITE", "Strict") {
	case "None":
		return http.SameSiteNoneMode
	case "Lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteStrictMode
	}
}

func (Proxy) GetFrontendRedirect() string {
	return GetEnv("AUTH_PROXY_FRONTEND_REDIRECT", "http://localhost:3000")
}

func (Proxy) GetCallbackParamName() string {
	return GetEnv("AUTH_PROXY_CALLBACK_PARAM_NAME", "authcode")
}

func (Proxy) GetBackendBaseURL() string {
	return GetEnv("BACKEND_BASE_URL", "http://localhost:9090")
}
