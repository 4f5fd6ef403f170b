package config

type Config interface {
	EnvConfig
	CorsConfig
	OidcConfig
	ProxyConfig
	CacheConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Oidc
	Proxy
	Cache
}

func New() Config {
	return mainConfig{}
}
