package server

func (s *Server) initRoutes() {
	// OIDC callback and test endpoints bypass the auth gate; requests
	// reaching the gate on these paths carry the wrong method and are
	// answered 405 there instead of being proxied.
	s.RegisterRouteFunc("GET "+RouteOidcCallback, ChainMiddleware(s.OidcCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteOidcAuthCode, ChainMiddleware(s.AuthCodeHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Everything else is governed by the auth gate; admitted requests
	// are forwarded to the backend with an injected bearer token.
	gated := append(s.APIMiddleware(), s.AuthGateMiddleware)
	s.RegisterRouteFunc("/", ChainMiddleware(s.proxy.ServeHTTP, gated...))
}
