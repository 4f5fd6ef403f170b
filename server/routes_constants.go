package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OIDC Routes
	RouteOidcCallback = "/oidc/callback"
	RouteOidcAuthCode = "/oidc/authcode"

	// Operational Routes
	RouteHealth = "/health"

	// Proxied namespace: everything the auth gate admits to the backend
	RouteAPIPrefix = "/api"
)
