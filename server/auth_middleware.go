package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-proxy/internal/config"
	"github.com/jrsteele09/go-auth-proxy/oauthmodel"
	"github.com/jrsteele09/go-auth-proxy/token"
)

// AuthGateMiddleware is the request-admission decision for every inbound
// call. It classifies the path, extracts the client's opaque code,
// consults the token cache and either rewrites the request with a valid
// bearer token, answers 401 with a fresh authorization-initiation URL,
// or rejects with 400. Credential and cache problems are always resolved
// into a 401/400 response here, never into a server error: the client
// must always receive a recovery path.
func (s *Server) AuthGateMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// The oidc and health routes are registered with their methods on
		// the mux, so the gate only sees them when the method does not
		// match. They must never fall through to the backend proxy.
		if path == RouteOidcCallback || path == RouteOidcAuthCode || path == RouteHealth {
			writeJSON(w, http.StatusMethodNotAllowed, oauthmodel.ErrorData{Error: "Method not allowed"})
			return
		}

		if path != RouteAPIPrefix && !strings.HasPrefix(path, RouteAPIPrefix+"/") {
			s.badRequest(w, "Auth proxy calls must be prefixed by "+RouteAPIPrefix)
			return
		}

		authCode := s.extractAuthCode(r)
		if authCode == "" {
			log.Info().
				Str("auth_type", string(s.config.GetAuthType())).
				Str("path", path).
				Msg("No auth code found. Sending 401 with redirect data.")
			s.unauthenticated(w)
			return
		}

		cachedToken, err := s.cache.Get(authCode)
		if err != nil {
			// Miss or any unexpected cache failure: never a 500, the
			// client just re-enters the authorization flow.
			log.Warn().Err(err).Msg("No valid token found for authorization code")
			s.unauthenticated(w)
			return
		}

		// A dead refresh token means the whole entry is dead.
		if cachedToken.RefreshToken != "" && token.Expired(cachedToken.RefreshToken, 0) {
			log.Info().Msg("Token found but refresh_token expired. Sending redirect info.")
			s.cache.Remove(authCode)
			s.unauthenticated(w)
			return
		}

		current, needsRefresh, err := s.cache.CheckRefresh(authCode)
		if err != nil {
			s.unauthenticated(w)
			return
		}
		if needsRefresh {
			// Non-blocking: the request proceeds with the current,
			// possibly stale token; the retry protocol covers the gap.
			s.refresher.Schedule(authCode, current.RefreshToken)
		}

		headerName := s.config.GetHeaderName()
		r.Header.Del(headerName)
		r.Header.Set(headerName, "Bearer "+current.AccessToken)

		next(w, r)
	}
}

// extractAuthCode pulls the opaque authorization code from the request
// according to the configured auth type.
func (s *Server) extractAuthCode(r *http.Request) string {
	switch s.config.GetAuthType() {
	case config.AuthTypeBearer:
		authCode := r.Header.Get(s.config.GetHeaderName())
		return strings.TrimPrefix(authCode, "Bearer ")
	case config.AuthTypeCookie:
		if cookie, err := r.Cookie(s.config.GetCookieName()); err == nil {
			return cookie.Value
		}
	}
	return ""
}

func (s *Server) unauthenticated(w http.ResponseWriter) {
	url, err := s.auth.BuildAuthInitURL()
	if err != nil {
		log.Err(err).Msg("Could not build OIDC provider authorization URL")
		s.badRequest(w, "Could not build OIDC provider authorization URL")
		return
	}
	writeJSON(w, http.StatusUnauthorized, oauthmodel.RedirectData{RedirectTo: url})
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, oauthmodel.ErrorData{Error: message})
}
