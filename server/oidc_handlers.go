package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-proxy/internal/config"
	"github.com/jrsteele09/go-auth-proxy/internal/errors"
	"github.com/jrsteele09/go-auth-proxy/oauthmodel"
)

// OidcCallbackHandler handles OAuth callbacks from the OIDC provider:
// it validates the state against our own PKCE sessions, exchanges the
// provider's authorization code for tokens, and hands the client a
// freshly minted opaque code in place of the real credentials.
func (s *Server) OidcCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		sessionState := r.URL.Query().Get("session_state")
		authCode := r.URL.Query().Get("code")

		log.Info().
			Str("state", state).
			Str("session_state", sessionState).
			Msg("Got callback from OIDC provider")

		// check if state UUID is one issued by us, otherwise reject:
		if !s.auth.StateOK(state) {
			s.badRequest(w, errors.ErrStateMismatch.Error())
			return
		}

		// Exchange the provider's code for a full access token response
		accessToken, err := s.auth.ExchangeCode(r.Context(), state, authCode)
		if err != nil {
			var providerErr *errors.ProviderError
			if errors.As(err, &providerErr) {
				log.Error().
					Int("status", providerErr.Status).
					Str("body", providerErr.Body).
					Msg("Could not retrieve an access token from OIDC provider")
			} else {
				log.Err(err).Msg("Could not retrieve an access token from OIDC provider")
			}
			http.Error(w, "Token exchange failed", http.StatusBadGateway)
			return
		}

		// The client never sees the provider's tokens: it gets an opaque
		// code minted by us, which keys the cached token response.
		opaqueCode := uuid.New().String()
		s.cache.Put(opaqueCode, *accessToken)

		frontendRedirect := s.config.GetFrontendRedirect()

		if s.config.GetAuthType() == config.AuthTypeCookie {
			http.SetCookie(w, s.authCodeCookie(opaqueCode))
			http.Redirect(w, r, frontendRedirect, http.StatusFound)
			return
		}

		redirectURL := frontendRedirect + "?" + s.config.GetCallbackParamName() + "=" + opaqueCode
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// AuthCodeHandler mints an opaque authorization code for a posted token
// payload and adds it to the cache.
// NOTE: this endpoint is for test purposes.
func (s *Server) AuthCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var accessToken oauthmodel.AccessTokenResponse
		if err := json.NewDecoder(r.Body).Decode(&accessToken); err != nil {
			s.badRequest(w, "Invalid token payload")
			return
		}

		authCode := uuid.New().String()
		s.cache.Put(authCode, accessToken)

		writeJSON(w, http.StatusOK, oauthmodel.AuthCodeData{AuthCode: authCode})
	}
}

// HealthHandler reports process liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
	}
}

func (s *Server) authCodeCookie(authCode string) *http.Cookie {
	return &http.Cookie{
		Name:     s.config.GetCookieName(),
		Value:    authCode,
		Domain:   s.config.GetCookieDomain(),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: s.config.GetCookieSameSite(),
		Expires:  time.Now().Add(24 * time.Hour),
		MaxAge:   86400,
	}
}
