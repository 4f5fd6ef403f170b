package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-auth-proxy/auth/authsession"
	"github.com/jrsteele09/go-auth-proxy/oauthmodel"
)

// ProviderClient is the slice of the OIDC client the auth service needs.
type ProviderClient interface {
	AuthCodeURL(state, codeChallenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*oauthmodel.AccessTokenResponse, error)
}

// Service drives the authorization-code-with-PKCE flow on behalf of
// clients that cannot hold a client secret. It owns no state itself;
// in-flight attempts live in the session store.
type Service struct {
	sessions *authsession.Store
	provider ProviderClient
}

// NewService creates the authentication service.
func NewService(sessions *authsession.Store, provider ProviderClient) *Service {
	return &Service{
		sessions: sessions,
		provider: provider,
	}
}

// BuildAuthInitURL mints a state UUID, opens a PKCE session for it and
// returns the absolute authorization URL the client should be sent to.
func (s *Service) BuildAuthInitURL() (string, error) {
	state := uuid.New().String()

	session, err := s.sessions.Begin(state)
	if err != nil {
		return "", fmt.Errorf("[BuildAuthInitURL] failed to begin session: %w", err)
	}

	return s.provider.AuthCodeURL(state, session.CodeChallenge), nil
}

// StateOK reports whether the given state was issued by us and is still
// pending. It does not consume the session.
func (s *Service) StateOK(state string) bool {
	return s.sessions.Contains(state)
}

// ExchangeCode consumes the PKCE session for state and trades the
// provider's authorization code for a token response. The session is
// gone after this call whether the exchange succeeds or not; a replayed
// callback must restart the flow.
func (s *Service) ExchangeCode(ctx context.Context, state, code string) (*oauthmodel.AccessTokenResponse, error) {
	verifier, err := s.sessions.Consume(state)
	if err != nil {
		return nil, err
	}
	return s.provider.Exchange(ctx, code, verifier)
}
