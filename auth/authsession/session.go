package authsession

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Session holds the PKCE material for one in-flight authentication
// attempt, keyed by the CSRF state parameter. It is created when a
// client is redirected to the identity provider and consumed exactly
// once when the provider's callback presents the matching state.
type Session struct {
	State         string
	CodeVerifier  string
	CodeChallenge string
}

// newSession generates a fresh verifier/challenge pair for the given state.
func newSession(state string) (Session, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return Session{}, fmt.Errorf("generate code verifier: %w", err)
	}
	return Session{
		State:         state,
		CodeVerifier:  verifier,
		CodeChallenge: ComputeCodeChallenge(verifier),
	}, nil
}

// generateCodeVerifier returns a cryptographically random 64-byte code
// verifier encoded as URL-safe base64 without padding (86 characters,
// within the 43-128 range of RFC 7636).
func generateCodeVerifier() (string, error) {
	b := make([]byte, 64)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ComputeCodeChallenge derives the S256 code challenge from a verifier.
func ComputeCodeChallenge(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
