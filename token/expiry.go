package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Expired reports whether a JWT's "exp" claim falls within margin of now.
// The token is parsed without signature verification; the proxy only needs
// the expiry instant, trust in the token's content is the backend's job.
// Any parse failure marks the token as expired, which is the fail-safe
// direction: an unreadable token is never injected on a backend call.
func Expired(rawToken string, margin time.Duration) bool {
	rawToken = strings.TrimPrefix(rawToken, "Bearer ")

	unverifiedToken, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		log.Warn().Err(err).Msg("Could not parse token - marking as expired")
		return true
	}

	exp, err := unverifiedToken.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		log.Warn().Err(err).Msg("Token has no exp claim - marking as expired")
		return true
	}

	return NowTimeFunc().After(exp.Time.Add(-margin))
}
