package config

import (
	"strconv"
	"time"
)

// CacheConfig holds token cache and refresh timing knobs.
type CacheConfig interface {
	GetTokenExpiryMargin() time.Duration
	GetCleanupReadInterval() int
	GetSweepInterval() time.Duration
	GetRetryDelay() time.Duration
	GetRefreshInitialBackoff() time.Duration
	GetRefreshMaxBackoff() time.Duration
	GetRefreshMaxAttempts() int
}

type Cache struct{}

var _ CacheConfig = Cache{}

// GetTokenExpiryMargin is the safety margin subtracted from the access
// token's real expiry when deciding whether a refresh should be scheduled.
func (Cache) GetTokenExpiryMargin() time.Duration {
	return getDuration("TOKEN_EXPIRY_MARGIN", 10*time.Second)
}

func (Cache) GetCleanupReadInterval() int {
	if n, err := strconv.Atoi(GetEnv("CACHE_CLEANUP_READ_INTERVAL", "")); err == nil && n > 0 {
		return n
	}
	return 1000
}

// GetSweepInterval enables an optional time-based fallback sweep of the
// token cache. Zero disables it, leaving only the read-counter sweep.
func (Cache) GetSweepInterval() time.Duration {
	return getDuration("CACHE_SWEEP_INTERVAL", 0)
}

// GetRetryDelay is how long a client is held before being redirected back
// to its original URI after the backend rejected a stale token.
func (Cache) GetRetryDelay() time.Duration {
	return getDuration("RETRY_DELAY", 200*time.Millisecond)
}

func (Cache) GetRefreshInitialBackoff() time.Duration {
	return getDuration("REFRESH_INITIAL_BACKOFF", 50*time.Millisecond)
}

func (Cache) GetRefreshMaxBackoff() time.Duration {
	return getDuration("REFRESH_MAX_BACKOFF", 1*time.Second)
}

func (Cache) GetRefreshMaxAttempts() int {
	if n, err := strconv.Atoi(GetEnv("REFRESH_MAX_ATTEMPTS", "")); err == nil && n > 0 {
		return n
	}
	return 5
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(GetEnv(envVar, "")); err == nil {
		return d
	}
	return defaultValue
}
