package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-auth-proxy/oauthmodel"
	"github.com/jrsteele09/go-auth-proxy/token"
)

// Refresher calls the provider's refresh_token grant.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauthmodel.AccessTokenResponse, error)
}

// Options bound the retry loop of a single refresh attempt.
type Options struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int
}

// DefaultOptions matches the historical proxy behaviour: 50ms initial
// delay doubling up to 1s, at most 5 attempts.
func DefaultOptions() Options {
	return Options{
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     1 * time.Second,
		MaxAttempts:    5,
	}
}

// Coordinator refreshes near-expiry cache entries without blocking the
// request that observed the expiry. Its only output is a cache mutation:
// a successful refresh replaces the entry, an exhausted retry budget
// removes it, forcing the client back through the authorization flow.
type Coordinator struct {
	cache     *token.Cache
	refresher Refresher
	opts      Options
	group     singleflight.Group
}

// NewCoordinator creates a refresh coordinator writing into cache.
func NewCoordinator(cache *token.Cache, refresher Refresher, opts Options) *Coordinator {
	if opts.MaxAttempts <= 0 {
		opts = DefaultOptions()
	}
	return &Coordinator{
		cache:     cache,
		refresher: refresher,
		opts:      opts,
	}
}

// Schedule dispatches an asynchronous refresh for the cache entry under
// code and returns immediately. Concurrent schedules for the same code
// while a refresh is in flight share that flight instead of issuing a
// second provider call. The refresh runs to completion independently of
// any request lifecycle.
func (c *Coordinator) Schedule(code, refreshToken string) {
	go func() {
		_, _, _ = c.group.Do(code, func() (interface{}, error) {
			c.refreshWithRetry(code, refreshToken)
			return nil, nil
		})
	}()
}

func (c *Coordinator) refreshWithRetry(code, refreshToken string) {
	backoff := c.opts.InitialBackoff

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		newToken, err := c.refresher.Refresh(context.Background(), refreshToken)
		if err == nil {
			c.cache.Put(code, *newToken)
			return
		}

		log.Warn().
			Err(err).
			Str("code", code).
			Int("attempt", attempt).
			Msg("Could not refresh access_token")

		if attempt == c.opts.MaxAttempts {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
		if backoff > c.opts.MaxBackoff {
			backoff = c.opts.MaxBackoff
		}
	}

	// Refresh token may itself be expired; evict so the client's next
	// call restarts the full authorization flow.
	log.Warn().Str("code", code).Msg("Refresh retries exhausted, removing cache entry")
	c.cache.Remove(code)
}
