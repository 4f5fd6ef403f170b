package token

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-proxy/internal/errors"
	"github.com/jrsteele09/go-auth-proxy/oauthmodel"
)

// CleanupReadInterval is the default number of Get calls between
// synchronous sweeps of dead entries. Cleanup cost is amortized over
// traffic instead of a background timer, so under low traffic dead
// entries may linger; StartSweeper adds a time-based fallback.
const CleanupReadInterval = 1000

// Cache holds access/refresh token pairs keyed by the opaque
// authorization code handed to the client. It is the only owner of the
// entries; the refresh coordinator mutates them solely by full
// replacement through Put.
type Cache struct {
	mu           sync.Mutex
	entries      map[string]oauthmodel.AccessTokenResponse
	readCounter  int
	readInterval int
	expiryMargin time.Duration

	stopSweeper chan struct{}
	sweeperOnce sync.Once
}

// NewCache creates a token cache. expiryMargin is the safety buffer used
// by CheckRefresh when deciding whether an access token is near expiry.
func NewCache(readInterval int, expiryMargin time.Duration) *Cache {
	if readInterval <= 0 {
		readInterval = CleanupReadInterval
	}
	return &Cache{
		entries:      make(map[string]oauthmodel.AccessTokenResponse),
		readInterval: readInterval,
		expiryMargin: expiryMargin,
		stopSweeper:  make(chan struct{}),
	}
}

// Put adds or replaces the token for the given opaque code.
func (c *Cache) Put(code string, token oauthmodel.AccessTokenResponse) {
	log.Info().Str("code", code).Msg("Putting new token in cache")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = token
}

// Get returns the token for code. The token may be expired at this
// point. Every readInterval reads a synchronous sweep removes entries
// whose refresh token is expired.
func (c *Cache) Get(code string) (oauthmodel.AccessTokenResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.readCounter++
	if c.readCounter == c.readInterval {
		c.cleanupLocked()
		c.readCounter = 0
	}

	entry, ok := c.entries[code]
	if !ok {
		log.Info().Str("code", code).Msg("Token not found in cache")
		return oauthmodel.AccessTokenResponse{}, errors.ErrTokenNotFound
	}
	return entry, nil
}

// CheckRefresh reports whether the access token for code is within the
// safety margin of expiry. It never blocks on the provider: when a
// refresh is needed, the current (possibly stale) token is returned
// together with needsRefresh=true and the caller schedules the refresh.
func (c *Cache) CheckRefresh(code string) (token oauthmodel.AccessTokenResponse, needsRefresh bool, err error) {
	c.mu.Lock()
	entry, ok := c.entries[code]
	c.mu.Unlock()

	if !ok {
		return oauthmodel.AccessTokenResponse{}, false, errors.ErrTokenNotFound
	}
	if Expired(entry.AccessToken, c.expiryMargin) {
		log.Info().Str("code", code).Msg("Access token near expiry, refresh needed")
		return entry, true, nil
	}
	return entry, false, nil
}

// Remove deletes the entry for code. Removing an absent code is a no-op.
func (c *Cache) Remove(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper runs an optional time-based fallback sweep alongside the
// read-counter trigger, for deployments with long idle periods.
func (c *Cache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				c.cleanupLocked()
				c.mu.Unlock()
			case <-c.stopSweeper:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper, if one was started.
func (c *Cache) Stop() {
	c.sweeperOnce.Do(func() { close(c.stopSweeper) })
}

// cleanupLocked removes dead entries, defined by refresh token expiry.
// Callers must hold c.mu.
func (c *Cache) cleanupLocked() {
	counter := 0
	for code, entry := range c.entries {
		if Expired(entry.RefreshToken, 0) {
			delete(c.entries, code)
			counter++
		}
	}
	log.Info().Int("removed", counter).Msg("Cache cleanup done")
}
