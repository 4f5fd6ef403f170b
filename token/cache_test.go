package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-proxy/internal/errors"
	"github.com/jrsteele09/go-auth-proxy/oauthmodel"
	"github.com/jrsteele09/go-auth-proxy/token"
)

func tokenPair(t *testing.T, accessExpiresIn, refreshExpiresIn time.Duration) oauthmodel.AccessTokenResponse {
	t.Helper()
	return oauthmodel.AccessTokenResponse{
		AccessToken:  mintJWT(t, accessExpiresIn),
		RefreshToken: mintJWT(t, refreshExpiresIn),
		TokenType:    "Bearer",
	}
}

func TestCachePutGet(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)

	want := tokenPair(t, time.Hour, 24*time.Hour)
	cache.Put("code-1", want)

	got, err := cache.Get("code-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, cache.Len())
}

func TestCacheGetMiss(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)

	_, err := cache.Get("unknown")
	require.ErrorIs(t, err, errors.ErrTokenNotFound)
}

func TestCachePutReplaces(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)

	cache.Put("code-1", tokenPair(t, time.Minute, time.Hour))
	refreshed := tokenPair(t, time.Hour, 24*time.Hour)
	cache.Put("code-1", refreshed)

	got, err := cache.Get("code-1")
	require.NoError(t, err)
	require.Equal(t, refreshed, got)
	require.Equal(t, 1, cache.Len())
}

func TestCacheRemoveIsIdempotent(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)

	cache.Put("code-1", tokenPair(t, time.Hour, 24*time.Hour))
	cache.Remove("code-1")
	cache.Remove("code-1")

	_, err := cache.Get("code-1")
	require.ErrorIs(t, err, errors.ErrTokenNotFound)
	require.Equal(t, 0, cache.Len())
}

func TestCacheReadCounterSweepEvictsDeadEntries(t *testing.T) {
	const readInterval = 5
	cache := token.NewCache(readInterval, 10*time.Second)

	cache.Put("live", tokenPair(t, time.Hour, 24*time.Hour))
	cache.Put("dead", tokenPair(t, -time.Hour, -time.Minute))

	// A dead entry survives reads below the sweep threshold
	for i := 0; i < readInterval-1; i++ {
		_, err := cache.Get("live")
		require.NoError(t, err)
	}
	require.Equal(t, 2, cache.Len())

	// The readInterval-th read sweeps entries with expired refresh tokens
	_, err := cache.Get("live")
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	_, err = cache.Get("dead")
	require.ErrorIs(t, err, errors.ErrTokenNotFound)
}

func TestCacheSweepKeepsExpiredAccessWithLiveRefresh(t *testing.T) {
	const readInterval = 2
	cache := token.NewCache(readInterval, 10*time.Second)

	// Access token expired but refresh token still valid: refreshable, keep it
	cache.Put("refreshable", tokenPair(t, -time.Minute, 24*time.Hour))

	for i := 0; i < readInterval; i++ {
		_, err := cache.Get("refreshable")
		require.NoError(t, err)
	}
	require.Equal(t, 1, cache.Len())
}

func TestCheckRefreshFreshToken(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)

	want := tokenPair(t, time.Hour, 24*time.Hour)
	cache.Put("code-1", want)

	got, needsRefresh, err := cache.CheckRefresh("code-1")
	require.NoError(t, err)
	require.False(t, needsRefresh)
	require.Equal(t, want, got)
}

func TestCheckRefreshNearExpiryReturnsStaleToken(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)

	// Within the 10s margin: still served, but flagged for refresh
	stale := tokenPair(t, 5*time.Second, 24*time.Hour)
	cache.Put("code-1", stale)

	got, needsRefresh, err := cache.CheckRefresh("code-1")
	require.NoError(t, err)
	require.True(t, needsRefresh)
	require.Equal(t, stale, got)
}

func TestCheckRefreshMiss(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)

	_, _, err := cache.CheckRefresh("unknown")
	require.ErrorIs(t, err, errors.ErrTokenNotFound)
}

func TestCacheBackgroundSweeper(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)
	cache.StartSweeper(10 * time.Millisecond)
	defer cache.Stop()

	cache.Put("dead", tokenPair(t, -time.Hour, -time.Minute))

	require.Eventually(t, func() bool {
		return cache.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestCacheStopIsIdempotent(t *testing.T) {
	cache := token.NewCache(token.CleanupReadInterval, 10*time.Second)
	cache.StartSweeper(time.Minute)
	cache.Stop()
	cache.Stop()
}
