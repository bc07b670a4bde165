package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func withClock(l *Limiter, c *fakeClock) *Limiter {
	l.now = c.now
	return l
}

func TestBucket_Take(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(3, 1, clock.now())

	for i := 0; i < 3; i++ {
		ok, remaining, _ := b.take(clock.now())
		require.True(t, ok, "take %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}

	ok, remaining, full := b.take(clock.now())
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, clock.now().Add(3*time.Second), full)
}

func TestBucket_Refill(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(2, 2, clock.now())
	b.take(clock.now())
	b.take(clock.now())

	clock.advance(250 * time.Millisecond)
	ok, _, _ := b.take(clock.now())
	require.False(t, ok, "half a token is not enough")

	clock.advance(250 * time.Millisecond)
	ok, _, _ = b.take(clock.now())
	assert.True(t, ok)

	clock.advance(time.Hour)
	_, remaining, full := b.take(clock.now())
	assert.Equal(t, 1, remaining, "refill is capped at capacity")
	assert.Equal(t, clock.now().Add(500*time.Millisecond), full)
}

func TestBucket_ClockSkew(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(1, 1, clock.now())
	b.take(clock.now())

	ok, _, _ := b.take(clock.now().Add(-time.Minute))
	assert.False(t, ok, "a clock moving backwards earns nothing")
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/validate", http.MethodPost)
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/validate", http.MethodPost)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.1", "/layout", http.MethodPost)
	require.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1", "/layout", http.MethodPost)
	require.False(t, allowed)

	allowed, _ = limiter.Allow("10.0.0.2", "/layout", http.MethodPost)
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     IPSet([]string{"127.0.0.1"}),
		Blacklist:     IPSet([]string{" 192.168.1.1 ", ""}),
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/validate", http.MethodPost)
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}

	allowed, _ := limiter.Allow("192.168.1.1", "/health", http.MethodGet)
	assert.False(t, allowed, "blacklist applies before endpoint matching")
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/analyze", http.MethodPost)
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
	assert.Equal(t, 0, limiter.Buckets())
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/generate", Method: http.MethodPost, Limit: 5, Window: time.Hour, Burst: 5},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/generate", http.MethodPost)
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5, info.Limit)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/generate", http.MethodPost)
	assert.False(t, allowed)
	assert.Equal(t, 5, info.Limit)

	allowed, info = limiter.Allow("127.0.0.1", "/validate", http.MethodPost)
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/export/", Method: http.MethodPost, Limit: 2, Window: time.Hour, Burst: 2},
		},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("127.0.0.1", "/export/pdf", http.MethodPost)
	require.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/export/docx", http.MethodPost)
	require.True(t, allowed)

	allowed, _ = limiter.Allow("127.0.0.1", "/export/txt", http.MethodPost)
	assert.False(t, allowed, "all export formats draw from one allowance")
	assert.Equal(t, 1, limiter.Buckets())
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", http.MethodGet)
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var allowedCount atomic.Int64

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/validate", http.MethodPost); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_SweepRemovesIdleBuckets(t *testing.T) {
	clock := newFakeClock()
	limiter := withClock(NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}), clock)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/validate", http.MethodPost)
		require.True(t, allowed)
	}
	require.Equal(t, 10, limiter.Buckets())

	clock.advance(DefaultIdleTTL / 2)
	limiter.Allow("127.0.0.1", "/validate", http.MethodPost)
	limiter.sweep()
	assert.Equal(t, 10, limiter.Buckets(), "nothing is idle yet")

	clock.advance(DefaultIdleTTL/2 + time.Second)
	limiter.sweep()
	assert.Equal(t, 1, limiter.Buckets(), "only the recently used bucket survives")
}

func TestLimiter_RetryAfter(t *testing.T) {
	clock := newFakeClock()
	limiter := withClock(NewLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute}), clock)
	defer limiter.Stop()

	for i := 0; i < 60; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/layout", http.MethodPost)
		require.True(t, allowed)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/layout", http.MethodPost)
	require.False(t, allowed)
	assert.Equal(t, time.Minute, info.RetryAfter)
	assert.Equal(t, clock.now().Add(time.Minute), info.ResetTime)

	clock.advance(time.Second)
	allowed, info = limiter.Allow("127.0.0.1", "/layout", http.MethodPost)
	assert.True(t, allowed)
	assert.Zero(t, info.RetryAfter)
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/chat", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 5},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/chat", http.MethodPost)
		require.True(t, allowed, "burst request %d should be allowed", i+1)
	}
	allowed, _ := limiter.Allow("127.0.0.1", "/chat", http.MethodPost)
	assert.False(t, allowed)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Minute})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	require.NotNil(t, limiter)

	allowed, info := limiter.Allow("127.0.0.1", "/validate", http.MethodPost)
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	_, info = limiter.Allow("127.0.0.1", "/analyze", http.MethodPost)
	assert.Equal(t, 20, info.Limit, "default endpoint tiers apply")
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/analyze", Method: http.MethodPost, Limit: 1},
		{Path: "/analyze/stream", Method: http.MethodPost, Limit: 2},
		{Path: "/export/", Method: http.MethodPost, Limit: 3},
		{Path: "/export/pdf/", Method: http.MethodPost, Limit: 4},
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{name: "exact", path: "/analyze", method: http.MethodPost, wantLimit: 1},
		{name: "exact beats shorter exact", path: "/analyze/stream", method: http.MethodPost, wantLimit: 2},
		{name: "prefix", path: "/export/docx", method: http.MethodPost, wantLimit: 3},
		{name: "longest prefix", path: "/export/pdf/a4", method: http.MethodPost, wantLimit: 4},
		{name: "method mismatch", path: "/analyze", method: http.MethodGet, wantNil: true},
		{name: "exact path is not a prefix", path: "/analyze/other", method: http.MethodPost, wantNil: true},
		{name: "health", path: "/health", method: http.MethodGet, wantLimit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}
