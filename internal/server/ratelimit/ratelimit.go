// Package ratelimit throttles HTTP clients per endpoint with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultIdleTTL is how long an unused bucket is kept before a sweep drops it.
const DefaultIdleTTL = time.Hour

// Info describes the outcome of one Allow call. It feeds the X-RateLimit headers.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket holds tokens for one client on one endpoint. Guarded by Limiter.mu.
type bucket struct {
	capacity float64
	perSec   float64
	tokens   float64
	updated  time.Time
	lastUsed time.Time
}

func newBucket(capacity int, perSec float64, now time.Time) *bucket {
	return &bucket{
		capacity: float64(capacity),
		perSec:   perSec,
		tokens:   float64(capacity),
		updated:  now,
		lastUsed: now,
	}
}

// advance credits the tokens earned since the last update
func (b *bucket) advance(now time.Time) {
	if now.After(b.updated) {
		b.tokens = min(b.capacity, b.tokens+now.Sub(b.updated).Seconds()*b.perSec)
		b.updated = now
	}
}

// take spends one token when available. It reports the tokens left and the
// instant the bucket will be full again.
func (b *bucket) take(now time.Time) (ok bool, remaining int, full time.Time) {
	b.advance(now)
	b.lastUsed = now
	if b.tokens >= 1 {
		b.tokens--
		ok = true
	}

	full = now
	if missing := b.capacity - b.tokens; missing > 0 && b.perSec > 0 {
		full = now.Add(time.Duration(missing / b.perSec * float64(time.Second)))
	}
	return ok, int(b.tokens), full
}

// Limiter tracks one bucket per client, endpoint and method.
type Limiter struct {
	config  *Config
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter builds a limiter. A nil config uses DefaultConfig. When the config
// is enabled with a CleanupInterval, a background goroutine sweeps idle
// buckets until Stop is called.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		config:  config,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.sweepEvery(config.CleanupInterval)
	}
	return l
}

// Allow reports whether clientID may call method on path now.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	switch {
	case !l.config.Enabled || l.config.Whitelist[clientID]:
		return true, Info{Allowed: true}
	case l.config.Blacklist[clientID]:
		return false, Info{}
	}

	endpoint := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if endpoint == nil {
		endpoint = &EndpointConfig{
			Path:   path,
			Method: method,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if endpoint.Limit <= 0 || endpoint.Window <= 0 {
		return true, Info{Allowed: true}
	}

	// Keyed by the matched config path, so every path under a prefix shares one bucket.
	key := clientID + " " + method + " " + endpoint.Path
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		capacity := endpoint.Burst
		if capacity <= 0 {
			capacity = endpoint.Limit
		}
		b = newBucket(capacity, float64(endpoint.Limit)/endpoint.Window.Seconds(), now)
		l.buckets[key] = b
	}
	allowed, remaining, full := b.take(now)
	l.mu.Unlock()

	info := Info{
		Allowed:   allowed,
		Limit:     endpoint.Limit,
		Remaining: remaining,
		ResetTime: full,
	}
	if !allowed {
		info.RetryAfter = max(full.Sub(now), 0)
	}
	return allowed, info
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets unused for longer than idleTTL
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Buckets returns the number of live buckets.
func (l *Limiter) Buckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
