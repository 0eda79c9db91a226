package auth

import (
	"sync"
	"time"
)

const (
	defaultMaxFailedAttempts = 5
	defaultFailureWindow     = 15 * time.Minute
	defaultLockoutDuration   = 30 * time.Minute
	defaultCleanupInterval   = 5 * time.Minute
)

// RateLimiter locks out an IP+device pair after too many bad tokens inside a
// sliding window.
type RateLimiter struct {
	mu       sync.Mutex
	failures map[string]*failureRecord
	cfg      RateLimitConfig
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type failureRecord struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
// Zero values fall back to the defaults.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxFailedAttempts
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = defaultFailureWindow
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = defaultLockoutDuration
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultCleanupInterval
	}
	return c
}

// NewRateLimiter creates a limiter and starts its background cleanup.
// Call Stop when done.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		failures: make(map[string]*failureRecord),
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func failureKey(ip, deviceID string) string {
	return ip + "|" + deviceID
}

// Allow reports whether another attempt may be made and, if not, how long
// the caller has to wait.
func (rl *RateLimiter) Allow(ip, deviceID string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.failures[failureKey(ip, deviceID)]
	if !ok {
		return true, 0
	}
	if now.Before(rec.lockedUntil) {
		return false, rec.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a bad token and reports whether the pair is now
// locked out.
func (rl *RateLimiter) RecordFailure(ip, deviceID string) (bool, time.Duration) {
	key := failureKey(ip, deviceID)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.failures[key]
	if !ok || now.Sub(rec.windowStart) > rl.cfg.WindowDuration {
		rec = &failureRecord{windowStart: now}
		rl.failures[key] = rec
	}

	rec.count++
	if rec.count >= rl.cfg.MaxAttempts {
		rec.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true, rl.cfg.LockoutDuration
	}
	return false, 0
}

// RecordSuccess forgets previous failures for the pair.
func (rl *RateLimiter) RecordSuccess(ip, deviceID string) {
	rl.mu.Lock()
	delete(rl.failures, failureKey(ip, deviceID))
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, rec := range rl.failures {
		if now.Sub(rec.windowStart) > rl.cfg.WindowDuration && !now.Before(rec.lockedUntil) {
			delete(rl.failures, key)
		}
	}
}
