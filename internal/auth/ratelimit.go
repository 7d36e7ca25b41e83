package auth

import (
	"sync"
	"time"
)

// RateLimiter tracks failed login attempts per IP+username and locks the pair
// out once too many fail within the window.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	cfg      RateLimitConfig
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // default: 5
	WindowDuration  time.Duration // default: 15m
	LockoutDuration time.Duration // default: 30m
	CleanupInterval time.Duration // default: 5m
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		attempts: make(map[string]*attemptRecord),
		cfg:      cfg,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether a login attempt may proceed and, if not, how long
// until it may.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.attempts[ip+":"+username]
	if !ok {
		return true, 0
	}
	now := rl.now()
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	if now.Sub(record.firstAttempt) > rl.cfg.WindowDuration || record.count < rl.cfg.MaxAttempts {
		return true, 0
	}
	return false, rl.cfg.LockoutDuration
}

// RecordFailure counts a failed attempt and reports whether it caused a lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) bool {
	key := ip + ":" + username
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.attempts[key]
	if !ok || now.Sub(record.firstAttempt) > rl.cfg.WindowDuration {
		record = &attemptRecord{firstAttempt: now}
		rl.attempts[key] = record
	}

	record.count++
	if record.count >= rl.cfg.MaxAttempts {
		record.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true
	}
	return false
}

// RecordSuccess clears the failure record after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.attempts, ip+":"+username)
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
	expiry := rl.cfg.WindowDuration + rl.cfg.LockoutDuration

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, record := range rl.attempts {
		if now.Sub(record.firstAttempt) > expiry && !now.Before(record.lockedUntil) {
			delete(rl.attempts, key)
		}
	}
}
