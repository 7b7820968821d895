package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig holds per-IP limits.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit
	GeneralBurst    int
	LoginRate       rate.Limit
	LoginBurst      int
	CleanupInterval time.Duration
}

// PerMinute builds a config allowing general and login requests per minute
// per IP, with bursts of the same size.
func PerMinute(general, login int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(general) / 60),
		GeneralBurst:    general,
		LoginRate:       rate.Limit(float64(login) / 60),
		LoginBurst:      login,
		CleanupInterval: 5 * time.Minute,
	}
}

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet holds one token bucket per client IP.
type limiterSet struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*ipLimiter
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{limit: limit, burst: burst, limiters: make(map[string]*ipLimiter)}
}

func (s *limiterSet) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	l, ok := s.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[ip] = l
	}
	l.lastAccess = now
	s.mu.Unlock()
	return l.limiter.AllowN(now, 1)
}

func (s *limiterSet) prune(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ip, l := range s.limiters {
		if l.lastAccess.Before(cutoff) {
			delete(s.limiters, ip)
		}
	}
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimiter limits requests per client IP. Login attempts have their own,
// tighter bucket that is independent of the general one.
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterSet
	login   *limiterSet
	now     func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewRateLimiter starts a limiter with a background cleanup loop.
// Call Stop to end it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config:  config,
		general: newLimiterSet(config.GeneralRate, config.GeneralBurst),
		login:   newLimiterSet(config.LoginRate, config.LoginBurst),
		now:     time.Now,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup loop and waits for it to exit.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
	<-rl.done
}

// General limits every request.
func (rl *RateLimiter) General(next http.Handler) http.Handler {
	return rl.handler(rl.general, rl.config.GeneralRate, "general", next)
}

// Login limits login attempts.
func (rl *RateLimiter) Login(next http.Handler) http.Handler {
	return rl.handler(rl.login, rl.config.LoginRate, "login", next)
}

func (rl *RateLimiter) handler(set *limiterSet, limit rate.Limit, kind string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if !set.allow(ip, rl.now()) {
			slog.Warn("rate limit exceeded", "ip", ip, "limit_type", kind, "path", r.URL.Path)
			writeRateLimitResponse(w, limit)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Tracked returns the number of IPs with a general and a login bucket.
func (rl *RateLimiter) Tracked() (general, login int) {
	return rl.general.len(), rl.login.len()
}

func (rl *RateLimiter) cleanupLoop() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops buckets idle for two cleanup intervals.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-2 * rl.config.CleanupInterval)
	rl.general.prune(cutoff)
	rl.login.prune(cutoff)
}

// writeRateLimitResponse writes a 429 with Retry-After set to the time until
// one token is refilled.
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfter := 60
	if limit > 0 {
		retryAfter = max(int(math.Ceil(1/float64(limit))), 1)
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "Too many requests. Please wait and try again.",
		"message": "Too many requests. Please wait and try again.",
		"action":  "Wait a moment before retrying",
		"code":    "RATE001",
	})
}
