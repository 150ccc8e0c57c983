// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dairdly/voting/metrics"
)

// RateLimiter is a token bucket per client IP.
// Clients are keyed by the connection address; forwarding headers count only
// when the connection comes from one of TrustedProxies.
type RateLimiter struct {
	TrustedProxies []netip.Prefix

	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	swept   time.Time
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perMinute requests per client, with bursts of the same size
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		ttl:     5 * time.Minute,
		now:     time.Now,
	}
}

// Allow takes one token from ip's bucket.
// Idle buckets are swept on the way, at most once per ttl.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > l.ttl {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.ttl {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Wrap rejects POSTs over the limit with 429. Reads pass through.
func (l *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		ip := GetClientIP(r, l.TrustedProxies)
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			metrics.RateLimited.Inc()
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			ErrorResponse(w, http.StatusTooManyRequests, "Too many attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
