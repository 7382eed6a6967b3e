// middleware/rate_limiter.go
package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles requests per remote IP with a token bucket,
// independent of the per-phone OTP issuance window enforced in the
// services layer. Offending IPs are blocked for a cool-down period.
// Limiters are cached per IP and route so the strict OTP budgets are
// not diluted by traffic to default-budget endpoints.
type RateLimiter struct {
	limiters       map[string]*rate.Limiter // keyed ip + "|" + route
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
}

// NewRateLimiter builds the HTTP-level limiter with stricter budgets for
// the OTP endpoints, which are the obvious brute-force target.
func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		limiters:       make(map[string]*rate.Limiter),
		blockedIPs:     make(map[string]time.Time),
		mu:             &sync.RWMutex{},
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
	}

	limiter.endpointLimits["/api/auth/send-otp"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}
	limiter.endpointLimits["/api/auth/verify-otp"] = endpointLimit{
		limit: rate.Every(1 * time.Second),
		burst: 5,
	}
	limiter.endpointLimits["/api/admin/login"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}

	go limiter.cleanupBlockedIPs()

	return limiter
}

func (r *RateLimiter) cleanupBlockedIPs() {
	for {
		time.Sleep(1 * time.Hour)
		r.mu.Lock()
		now := time.Now()
		for ip, blockUntil := range r.blockedIPs {
			if now.After(blockUntil) {
				delete(r.blockedIPs, ip)
				// Also remove the limiters to reset their state
				r.dropLimitersLocked(ip)
			}
		}
		r.mu.Unlock()
	}
}

// RateLimit is the echo middleware enforcing the per-IP limits
func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if time.Now().Before(blockUntil) {
					r.mu.Unlock()
					return c.JSON(429, map[string]string{
						"message":    "IP address blocked due to too many requests",
						"retryAfter": blockUntil.Format(time.RFC3339),
					})
				}
				// Block has expired; reset the limiter state
				delete(r.blockedIPs, ip)
				r.dropLimitersLocked(ip)
			}
			r.mu.Unlock()

			path := c.Path()
			limit := r.defaultLimit
			burst := r.defaultBurst

			if el, exists := r.endpointLimits[path]; exists {
				limit = el.limit
				burst = el.burst
			}

			limiter := r.getLimiter(ip, path, limit, burst)
			if !limiter.Allow() {
				r.mu.Lock()
				r.blockedIPs[ip] = time.Now().Add(r.blockDuration)
				r.mu.Unlock()

				return c.JSON(429, map[string]string{
					"message":    "Too many requests",
					"retryAfter": time.Now().Add(r.blockDuration).Format(time.RFC3339),
				})
			}

			return next(c)
		}
	}
}

func (r *RateLimiter) getLimiter(ip, path string, limit rate.Limit, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ip + "|" + path
	limiter, exists := r.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		r.limiters[key] = limiter
	}
	return limiter
}

// dropLimitersLocked removes every cached limiter for ip. Caller holds r.mu.
func (r *RateLimiter) dropLimitersLocked(ip string) {
	prefix := ip + "|"
	for key := range r.limiters {
		if strings.HasPrefix(key, prefix) {
			delete(r.limiters, key)
		}
	}
}
