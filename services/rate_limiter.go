// services/rate_limiter.go
package services

import (
	"sync"
	"time"
)

const (
	rateWindow      = 1 * time.Hour
	maxPerWindow    = 5
	sweeperInterval = 5 * time.Minute
)

// OtpRateLimiter caps OTP issuance per phone with a sliding one-hour
// window of request timestamps. A periodic sweep drops windows whose
// entries have all aged out, bounding memory.
type OtpRateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	window  time.Duration
	max     int
	now     func() time.Time
	done    chan struct{}
	stopped sync.Once
}

// NewOtpRateLimiter creates a limiter with the default window (1 hour, 5
// requests) and starts its sweep routine.
func NewOtpRateLimiter() *OtpRateLimiter {
	rl := &OtpRateLimiter{
		windows: make(map[string][]time.Time),
		window:  rateWindow,
		max:     maxPerWindow,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether phone may request another OTP now. On acceptance
// the request timestamp is recorded; on rejection nothing beyond pruning
// changes, so a rejected caller does not extend their own penalty.
func (rl *OtpRateLimiter) Allow(phone string) bool {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.windows[phone]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.max {
		rl.windows[phone] = valid
		return false
	}

	rl.windows[phone] = append(valid, now)
	return true
}

// sweep prunes aged-out windows every 5 minutes
func (rl *OtpRateLimiter) sweep() {
	ticker := time.NewTicker(sweeperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := rl.now().Add(-rl.window)
			rl.mu.Lock()
			for phone, timestamps := range rl.windows {
				valid := timestamps[:0]
				for _, ts := range timestamps {
					if ts.After(cutoff) {
						valid = append(valid, ts)
					}
				}
				if len(valid) == 0 {
					delete(rl.windows, phone)
				} else {
					rl.windows[phone] = valid
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop terminates the sweep routine
func (rl *OtpRateLimiter) Stop() {
	rl.stopped.Do(func() { close(rl.done) })
}
