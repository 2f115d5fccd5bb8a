// Package ratelimit provides the token-bucket limiter, backed by
// golang.org/x/time/rate, that gates requests entering a pipeline.
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a request may proceed.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter permits rps requests per second with the given burst.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// PerWindow permits n requests per window, all of which may arrive at once.
func PerWindow(n int, window time.Duration) *Limiter {
	return NewLimiter(float64(n)/window.Seconds(), n)
}

// Allow reports whether a single request may proceed now.
func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}

// RetryAfter returns how long a rejected caller should wait before the next
// token is available. It does not consume a token.
func (l *Limiter) RetryAfter() time.Duration {
	r := l.lim.Reserve()
	d := r.Delay()
	r.Cancel()
	return d
}
