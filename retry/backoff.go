// Package retry retries startup probes of pipeline dependencies, such as the
// Redis tier of the response cache, with exponential backoff and jitter.
// It is never used on the request path.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// backoff returns the delay after attempt (0-indexed), capped at
// cfg.MaxDelay and spread by ±cfg.Jitter.
func backoff(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if limit := float64(cfg.MaxDelay); limit > 0 && delay > limit {
		delay = limit
	}
	if cfg.Jitter > 0 {
		delay += delay * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(delay, 0))
}
