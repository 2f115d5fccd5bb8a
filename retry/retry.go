package retry

import (
	"context"
	"slices"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config controls [Do].
type Config struct {
	// MaxAttempts bounds the calls to fn, the first included. Values ≤ 1
	// disable retries.
	MaxAttempts int

	// BaseDelay is the wait before the first retry; it doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration

	// Jitter spreads each wait by ±Jitter of its length (0.2 = ±20%).
	Jitter float64

	// Retryable decides whether err is worth another attempt. Nil retries
	// errors whose gRPC status code is listed in RetryCodes.
	Retryable func(error) bool

	// RetryCodes is consulted when Retryable is nil.
	RetryCodes []codes.Code
}

// Probe is the profile used for dependency checks at startup: five attempts
// from 100ms up to 2s.
var Probe = Config{
	MaxAttempts: 5,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    2 * time.Second,
	Jitter:      0.2,
	Retryable:   func(error) bool { return true },
}

func (c Config) retryable(err error) bool {
	if c.Retryable != nil {
		return c.Retryable(err)
	}
	st, ok := status.FromError(err)
	return ok && slices.Contains(c.RetryCodes, st.Code())
}

// Do calls fn until it succeeds, returns a non-retryable error or runs out
// of attempts. The last error is returned unchanged. Cancelling ctx during a
// wait returns ctx.Err().
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	for i := 0; ; i++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if i == attempts-1 || !cfg.retryable(err) {
			return zero, err
		}

		timer := time.NewTimer(backoff(cfg, i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// Ping retries a dependency check that has no result value.
func Ping(ctx context.Context, cfg Config, ping func(context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ping(ctx)
	})
	return err
}
