package gorawrqueue

import (
	"log/slog"
	"time"

	"github.com/Keksclan/goRawrQueue/auth"
	"github.com/Keksclan/goRawrQueue/breaker"
	"github.com/Keksclan/goRawrQueue/cache"
	"github.com/Keksclan/goRawrQueue/metrics"
	"github.com/Keksclan/goRawrQueue/pipeline"
	"github.com/Keksclan/goRawrQueue/policy"
	"github.com/Keksclan/goRawrQueue/ratelimit"
	"github.com/Keksclan/goRawrQueue/security"
	"github.com/Keksclan/goRawrQueue/tracing"
)

// Fixed positions of the built-in middleware. Lower values are enqueued
// first, so their request side runs first and their response side last.
const (
	OrderRequestID = 100
	OrderTracing   = 150
	OrderLogging   = 200
	OrderMetrics   = 250
	OrderIPBlock   = 300
	OrderRateLimit = 400
	OrderAuth      = 500
	OrderBreaker   = 600
	OrderCache     = 700
	OrderUser      = 1000
	OrderTerminal  = 10000
)

// Option configures a Server.
type Option func(*config)

// WithLogger sets the logger for fault reports and server errors.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestID enables the X-Request-ID middleware.
func WithRequestID() Option {
	return func(c *config) { c.requestID = true }
}

// WithAccessLog enables one structured log line per request. A nil logger
// uses the server logger.
func WithAccessLog(l *slog.Logger) Option {
	return func(c *config) {
		c.accessLog = true
		c.accessLogger = l
	}
}

// WithOpenTelemetry enables server spans. A nil cfg uses the global tracer
// provider and propagator.
func WithOpenTelemetry(cfg *tracing.Config) Option {
	return func(c *config) {
		if cfg == nil {
			cfg = &tracing.Config{}
		}
		c.tracing = cfg
	}
}

// WithMetrics records request and middleware metrics in m. The collector
// outlives reloads, so create it once and pass it to every Reload.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *config) { c.metrics = m }
}

// WithIPBlocker rejects requests b denies with 403.
func WithIPBlocker(b *security.IPBlocker) Option {
	return func(c *config) { c.ipBlocker = b }
}

// WithRateLimitGlobal limits all requests that no rate-limited policy group
// claims to rps per second with the given burst.
func WithRateLimitGlobal(rps float64, burst int) Option {
	return func(c *config) {
		c.limiter = ratelimit.NewLimiter(rps, burst)
		c.rateLimit = true
	}
}

// WithPolicies registers path groups. Their policies apply to rate limiting,
// authentication and caching. Policy rate limits take effect even without
// WithRateLimitGlobal.
func WithPolicies(groups ...*policy.GroupBuilder) Option {
	return func(c *config) {
		c.groups = append(c.groups, groups...)
		for _, g := range groups {
			if g.RateLimited() {
				c.rateLimit = true
			}
		}
	}
}

// WithAuth authenticates requests with fn. Failures answer 401 unless fn
// returns a gRPC status error with another code.
func WithAuth(fn auth.AuthFunc) Option {
	return func(c *config) { c.authFn = fn }
}

// WithCircuitBreaker sheds load with 503 while downstream keeps failing.
func WithCircuitBreaker(cfg breaker.Config) Option {
	return func(c *config) { c.breaker = breaker.New(cfg) }
}

// WithCacheL1 enables the in-process response cache holding up to maxBytes.
func WithCacheL1(maxBytes int64) Option {
	return func(c *config) {
		c.cacheL1 = true
		c.l1MaxBytes = maxBytes
	}
}

// WithCacheL2 adds a Redis layer under the response cache. Combined with
// WithCacheL1 the two are tiered.
func WithCacheL2(o cache.L2Options) Option {
	return func(c *config) { c.l2Options = &o }
}

// WithCache uses a caller-owned cache instead of WithCacheL1/WithCacheL2.
func WithCache(cc cache.Cache) Option {
	return func(c *config) { c.external = cc }
}

// WithCacheTTL sets the default lifetime of cached responses (default one
// minute). Policy groups may override it.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// WithMiddleware appends user middleware. They run after the built-ins, in
// the order given.
func WithMiddleware(mws ...pipeline.Middleware) Option {
	return func(c *config) { c.user = append(c.user, mws...) }
}

// WithTerminal sets the middleware that produces the response when nothing
// before it does.
func WithTerminal(mw pipeline.Middleware) Option {
	return func(c *config) { c.terminal = mw }
}
