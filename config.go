package gorawrqueue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Keksclan/goRawrQueue/auth"
	"github.com/Keksclan/goRawrQueue/breaker"
	"github.com/Keksclan/goRawrQueue/cache"
	"github.com/Keksclan/goRawrQueue/interceptors"
	"github.com/Keksclan/goRawrQueue/internal/core"
	"github.com/Keksclan/goRawrQueue/metrics"
	"github.com/Keksclan/goRawrQueue/pipeline"
	"github.com/Keksclan/goRawrQueue/policy"
	"github.com/Keksclan/goRawrQueue/ratelimit"
	"github.com/Keksclan/goRawrQueue/security"
	"github.com/Keksclan/goRawrQueue/tracing"
)

const defaultCacheTTL = time.Minute

// config holds the internal configuration assembled via functional options.
type config struct {
	logger *slog.Logger

	requestID    bool
	accessLog    bool
	accessLogger *slog.Logger
	tracing      *tracing.Config
	metrics      *metrics.Collector
	ipBlocker    *security.IPBlocker

	rateLimit bool
	limiter   *ratelimit.Limiter
	groups    []*policy.GroupBuilder

	authFn  auth.AuthFunc
	breaker *breaker.Breaker

	cacheL1    bool
	l1MaxBytes int64
	l2Options  *cache.L2Options
	external   cache.Cache
	cacheTTL   time.Duration

	user     []pipeline.Middleware
	terminal pipeline.Middleware
}

// chain is the immutable product of one set of options.
type chain struct {
	mws      []pipeline.Middleware
	logger   *slog.Logger
	observer pipeline.Observer
	metrics  *metrics.Collector
	cache    cache.Cache
	closers  []func()
}

func newConfig(opts []Option) *config {
	c := &config{logger: slog.Default(), cacheTTL: defaultCacheTTL}
	for _, o := range opts {
		o(c)
	}
	return c
}

// buildCache returns the response cache and the functions that release it.
func (c *config) buildCache() (cache.Cache, []func(), error) {
	if c.external != nil {
		return c.external, nil, nil
	}
	var (
		l1      *cache.L1
		l2      *cache.L2
		closers []func()
	)
	if c.cacheL1 {
		var err error
		if l1, err = cache.NewL1(c.l1MaxBytes); err != nil {
			return nil, nil, fmt.Errorf("l1 cache: %w", err)
		}
		closers = append(closers, l1.Close)
	}
	if c.l2Options != nil {
		o := *c.l2Options
		if o.Logger == nil {
			o.Logger = c.logger
		}
		l2 = cache.NewL2(o)
		closers = append(closers, func() { _ = l2.Close() })
	}
	switch {
	case l1 != nil && l2 != nil:
		return cache.NewTiered(l1, l2, c.cacheTTL), closers, nil
	case l1 != nil:
		return l1, closers, nil
	case l2 != nil:
		return l2, closers, nil
	}
	return nil, nil, nil
}

func (c *config) build() (*chain, error) {
	cc, closers, err := c.buildCache()
	if err != nil {
		return nil, err
	}
	resolver := policy.NewResolver(c.groups...)

	var b core.MiddlewareBuilder
	if c.requestID {
		b.Add(OrderRequestID, interceptors.RequestID())
	}
	if c.tracing != nil {
		b.Add(OrderTracing, tracing.Middleware(c.tracing))
	}
	if c.accessLog {
		l := c.accessLogger
		if l == nil {
			l = c.logger
		}
		b.Add(OrderLogging, interceptors.Logging(l))
	}
	if c.metrics != nil {
		b.Add(OrderMetrics, c.metrics.Middleware())
	}
	if c.ipBlocker != nil {
		b.Add(OrderIPBlock, interceptors.IPBlock(c.ipBlocker))
	}
	if c.rateLimit {
		b.Add(OrderRateLimit, interceptors.RateLimit(c.limiter, resolver))
	}
	if c.authFn != nil {
		b.Add(OrderAuth, interceptors.Auth(c.authFn, resolver))
	}
	if c.breaker != nil {
		b.Add(OrderBreaker, interceptors.Breaker(c.breaker))
	}
	if cc != nil {
		b.Add(OrderCache, interceptors.Cache(cc, c.cacheTTL, resolver))
	}
	for _, mw := range c.user {
		b.Add(OrderUser, mw)
	}
	b.Add(OrderTerminal, c.terminal)

	ch := &chain{
		mws:     b.Build(),
		logger:  c.logger,
		cache:   cc,
		closers: closers,
	}
	if c.metrics != nil {
		ch.observer = c.metrics
		ch.metrics = c.metrics
	}
	return ch, nil
}

func (ch *chain) handler() *pipeline.Handler {
	opts := []pipeline.Option{pipeline.WithLogger(ch.logger)}
	if ch.observer != nil {
		opts = append(opts, pipeline.WithObserver(ch.observer))
	}
	return pipeline.NewHandler(ch.mws, opts...)
}

func (ch *chain) close() {
	for _, f := range ch.closers {
		f()
	}
}
