package gorawrqueue

import (
	"fmt"
	"log/slog"

	"github.com/Keksclan/goRawrQueue/auth"
	"github.com/Keksclan/goRawrQueue/breaker"
	"github.com/Keksclan/goRawrQueue/cache"
	conf "github.com/Keksclan/goRawrQueue/config"
	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/echo"
	"github.com/Keksclan/goRawrQueue/policy"
	"github.com/Keksclan/goRawrQueue/security"
)

// FromConfig translates a loaded deployment configuration into options.
// Metrics are not included: pass the long-lived collector with WithMetrics.
func FromConfig(cfg *conf.Config, logger *slog.Logger) ([]Option, error) {
	opts := []Option{WithLogger(logger)}

	if cfg.RequestID {
		opts = append(opts, WithRequestID())
	}
	if cfg.AccessLog {
		opts = append(opts, WithAccessLog(nil))
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, WithOpenTelemetry(nil))
	}

	if cfg.IPBlock.Enabled {
		mode, err := security.ParseMode(cfg.IPBlock.Mode)
		if err != nil {
			return nil, err
		}
		b, err := security.NewIPBlocker(security.Config{
			Mode:           mode,
			CIDRs:          cfg.IPBlock.CIDRs,
			TrustedProxies: cfg.IPBlock.TrustedProxies,
			HeaderPriority: cfg.IPBlock.HeaderPriority,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithIPBlocker(b))
	}

	if cfg.RateLimit.Enabled {
		opts = append(opts, WithRateLimitGlobal(cfg.RateLimit.Rate, cfg.RateLimit.Burst))
	}

	if len(cfg.Policies) > 0 {
		groups, err := policyGroups(cfg.Policies)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPolicies(groups...))
	}

	if cfg.Auth.Enabled {
		tokens := make(map[string]contextx.Actor, len(cfg.Auth.Tokens))
		for _, t := range cfg.Auth.Tokens {
			tokens[t.Token] = contextx.Actor{Subject: t.Subject, Tenant: t.Tenant, Scopes: t.Scopes}
		}
		var fns []auth.AuthFunc
		if len(tokens) > 0 {
			fns = append(fns, auth.StaticTokens(tokens))
		}
		if cfg.Auth.JWTSecret != "" {
			fns = append(fns, auth.HS256Tokens([]byte(cfg.Auth.JWTSecret)))
		}
		opts = append(opts, WithAuth(auth.Any(fns...)))
	}

	if cfg.Breaker.Enabled {
		opts = append(opts, WithCircuitBreaker(breaker.Config{
			FailureThreshold:   cfg.Breaker.FailureThreshold,
			OpenTimeout:        cfg.Breaker.OpenTimeout,
			HalfOpenMaxSuccess: cfg.Breaker.HalfOpenMaxSuccess,
		}))
	}

	if cfg.Cache.Enabled {
		opts = append(opts, WithCacheL1(cfg.Cache.L1MaxBytes), WithCacheTTL(cfg.Cache.TTL))
		if r := cfg.Cache.Redis; r.Addr != "" {
			opts = append(opts, WithCacheL2(cache.L2Options{
				Addr:     r.Addr,
				Password: r.Password,
				DB:       r.DB,
				Prefix:   r.Prefix,
			}))
		}
	}

	if cfg.Echo.Fun {
		opts = append(opts, WithTerminal(echo.Fun(cfg.Echo.Message, nil)))
	} else {
		opts = append(opts, WithTerminal(echo.JSON(cfg.Echo.Message)))
	}
	return opts, nil
}

func policyGroups(pcs []conf.PolicyConfig) ([]*policy.GroupBuilder, error) {
	groups := make([]*policy.GroupBuilder, 0, len(pcs))
	for _, pc := range pcs {
		g := policy.Group(pc.Name)
		for _, p := range pc.Exact {
			g.Exact(p)
		}
		for _, p := range pc.Prefix {
			g.Prefix(p)
		}
		for _, expr := range pc.Regex {
			if _, err := g.CompileRegex(expr); err != nil {
				return nil, fmt.Errorf("policy %s: %w", pc.Name, err)
			}
		}
		p := policy.Policy{AuthRequired: pc.AuthRequired, CacheTTL: pc.CacheTTL}
		if pc.RateLimit != nil {
			p.RateLimit = &policy.RateLimitRule{Rate: pc.RateLimit.Rate, Window: pc.RateLimit.Window}
		}
		groups = append(groups, g.Policy(p))
	}
	return groups, nil
}
