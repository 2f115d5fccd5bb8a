// Package config loads the YAML deployment configuration of a pipeline
// server and watches it for changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the root of the YAML document.
type Config struct {
	Listen    string          `yaml:"listen"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RequestID bool            `yaml:"request_id"`
	AccessLog bool            `yaml:"access_log"`
	IPBlock   IPBlockConfig   `yaml:"ip_block"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	Cache     CacheConfig     `yaml:"cache"`
	Policies  []PolicyConfig  `yaml:"policies"`
	Echo      EchoConfig      `yaml:"echo"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format    string `yaml:"format"` // json, text (default: json)
	AddSource bool   `yaml:"add_source"`
	// File switches output from stderr to a size-rotated file.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"` // default: 100
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Pretty indents the stdout exporter output.
	Pretty bool `yaml:"pretty"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: /metrics
}

type IPBlockConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Mode           string   `yaml:"mode"` // allow, deny (default: deny)
	CIDRs          []string `yaml:"cidrs"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	HeaderPriority []string `yaml:"header_priority"`
}

// RateLimitConfig is the global limiter. Policies may override it per group.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate"`  // requests per second
	Burst   int     `yaml:"burst"` // max burst size
}

type AuthConfig struct {
	Enabled bool          `yaml:"enabled"`
	Tokens  []TokenConfig `yaml:"tokens"`
	// JWTSecret enables HMAC-signed JWT bearer tokens next to the static ones.
	JWTSecret string `yaml:"jwt_secret"`
}

// TokenConfig maps one static bearer token to the identity it grants.
type TokenConfig struct {
	Token   string   `yaml:"token"`
	Subject string   `yaml:"subject"`
	Tenant  string   `yaml:"tenant"`
	Scopes  []string `yaml:"scopes"`
}

type BreakerConfig struct {
	Enabled            bool          `yaml:"enabled"`
	FailureThreshold   int           `yaml:"failure_threshold"`
	OpenTimeout        time.Duration `yaml:"open_timeout"`
	HalfOpenMaxSuccess int           `yaml:"half_open_max_success"`
}

type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	L1MaxBytes int64         `yaml:"l1_max_bytes"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig enables the L2 layer when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// PolicyConfig is one path group. At least one matcher is required.
type PolicyConfig struct {
	Name         string           `yaml:"name"`
	Exact        []string         `yaml:"exact"`
	Prefix       []string         `yaml:"prefix"`
	Regex        []string         `yaml:"regex"`
	RateLimit    *GroupRateConfig `yaml:"rate_limit"`
	AuthRequired bool             `yaml:"auth_required"`
	CacheTTL     time.Duration    `yaml:"cache_ttl"`
}

type GroupRateConfig struct {
	Rate   int           `yaml:"rate"`
	Window time.Duration `yaml:"window"`
}

// EchoConfig configures the terminal middleware of the served pipeline.
type EchoConfig struct {
	Message string `yaml:"message"`
	Fun     bool   `yaml:"fun"`
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.IPBlock.Mode == "" {
		c.IPBlock.Mode = "deny"
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate == 0 {
			c.RateLimit.Rate = 1000
		}
		if c.RateLimit.Burst == 0 {
			c.RateLimit.Burst = 100
		}
	}
	if c.Breaker.Enabled {
		if c.Breaker.FailureThreshold == 0 {
			c.Breaker.FailureThreshold = 5
		}
		if c.Breaker.OpenTimeout == 0 {
			c.Breaker.OpenTimeout = 30 * time.Second
		}
		if c.Breaker.HalfOpenMaxSuccess == 0 {
			c.Breaker.HalfOpenMaxSuccess = 1
		}
	}
	if c.Cache.Enabled {
		if c.Cache.TTL == 0 {
			c.Cache.TTL = time.Minute
		}
		if c.Cache.L1MaxBytes == 0 {
			c.Cache.L1MaxBytes = 64 << 20
		}
	}
	for i := range c.Policies {
		if rl := c.Policies[i].RateLimit; rl != nil && rl.Window == 0 {
			rl.Window = time.Second
		}
	}
	if c.Echo.Message == "" {
		c.Echo.Message = "pong"
	}
}

// Validate checks the configuration. Every error wraps [ErrInvalid].
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return invalid("logging.format %q must be json or text", c.Logging.Format)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return invalid("logging.max_size_mb and logging.max_backups must be >= 0")
	}
	if c.IPBlock.Enabled {
		if c.IPBlock.Mode != "allow" && c.IPBlock.Mode != "deny" {
			return invalid("ip_block.mode %q must be allow or deny", c.IPBlock.Mode)
		}
		if c.IPBlock.Mode == "allow" && len(c.IPBlock.CIDRs) == 0 {
			return invalid("ip_block.cidrs is required in allow mode")
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0) {
		return invalid("rate_limit.rate and rate_limit.burst must be >= 0")
	}
	if c.Auth.Enabled {
		if len(c.Auth.Tokens) == 0 && c.Auth.JWTSecret == "" {
			return invalid("auth needs at least one token or a jwt_secret")
		}
		for i, t := range c.Auth.Tokens {
			if t.Token == "" {
				return invalid("auth.tokens[%d].token is required", i)
			}
		}
	}
	if c.Breaker.Enabled && (c.Breaker.FailureThreshold < 0 || c.Breaker.OpenTimeout < 0) {
		return invalid("breaker thresholds must be >= 0")
	}
	if c.Cache.Enabled && c.Cache.L1MaxBytes < 0 {
		return invalid("cache.l1_max_bytes must be >= 0")
	}

	seen := make(map[string]bool, len(c.Policies))
	for i, p := range c.Policies {
		if p.Name == "" {
			return invalid("policies[%d].name is required", i)
		}
		if seen[p.Name] {
			return invalid("policies[%d].name %q is duplicated", i, p.Name)
		}
		seen[p.Name] = true
		if len(p.Exact)+len(p.Prefix)+len(p.Regex) == 0 {
			return invalid("policies[%d] (%s) needs at least one exact, prefix or regex matcher", i, p.Name)
		}
		for _, expr := range p.Regex {
			if _, err := regexp.Compile(expr); err != nil {
				return invalid("policies[%d] (%s) regex %q: %v", i, p.Name, expr, err)
			}
		}
		if p.RateLimit != nil && (p.RateLimit.Rate <= 0 || p.RateLimit.Window <= 0) {
			return invalid("policies[%d] (%s) rate_limit needs a positive rate and window", i, p.Name)
		}
	}
	return nil
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}
