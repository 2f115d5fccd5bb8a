package policy

import (
	"regexp"
	"time"
)

// RateLimitRule allows Rate requests per Window for one group.
type RateLimitRule struct {
	Rate   int
	Window time.Duration
}

// Policy is the configuration attached to a group of request paths.
type Policy struct {
	// RateLimit overrides the global limiter for the group.
	RateLimit *RateLimitRule
	// AuthRequired marks the group as requiring authentication. Groups
	// without it are served without calling the AuthFunc.
	AuthRequired bool
	// CacheTTL overrides the default response cache TTL. Negative disables
	// caching for the group.
	CacheTTL time.Duration
}

// matchKind orders the matching strategies; lower values win.
type matchKind int

const (
	kindExact matchKind = iota
	kindPrefix
	kindRegex
)

type rule struct {
	kind    matchKind
	pattern string
	re      *regexp.Regexp
}

// GroupBuilder assembles a named group of path rules and its policy.
type GroupBuilder struct {
	name   string
	rules  []rule
	policy *Policy
}

// Group starts a new group.
func Group(name string) *GroupBuilder {
	return &GroupBuilder{name: name}
}

// Name returns the group name.
func (g *GroupBuilder) Name() string { return g.name }

// Exact matches the path exactly.
func (g *GroupBuilder) Exact(path string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindExact, pattern: path})
	return g
}

// Prefix matches paths starting with prefix.
func (g *GroupBuilder) Prefix(prefix string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindPrefix, pattern: prefix})
	return g
}

// Regex matches paths containing a match of expr. The expression is compiled
// immediately and panics when invalid; use [CompileRegex] for untrusted
// input.
func (g *GroupBuilder) Regex(expr string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindRegex, pattern: expr, re: regexp.MustCompile(expr)})
	return g
}

// CompileRegex is like Regex but reports an invalid expression as an error.
func (g *GroupBuilder) CompileRegex(expr string) (*GroupBuilder, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return g, err
	}
	g.rules = append(g.rules, rule{kind: kindRegex, pattern: expr, re: re})
	return g, nil
}

// Policy attaches p to the group.
func (g *GroupBuilder) Policy(p Policy) *GroupBuilder {
	g.policy = &p
	return g
}

// RateLimited reports whether the group's policy carries a rate limit.
func (g *GroupBuilder) RateLimited() bool {
	return g.policy != nil && g.policy.RateLimit != nil
}
