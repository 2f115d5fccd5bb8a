// Package security decides whether a client address may reach the pipeline.
package security

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// Mode selects how the CIDR list is applied.
type Mode int

const (
	// AllowList admits only addresses inside one of the CIDRs.
	AllowList Mode = iota
	// DenyList rejects addresses inside any of the CIDRs.
	DenyList
)

// ParseMode accepts "allow" or "deny".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow", "allowlist":
		return AllowList, nil
	case "deny", "denylist", "":
		return DenyList, nil
	}
	return 0, fmt.Errorf("ipblock: unknown mode %q", s)
}

// Config holds the IPBlocker settings. Plain addresses are accepted
// wherever a CIDR is.
type Config struct {
	Mode           Mode
	CIDRs          []string
	TrustedProxies []string
	// HeaderPriority lists the forwarding headers consulted, in order, when
	// the direct peer is a trusted proxy. Defaults to X-Real-IP then
	// X-Forwarded-For.
	HeaderPriority []string
}

var errNoCIDRs = errors.New("ipblock: allow list without CIDRs rejects everything")

type IPBlocker struct {
	mode           Mode
	cidrs          []netip.Prefix
	trustedProxies []netip.Prefix
	headerPriority []string
}

func NewIPBlocker(cfg Config) (*IPBlocker, error) {
	cidrs, err := parsePrefixes(cfg.CIDRs)
	if err != nil {
		return nil, fmt.Errorf("ipblock: invalid CIDR: %w", err)
	}
	if cfg.Mode == AllowList && len(cidrs) == 0 {
		return nil, errNoCIDRs
	}
	proxies, err := parsePrefixes(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("ipblock: invalid trusted proxy: %w", err)
	}

	hp := cfg.HeaderPriority
	if len(hp) == 0 {
		hp = defaultHeaderPriority
	}
	return &IPBlocker{
		mode:           cfg.Mode,
		cidrs:          cidrs,
		trustedProxies: proxies,
		headerPriority: hp,
	}, nil
}

// Evaluate reports whether r may proceed, and the client address it
// decided on. A request whose address cannot be determined is denied.
func (b *IPBlocker) Evaluate(r *http.Request) (netip.Addr, bool) {
	addr, ok := ClientAddr(r, b.trustedProxies, b.headerPriority)
	if !ok {
		return netip.Addr{}, false
	}
	matched := containsAddr(b.cidrs, addr)
	switch b.mode {
	case AllowList:
		return addr, matched
	case DenyList:
		return addr, !matched
	}
	return addr, false
}

func containsAddr(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func parsePrefixes(raw []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		p, err := netip.ParsePrefix(s)
		if err != nil {
			addr, addrErr := netip.ParseAddr(s)
			if addrErr != nil {
				return nil, fmt.Errorf("%q: %w", s, err)
			}
			p = netip.PrefixFrom(addr, addr.BitLen())
		}
		out = append(out, p.Masked())
	}
	return out, nil
}
