// Package policy groups request paths and attaches per-group rate limits,
// authentication requirements and cache lifetimes to them.
package policy

import "net/http"

// Match is the result of a successful resolution.
type Match struct {
	Group  string
	Policy Policy
}

// Resolver maps request paths to the best-matching group.
type Resolver struct {
	groups []*GroupBuilder
}

// NewResolver returns a resolver over groups. Registration order matters
// only for ties.
func NewResolver(groups ...*GroupBuilder) *Resolver {
	return &Resolver{groups: groups}
}

// Resolve finds the group for path:
//   - exact beats prefix, which beats regex;
//   - among the same kind the longer match wins;
//   - on a full tie the group registered first wins.
//
// A nil Resolver never matches.
func (res *Resolver) Resolve(path string) (Match, bool) {
	if res == nil {
		return Match{}, false
	}
	var (
		best     *GroupBuilder
		bestKind matchKind
		bestLen  = -1
	)
	for _, g := range res.groups {
		for i := range g.rules {
			r := &g.rules[i]
			ok, n := r.match(path)
			if !ok {
				continue
			}
			if best == nil || r.kind < bestKind || (r.kind == bestKind && n > bestLen) {
				best, bestKind, bestLen = g, r.kind, n
			}
		}
	}
	if best == nil {
		return Match{}, false
	}
	m := Match{Group: best.name}
	if best.policy != nil {
		m.Policy = *best.policy
	}
	return m, true
}

// ResolveRequest resolves r by its URL path.
func (res *Resolver) ResolveRequest(r *http.Request) (Match, bool) {
	return res.Resolve(r.URL.Path)
}
