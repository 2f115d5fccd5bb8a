package interceptors

import (
	"net/http"
	"sync"

	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
	"github.com/Keksclan/goRawrQueue/policy"
	"github.com/Keksclan/goRawrQueue/ratelimit"
)

// rateLimitState holds the global limiter and the per-group limiters built
// lazily from resolved policies.
type rateLimitState struct {
	global   *ratelimit.Limiter
	resolver *policy.Resolver

	mu     sync.Mutex
	groups map[string]*ratelimit.Limiter
}

// limiterFor returns the group limiter when the path resolves to a group
// with a RateLimit rule, the global limiter otherwise. It returns nil when
// neither applies.
func (s *rateLimitState) limiterFor(req *http.Request) *ratelimit.Limiter {
	m, ok := s.resolver.ResolveRequest(req)
	if !ok || m.Policy.RateLimit == nil {
		return s.global
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.groups[m.Group]; ok {
		return l
	}
	l := ratelimit.PerWindow(m.Policy.RateLimit.Rate, m.Policy.RateLimit.Window)
	s.groups[m.Group] = l
	return l
}

// RateLimit rejects requests with ResourceExhausted (429) once the
// applicable limiter is exhausted. Groups with a RateLimit policy get their
// own limiter; everything else shares global. A nil global leaves
// unmatched paths unlimited.
func RateLimit(global *ratelimit.Limiter, r *policy.Resolver) pipeline.Middleware {
	st := &rateLimitState{global: global, resolver: r, groups: make(map[string]*ratelimit.Limiter)}
	return pipeline.Named("ratelimit", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		if l := st.limiterFor(req); l != nil && !l.Allow() {
			return message.Response{}, errRateLimited
		}
		return next.Handle(req), nil
	}))
}
