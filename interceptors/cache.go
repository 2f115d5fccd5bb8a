package interceptors

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/Keksclan/goRawrQueue/cache"
	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
	"github.com/Keksclan/goRawrQueue/policy"
)

// CacheHeader reports whether a response was served from the cache.
const CacheHeader = "X-Cache"

var errUncacheable = errors.New("response not cacheable")

// cacheKey identifies a response by method, host and request URI. When an
// actor is attached the key is scoped to its tenant and subject, so one
// caller's response is never served to another. ok is false for requests
// that carry credentials without an authenticated actor.
func cacheKey(req *http.Request) (key string, ok bool) {
	key = "resp:" + req.Method + ":" + req.Host + req.URL.RequestURI()
	if a, found := contextx.ActorFromContext(req.Context()); found {
		return key + "|actor:" + strconv.Quote(a.Tenant) + ":" + strconv.Quote(a.Subject), true
	}
	return key, req.Header.Get("Authorization") == ""
}

// cacheable admits 200 responses that do not set cookies or forbid shared
// caching.
func cacheable(resp message.Response) bool {
	if resp.Status() != http.StatusOK {
		return false
	}
	if resp.HeaderLine("Set-Cookie") != "" {
		return false
	}
	cc := strings.ToLower(resp.HeaderLine("Cache-Control"))
	return !strings.Contains(cc, "no-store") && !strings.Contains(cc, "private")
}

// Cache serves GET and HEAD responses from c. A hit is answered without
// delegating. On a miss the rest of the pipeline runs once per key, however
// many requests are waiting on it, and a cacheable result is stored for ttl.
//
// Entries are kept per authenticated actor. Requests with an Authorization
// header but no actor bypass the cache.
//
// With a resolver, a group's CacheTTL overrides ttl; a negative CacheTTL
// disables caching for the group.
func Cache(c cache.Cache, ttl time.Duration, r *policy.Resolver) pipeline.Middleware {
	return pipeline.Named("cache", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			return next.Handle(req), nil
		}
		entryTTL := ttl
		if m, ok := r.ResolveRequest(req); ok && m.Policy.CacheTTL != 0 {
			entryTTL = m.Policy.CacheTTL
		}
		key, ok := cacheKey(req)
		if entryTTL < 0 || !ok {
			return next.Handle(req), nil
		}

		var (
			loaded bool
			fresh  message.Response
		)
		raw, err := c.GetOrSet(req.Context(), key, entryTTL, func(context.Context) ([]byte, error) {
			loaded = true
			fresh = next.Handle(req)
			if !cacheable(fresh) {
				return nil, errUncacheable
			}
			return json.Marshal(fresh.Snapshot())
		})
		if loaded {
			return fresh.WithHeader(CacheHeader, "MISS"), nil
		}
		if err == nil {
			var snap message.Snapshot
			if err = json.Unmarshal(raw, &snap); err == nil {
				return message.FromSnapshot(snap).WithHeader(CacheHeader, "HIT"), nil
			}
		}
		// The shared load produced nothing usable for this caller.
		return next.Handle(req).WithHeader(CacheHeader, "MISS"), nil
	}))
}
