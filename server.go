package gorawrqueue

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Keksclan/goRawrQueue/cache"
	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/respond"
)

// Server is an http.Handler that runs every request through a fresh
// pipeline built from its middleware list. Execution order is fixed by the
// Order constants, not by the order options are passed.
//
// The middleware list can be replaced at runtime with [Server.Reload];
// requests already in flight finish on the list they started with.
type Server struct {
	chain atomic.Pointer[chain]
}

// NewServer builds a Server from opts.
//
//	srv, err := gorawrqueue.NewServer(
//		gorawrqueue.WithRequestID(),
//		gorawrqueue.WithRateLimitGlobal(500, 100),
//		gorawrqueue.WithCacheL1(64<<20),
//		gorawrqueue.WithTerminal(app),
//	)
func NewServer(opts ...Option) (*Server, error) {
	ch, err := newConfig(opts).build()
	if err != nil {
		return nil, err
	}
	s := &Server{}
	s.chain.Store(ch)
	return s, nil
}

// reloadGrace is how long caches of a replaced list stay open for requests
// still running on it.
const reloadGrace = 30 * time.Second

// Reload replaces the middleware list with one built from opts. A response
// cache created by the options starts cold; the previous one is closed after
// a grace period. On error the running list is kept.
func (s *Server) Reload(opts ...Option) error {
	ch, err := newConfig(opts).build()
	if err != nil {
		return err
	}
	if old := s.chain.Swap(ch); old != nil && len(old.closers) > 0 {
		time.AfterFunc(reloadGrace, old.close)
	}
	return nil
}

// Close releases the caches the server created.
func (s *Server) Close() {
	if ch := s.chain.Load(); ch != nil {
		ch.close()
	}
}

// Dispatch runs r through the pipeline and returns the response without
// writing it anywhere.
func (s *Server) Dispatch(r *http.Request) message.Response {
	return s.chain.Load().handler().Handle(r)
}

// ServeHTTP dispatches r and writes the response to w.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ch := s.chain.Load()
	h := ch.handler()
	h.Handle(r)

	tw := respond.NewTracker(w)
	if err := h.Respond(respond.NewHTTP(tw)); err != nil {
		if errors.Is(err, respond.ErrTransportCommitted) {
			ch.logger.WarnContext(r.Context(), "response already committed", "path", r.URL.Path)
			return
		}
		ch.logger.DebugContext(r.Context(), "write response", "path", r.URL.Path, "status", tw.Status(), "bytes", tw.Bytes(), "error", err)
	}
}

// Cache returns the response cache in use, or nil when caching is off.
func (s *Server) Cache() cache.Cache {
	return s.chain.Load().cache
}

// MetricsHandler serves the registry of the collector passed to
// WithMetrics, or the default Prometheus registry without one.
func (s *Server) MetricsHandler() http.Handler {
	if m := s.chain.Load().metrics; m != nil {
		return m.Handler()
	}
	return promhttp.Handler()
}
