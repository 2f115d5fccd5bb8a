package pipeline

import (
	"log/slog"
	"net/http"
)

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used to report faults. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver registers o to be told about each dispatched middleware and
// each fault.
func WithObserver(o Observer) Option {
	return func(h *Handler) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithRequest seeds the stored request, so that a first Handle(nil) has
// something to dispatch.
func WithRequest(r *http.Request) Option {
	return func(h *Handler) {
		if r != nil {
			h.request = r
		}
	}
}

// Observer receives dispatch events. Implementations must be safe for
// concurrent use when shared across handlers.
type Observer interface {
	// Dispatched is called right before a middleware runs.
	Dispatched(middleware string)
	// Faulted is called after a fault has been converted to a response.
	Faulted(f *ChainFault)
}

type nopObserver struct{}

func (nopObserver) Dispatched(string)   {}
func (nopObserver) Faulted(*ChainFault) {}
