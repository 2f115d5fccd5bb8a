// Package pipeline implements queue-driven middleware dispatch.
//
// A [Handler] owns a private queue of [Middleware]. Each call to
// [Handler.Handle] dequeues the next middleware and runs it with the handler
// itself as continuation, so a chain A, B, C behaves like nested calls
// A(B(C)): request-side work happens in enqueue order and response-side work
// in reverse. A middleware that fails (returns an error or panics) is turned
// into an error response and no further middleware is dispatched.
//
//	h := pipeline.NewHandler([]pipeline.Middleware{auth, logger, app})
//	resp := h.Handle(req)
//
// A Handler serves exactly one request. It is not safe for concurrent use.
package pipeline

import (
	"log/slog"
	"net/http"

	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/queue"
)

// Handler drives one dispatch pass over its middleware queue.
type Handler struct {
	queue    *queue.Queue[Middleware]
	request  *http.Request
	response message.Response
	fault    *ChainFault

	logger   *slog.Logger
	observer Observer
}

// NewHandler builds a handler whose queue holds mws in order. The handler
// starts with a default "200 OK" response, so an empty list is a valid
// pipeline, and with a default GET / request unless [WithRequest] is given.
func NewHandler(mws []Middleware, opts ...Option) *Handler {
	h := &Handler{
		queue:    queue.New(mws...),
		request:  message.DefaultRequest(),
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Run dispatches req through a fresh handler built from mws.
func Run(req *http.Request, mws ...Middleware) message.Response {
	return NewHandler(mws).Handle(req)
}

// Handle implements [Continuation]. A non-nil req replaces the stored
// request. If middleware remain and no fault has occurred, the next one is
// dequeued and run; its result becomes the current response. Handle always
// returns the current response.
func (h *Handler) Handle(req *http.Request) message.Response {
	if req != nil {
		h.request = req
	}
	if h.fault != nil || h.queue.Len() == 0 {
		return h.response
	}
	mw, err := h.queue.Dequeue()
	if err != nil {
		panic(fatal{err})
	}
	h.response = h.dispatch(mw)
	return h.response
}

func (h *Handler) sealed() {}

// dispatch runs mw inside the fault boundary.
func (h *Handler) dispatch(mw Middleware) (resp message.Response) {
	name := NameOf(mw)
	h.observer.Dispatched(name)

	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(fatal); ok {
				panic(f)
			}
			resp = h.fail(name, panicError(r))
		}
	}()

	resp, err := mw.Process(h.request, h)
	if err != nil {
		return h.fail(name, err)
	}
	return resp
}

// fail records a fault and returns the error response for it. Once a fault
// is recorded the handler stops dequeuing.
func (h *Handler) fail(name string, err error) message.Response {
	f := newChainFault(name, err)
	h.fault = f
	h.logger.Error("middleware fault",
		"middleware", f.Middleware,
		"code", f.Code,
		"status", f.Status,
		"error", f.Err,
		"pending", h.queue.Len(),
	)
	h.observer.Faulted(f)
	return f.Response()
}

// Pending returns the number of middleware not yet dispatched.
func (h *Handler) Pending() int { return h.queue.Len() }

// Request returns the current request.
func (h *Handler) Request() *http.Request { return h.request }

// Response returns the current response.
func (h *Handler) Response() message.Response { return h.response }

// Fault returns the most recent fault, or nil if every middleware succeeded.
func (h *Handler) Fault() *ChainFault { return h.fault }

// Responder writes a response to a transport. It matches respond.Responder.
type Responder interface {
	Respond(resp message.Response) error
}

// Respond hands the current response to r and returns its error unchanged.
func (h *Handler) Respond(r Responder) error {
	return r.Respond(h.response)
}

// fatal marks panics that must escape the fault boundary.
type fatal struct{ error }
