package pipeline

import (
	"fmt"
	"net/http"

	"github.com/Keksclan/goRawrQueue/message"
)

// Continuation is the rest of the chain as seen by a middleware. Calling
// Handle dequeues and runs the next middleware and returns the response it
// produced. The interface is sealed: only the pipeline's own [Handler]
// satisfies it.
type Continuation interface {
	// Handle dispatches req to the remaining middleware. A nil req reuses
	// the request the handler already holds.
	Handle(req *http.Request) message.Response

	sealed()
}

// Middleware is one step of a pipeline. A middleware that takes part in the
// chain calls next.Handle at most once and returns the (possibly rewritten)
// result; one that never calls it becomes the terminal producer of the
// response and no later middleware runs.
//
// A non-nil error is a fault: the handler replaces the response with an
// error response and stops dispatching.
type Middleware interface {
	Process(req *http.Request, next Continuation) (message.Response, error)
}

// MiddlewareFunc adapts an ordinary function to the Middleware interface.
type MiddlewareFunc func(req *http.Request, next Continuation) (message.Response, error)

// Process calls f(req, next).
func (f MiddlewareFunc) Process(req *http.Request, next Continuation) (message.Response, error) {
	return f(req, next)
}

// Transform is the base middleware contract: rewrite the request, delegate
// exactly once, rewrite the response. A nil hook is the identity.
//
// Because delegation is a nested call, the request hooks of a chain run in
// enqueue order and the response hooks run in reverse.
type Transform struct {
	Request  func(*http.Request) (*http.Request, error)
	Response func(message.Response) (message.Response, error)
}

// Process implements Middleware.
func (t Transform) Process(req *http.Request, next Continuation) (message.Response, error) {
	if t.Request != nil {
		var err error
		if req, err = t.Request(req); err != nil {
			return message.Response{}, err
		}
	}
	resp := next.Handle(req)
	if t.Response != nil {
		return t.Response(resp)
	}
	return resp, nil
}

// namer is implemented by middleware that report their own name.
type namer interface {
	Name() string
}

type named struct {
	Middleware
	name string
}

func (n named) Name() string { return n.name }

// Named labels mw with name. The label appears in fault diagnostics, logs and
// metrics in place of the Go type name.
func Named(name string, mw Middleware) Middleware {
	return named{Middleware: mw, name: name}
}

// NameOf returns the diagnostic name of mw: its Name method when it has one,
// otherwise its Go type.
func NameOf(mw Middleware) string {
	if n, ok := mw.(namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", mw)
}
