// Package message holds the immutable HTTP response value carried through a
// pipeline, plus small helpers for deriving modified copies of requests.
//
// Requests are plain *http.Request values. Middleware that wants to change a
// request derives a copy (see [WithRequestHeader]) instead of mutating the one
// it was given.
package message

import (
	"bytes"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// DefaultProtocolVersion is the HTTP version reported by a Response that did
// not set one.
const DefaultProtocolVersion = "1.1"

// Response is an immutable HTTP response. Every With method returns a new
// value; the receiver is never modified. The zero value is a valid
// "200 OK" response with no headers and an empty body.
type Response struct {
	status int
	reason string
	proto  string
	header http.Header
	body   []byte
}

// New returns a response with the given status code and body.
func New(status int, body []byte) Response {
	return Response{status: status, body: bytes.Clone(body)}
}

// Text returns a response with a plain text body.
func Text(status int, body string) Response {
	return New(status, []byte(body)).
		WithHeader("Content-Type", "text/plain; charset=utf-8")
}

// Status returns the status code, 200 when unset.
func (r Response) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Reason returns the reason phrase. When none was set explicitly the
// standard text for the status code is used.
func (r Response) Reason() string {
	if r.reason != "" {
		return r.reason
	}
	return http.StatusText(r.Status())
}

// ProtocolVersion returns the HTTP version, e.g. "1.1".
func (r Response) ProtocolVersion() string {
	if r.proto == "" {
		return DefaultProtocolVersion
	}
	return r.proto
}

// Header returns a copy of the header map.
func (r Response) Header() http.Header {
	if r.header == nil {
		return http.Header{}
	}
	return r.header.Clone()
}

// HeaderNames returns the canonical header names in sorted order.
func (r Response) HeaderNames() []string {
	return slices.Sorted(maps.Keys(r.header))
}

// HeaderLine returns all values of name joined by ", ".
func (r Response) HeaderLine(name string) string {
	return strings.Join(r.header.Values(name), ", ")
}

// Body returns a copy of the body.
func (r Response) Body() []byte {
	return bytes.Clone(r.body)
}

// Len returns the body length in bytes.
func (r Response) Len() int {
	return len(r.body)
}

// WithStatus returns a copy with the given status code. An optional reason
// phrase overrides the standard one.
func (r Response) WithStatus(code int, reason ...string) Response {
	r.status = code
	r.reason = ""
	if len(reason) > 0 {
		r.reason = reason[0]
	}
	return r
}

// WithProtocolVersion returns a copy reporting the given HTTP version.
func (r Response) WithProtocolVersion(v string) Response {
	r.proto = v
	return r
}

// WithHeader returns a copy in which name is replaced by value.
func (r Response) WithHeader(name, value string) Response {
	r.header = r.Header()
	r.header.Set(name, value)
	return r
}

// WithAddedHeader returns a copy with value appended to name.
func (r Response) WithAddedHeader(name, value string) Response {
	r.header = r.Header()
	r.header.Add(name, value)
	return r
}

// WithoutHeader returns a copy without name.
func (r Response) WithoutHeader(name string) Response {
	r.header = r.Header()
	r.header.Del(name)
	return r
}

// WithBody returns a copy carrying body.
func (r Response) WithBody(body []byte) Response {
	r.body = bytes.Clone(body)
	return r
}
