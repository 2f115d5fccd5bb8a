package message

import (
	"context"
	"net/http"
)

// WithRequestHeader returns a shallow copy of r in which name is set to
// value. r itself is left untouched.
func WithRequestHeader(r *http.Request, name, value string) *http.Request {
	c := r.Clone(r.Context())
	c.Header.Set(name, value)
	return c
}

// DefaultRequest returns the request a handler starts from when none was
// supplied: GET / over HTTP/1.1 with a background context.
func DefaultRequest() *http.Request {
	r, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
	if err != nil {
		// "/" is always a valid target.
		panic(err)
	}
	return r
}
