// Package contextx carries per-request values (actor, request ID) through
// the request context, so middleware further down the queue can read what
// earlier middleware established.
package contextx

// contextKey is unexported so keys cannot collide with other packages.
type contextKey int

const (
	actorKey contextKey = iota
	requestIDKey
)
