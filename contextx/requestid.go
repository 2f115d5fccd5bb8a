package contextx

import "context"

// RequestIDHeader is the header used to carry request IDs in and out of the
// pipeline.
const RequestIDHeader = "X-Request-ID"

// WithRequestID returns a derived context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
