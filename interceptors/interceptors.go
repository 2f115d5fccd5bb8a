// Package interceptors holds the built-in middleware a Server can enable.
// Each constructor returns a named [pipeline.Middleware]; rejections are
// gRPC status errors, which the pipeline maps to HTTP statuses.
package interceptors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Allocated once to avoid per-request allocations on the hot path.
var (
	errUnauthenticated = status.Error(codes.Unauthenticated, "unauthenticated")
	errBlocked         = status.Error(codes.PermissionDenied, "blocked")
	errRateLimited     = status.Error(codes.ResourceExhausted, "rate limit exceeded")
	errCircuitOpen     = status.Error(codes.Unavailable, "circuit open")
)
