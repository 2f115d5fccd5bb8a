package interceptors

import (
	"net/http"

	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrQueue/auth"
	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
	"github.com/Keksclan/goRawrQueue/policy"
)

// authError keeps gRPC status errors and turns anything else into
// Unauthenticated.
func authError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return errUnauthenticated
}

// Auth calls fn before delegating and forwards the request fn returns.
//
// With a resolver, paths whose group has AuthRequired unset are passed
// through without calling fn. Paths that match no group are always
// authenticated.
func Auth(fn auth.AuthFunc, r *policy.Resolver) pipeline.Middleware {
	return pipeline.Named("auth", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		if m, ok := r.ResolveRequest(req); ok && !m.Policy.AuthRequired {
			return next.Handle(req), nil
		}
		authed, err := fn(req)
		if err != nil {
			return message.Response{}, authError(err)
		}
		if authed == nil {
			authed = req
		}
		return next.Handle(authed), nil
	}))
}
