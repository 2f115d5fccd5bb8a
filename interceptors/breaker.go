package interceptors

import (
	"net/http"

	"github.com/Keksclan/goRawrQueue/breaker"
	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

// Breaker rejects requests with Unavailable (503) while b is open. A 5xx
// from downstream, including a fault response, counts as a failure.
func Breaker(b *breaker.Breaker) pipeline.Middleware {
	return pipeline.Named("breaker", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		if !b.Allow() {
			return message.Response{}, errCircuitOpen
		}
		resp := next.Handle(req)
		if resp.Status() >= http.StatusInternalServerError {
			b.OnFailure()
		} else {
			b.OnSuccess()
		}
		return resp, nil
	}))
}
