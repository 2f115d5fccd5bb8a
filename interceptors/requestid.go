package interceptors

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

const maxRequestIDLen = 128

// validRequestID accepts short printable ASCII ids from clients.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestID reuses a well-formed incoming X-Request-ID or generates one,
// stores it in the request context and echoes it on the response.
func RequestID() pipeline.Middleware {
	return pipeline.Named("requestid", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		id := req.Header.Get(contextx.RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
			req = message.WithRequestHeader(req, contextx.RequestIDHeader, id)
		}
		req = req.WithContext(contextx.WithRequestID(req.Context(), id))

		resp := next.Handle(req)
		return resp.WithHeader(contextx.RequestIDHeader, id), nil
	}))
}
