package interceptors

import (
	"net/http"

	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
	"github.com/Keksclan/goRawrQueue/security"
)

// IPBlock rejects requests the blocker denies with PermissionDenied (403).
func IPBlock(b *security.IPBlocker) pipeline.Middleware {
	return pipeline.Named("ipblock", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		if _, ok := b.Evaluate(req); !ok {
			return message.Response{}, errBlocked
		}
		return next.Handle(req), nil
	}))
}
