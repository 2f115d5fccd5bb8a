package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

// Logging writes one line per request once the rest of the pipeline has
// produced a response. 5xx responses log at Error, 4xx at Warn.
func Logging(logger *slog.Logger) pipeline.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return pipeline.Named("logging", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		start := time.Now()
		resp := next.Handle(req)

		level := slog.LevelInfo
		switch code := resp.Status(); {
		case code >= 500:
			level = slog.LevelError
		case code >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.Status()),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
			slog.Int("bytes", resp.Len()),
		}
		if id := contextx.RequestIDFromContext(req.Context()); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if w := resp.HeaderLine("Warning"); w != "" {
			attrs = append(attrs, slog.String("warning", w))
		}
		logger.LogAttrs(req.Context(), level, "http request", attrs...)
		return resp, nil
	}))
}
