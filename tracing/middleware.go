// Package tracing opens an OpenTelemetry server span around the part of the
// pipeline queued after it. Tracing is optional: it is only active when a
// [Config] is passed to the WithOpenTelemetry server option.
package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

const instrumentation = "github.com/Keksclan/goRawrQueue/tracing"

// Config holds the OpenTelemetry wiring used by [Middleware].
type Config struct {
	// TracerProvider supplies the Tracer. Nil means otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// Propagators extracts the caller's trace context from request headers.
	// Nil means otel.GetTextMapPropagator().
	Propagators propagation.TextMapPropagator
}

func (c *Config) tracer() trace.Tracer {
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(instrumentation)
}

func (c *Config) propagators() propagation.TextMapPropagator {
	if c.Propagators != nil {
		return c.Propagators
	}
	return otel.GetTextMapPropagator()
}

// Middleware returns a middleware that starts a server span named
// "METHOD path", hands the downstream middleware a request carrying the
// span's context, and records the final status. If cfg is nil the
// middleware only delegates.
func Middleware(cfg *Config) pipeline.Middleware {
	if cfg == nil {
		return pipeline.Named("tracing", pipeline.Transform{})
	}
	return pipeline.Named("tracing", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		ctx := cfg.propagators().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		ctx, span := cfg.tracer().Start(ctx, req.Method+" "+req.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		span.SetAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		)

		resp := next.Handle(req.WithContext(ctx))
		recordStatus(span, resp)
		return resp, nil
	}))
}

// recordStatus marks 5xx responses as errors. A Warning header means a
// downstream middleware faulted; it is attached as an event.
func recordStatus(span trace.Span, resp message.Response) {
	code := resp.Status()
	span.SetAttributes(attribute.Int("http.response.status_code", code))
	if w := resp.HeaderLine("Warning"); w != "" {
		span.AddEvent("middleware fault", trace.WithAttributes(attribute.String("warning", w)))
	}
	if code >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(code))
		return
	}
	span.SetStatus(codes.Unset, "")
}
