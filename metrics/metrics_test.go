package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

func newCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, reg
}

func run(c *Collector, req *http.Request, mws ...pipeline.Middleware) message.Response {
	h := pipeline.NewHandler(append([]pipeline.Middleware{c.Middleware()}, mws...), pipeline.WithObserver(c))
	return h.Handle(req)
}

func TestCollector_CountsRequestsAndDispatches(t *testing.T) {
	c, _ := newCollector(t)
	ok := pipeline.Named("app", pipeline.MiddlewareFunc(func(*http.Request, pipeline.Continuation) (message.Response, error) {
		return message.Text(http.StatusOK, "ok"), nil
	}))

	for range 3 {
		run(c, httptest.NewRequest(http.MethodGet, "/", nil), ok)
	}

	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "200")); got != 3 {
		t.Fatalf("requests_total{GET,200} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.dispatched.WithLabelValues("app")); got != 3 {
		t.Fatalf("dispatched{app} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.dispatched.WithLabelValues("metrics")); got != 3 {
		t.Fatalf("dispatched{metrics} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.inflight); got != 0 {
		t.Fatalf("in flight = %v after completion, want 0", got)
	}
	if n := testutil.CollectAndCount(c.duration); n != 1 {
		t.Fatalf("duration series = %d, want 1", n)
	}
}

func TestCollector_CountsFaults(t *testing.T) {
	c, _ := newCollector(t)
	bad := pipeline.Named("db", pipeline.MiddlewareFunc(func(*http.Request, pipeline.Continuation) (message.Response, error) {
		return message.Response{}, pipeline.NewFault(http.StatusServiceUnavailable, "down")
	}))
	never := pipeline.Named("never", pipeline.Transform{})

	resp := run(c, httptest.NewRequest(http.MethodPost, "/", nil), bad, never)
	if resp.Status() != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.Status())
	}

	if got := testutil.ToFloat64(c.faults.WithLabelValues("db", "503")); got != 1 {
		t.Fatalf("faults{db,503} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("POST", "503")); got != 1 {
		t.Fatalf("requests_total{POST,503} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.dispatched.WithLabelValues("never")); got != 0 {
		t.Fatalf("middleware after a fault was dispatched")
	}
}

func TestNew_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first New: %v", err)
	}
	_, err := New(reg)
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		t.Fatalf("second New err = %v, want AlreadyRegisteredError", err)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	c, _ := newCollector(t)
	run(c, httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "rawrqueue_requests_total") {
		t.Fatalf("metrics output missing rawrqueue_requests_total:\n%s", body)
	}
}
