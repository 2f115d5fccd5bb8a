// Package metrics exports Prometheus metrics for pipeline dispatch.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

const namespace = "rawrqueue"

// Collector records per-request and per-middleware metrics. It is both a
// middleware (request totals, durations, in-flight) and a
// [pipeline.Observer] (dispatches, faults).
type Collector struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inflight   prometheus.Gauge
	dispatched *prometheus.CounterVec
	faults     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collector's metrics with reg. A nil reg uses the
// default Prometheus registry.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests that completed the pipeline, by method and status.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent in the pipeline after the metrics middleware.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Requests currently inside the pipeline.",
		}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "middleware_dispatched_total",
			Help:      "Middleware dequeued and run, by middleware name.",
		}, []string{"middleware"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "middleware_faults_total",
			Help:      "Middleware faults turned into error responses, by middleware and status.",
		}, []string{"middleware", "status"}),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, col := range []prometheus.Collector{c.requests, c.duration, c.inflight, c.dispatched, c.faults} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c, nil
}

// Dispatched implements pipeline.Observer.
func (c *Collector) Dispatched(name string) {
	c.dispatched.WithLabelValues(name).Inc()
}

// Faulted implements pipeline.Observer.
func (c *Collector) Faulted(f *pipeline.ChainFault) {
	c.faults.WithLabelValues(f.Middleware, strconv.Itoa(f.Status)).Inc()
}

// Middleware times everything queued after it.
func (c *Collector) Middleware() pipeline.Middleware {
	return pipeline.Named("metrics", pipeline.MiddlewareFunc(func(req *http.Request, next pipeline.Continuation) (message.Response, error) {
		c.inflight.Inc()
		defer c.inflight.Dec()

		start := time.Now()
		resp := next.Handle(req)
		c.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
		c.requests.WithLabelValues(req.Method, strconv.Itoa(resp.Status())).Inc()
		return resp, nil
	}))
}

// Handler serves the registry the collector was registered with.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
