package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	generatedBytes   *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "companion_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "companion_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"}),
		generatedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "companion_generated_bytes_total",
			Help: "Bytes of generated media written to disk, by kind.",
		}, []string{"kind"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "companion_upstream_failures_total",
			Help: "Failed calls to external AI services, by service.",
		}, []string{"service"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.generatedBytes,
		m.upstreamFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records every request against its route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Labels outlive the request; fasthttp reuses the buffers behind c.Method().
		method := utils.CopyString(c.Method())
		route := utils.CopyString(c.Route().Path)
		status := StatusOf(c, err)

		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// StatusOf is the status a request will be answered with once the app
// ErrorHandler has seen err.
func StatusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if e, ok := err.(*fiber.Error); ok {
		return e.Code
	}
	return fiber.StatusInternalServerError
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ObserveGenerated(kind string, n int) {
	if m == nil {
		return
	}
	m.generatedBytes.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ObserveUpstreamFailure(service string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(service).Inc()
}
