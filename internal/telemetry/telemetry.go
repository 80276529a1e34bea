package telemetry

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Telemetry owns the process metrics registry.
type Telemetry struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	logger   *zap.Logger
}

func NewTelemetry(logger *zap.Logger) (*Telemetry, error) {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ytcatalog_http_requests_total",
		Help: "HTTP requests served, by route, method and status.",
	}, []string{"route", "method", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytcatalog_http_request_duration_seconds",
		Help:    "HTTP request latency, by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	for _, c := range []prometheus.Collector{
		requests,
		latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	logger.Named("telemetry").Info("metrics registry ready")
	return &Telemetry{registry: registry, requests: requests, latency: latency, logger: logger}, nil
}

// Middleware records one sample per request, labelled with the matched route
// pattern rather than the raw path.
func (t *Telemetry) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		route := c.Route().Path
		method := c.Method()
		t.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		t.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (t *Telemetry) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
}

func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}
