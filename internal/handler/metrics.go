package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the Convora backend.
var Metrics = struct {
	VotesTotal        *prometheus.CounterVec
	QuestionsCreated  prometheus.Counter
	WSSessions        prometheus.Gauge
	BroadcastDuration prometheus.Histogram
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	DBPoolActive      prometheus.GaugeFunc
	DBPoolIdle        prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convora_votes_total",
			Help: "Total vote submissions handled, by outcome.",
		},
		[]string{"result"},
	)

	Metrics.QuestionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "convora_questions_created_total",
			Help: "Total questions created over websocket sessions.",
		},
	)

	Metrics.WSSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "convora_ws_sessions",
			Help: "Number of websocket sessions currently connected.",
		},
	)

	Metrics.BroadcastDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "convora_broadcast_duration_seconds",
			Help:    "Duration of snapshot recompute and fanout after a mutation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "convora_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "convora_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "convora_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "convora_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.VotesTotal,
		Metrics.QuestionsCreated,
		Metrics.WSSessions,
		Metrics.BroadcastDuration,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case len(path) > 22 && path[:22] == "/api/discussions/topic":
		return "/api/discussions/topic/:topic/questions"
	case len(path) > 17 && path[:17] == "/api/discussions/":
		return "/api/discussions/:id"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
