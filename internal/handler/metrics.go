package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the mtop backend. Collectors
// are nil until InitMetrics runs; the record helpers below tolerate that.
var Metrics = struct {
	VotesTotal        *prometheus.CounterVec
	PurchasesTotal    *prometheus.CounterVec
	SharesTotal       *prometheus.CounterVec
	SubmissionsTotal  *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	DBPoolActive      prometheus.GaugeFunc
	DBPoolIdle        prometheus.GaugeFunc
	RequestsInFlight  prometheus.Gauge
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	ReconcileDuration prometheus.Histogram
	CounterDrift      prometheus.Counter
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtop_votes_total",
			Help: "Vote attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	Metrics.PurchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtop_purchases_total",
			Help: "Purchase confirmations, by source (api, queue) and outcome.",
		},
		[]string{"source", "outcome"},
	)

	Metrics.SharesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtop_shares_total",
			Help: "Share reward claims, by outcome.",
		},
		[]string{"outcome"},
	)

	Metrics.SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtop_submissions_total",
			Help: "Meme submissions, by outcome.",
		},
		[]string{"outcome"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtop_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtop_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mtop_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mtop_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	Metrics.ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtop_counter_reconcile_duration_seconds",
			Help:    "Duration of meme counter reconciliations.",
			Buckets: prometheus.DefBuckets,
		},
	)

	Metrics.CounterDrift = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mtop_counter_drift_total",
			Help: "Reconciliations that found cached meme counters out of step with the vote ledger.",
		},
	)

	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "mtop_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "mtop_db_connection_pool_idle",
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
		Metrics.PurchasesTotal,
		Metrics.SharesTotal,
		Metrics.SubmissionsTotal,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.ReconcileDuration,
		Metrics.CounterDrift,
	)
}

func countOutcome(vec *prometheus.CounterVec, labels ...string) {
	if vec != nil {
		vec.WithLabelValues(labels...).Inc()
	}
}

// RecordCacheHit and RecordCacheMiss are installed as cache callbacks.
func RecordCacheHit() {
	if Metrics.CacheHits != nil {
		Metrics.CacheHits.Inc()
	}
}

func RecordCacheMiss() {
	if Metrics.CacheMisses != nil {
		Metrics.CacheMisses.Inc()
	}
}

// ObserveReconcile is installed as the reconcile observer.
func ObserveReconcile(d time.Duration, drifted bool) {
	if Metrics.ReconcileDuration != nil {
		Metrics.ReconcileDuration.Observe(d.Seconds())
	}
	if drifted && Metrics.CounterDrift != nil {
		Metrics.CounterDrift.Inc()
	}
}

// RecordQueuedPurchase counts outcomes of purchase events consumed from the queue.
func RecordQueuedPurchase(outcome string) {
	countOutcome(Metrics.PurchasesTotal, "queue", outcome)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" || Metrics.RequestsInFlight == nil {
			return c.Next()
		}

		// Copy path and method into owned strings before c.Next(); Fiber
		// returns slices backed by the fasthttp buffer which can be reused.
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
	case strings.HasPrefix(path, "/api/memes/"):
		rest := strings.TrimPrefix(path, "/api/memes/")
		if _, sub, ok := strings.Cut(rest, "/"); ok {
			return "/api/memes/:memeId/" + sub
		}
		return "/api/memes/:memeId"
	case strings.HasPrefix(path, "/api/prompts/") && path != "/api/prompts/today":
		return "/api/prompts/:promptId"
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
