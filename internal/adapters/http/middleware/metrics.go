package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledgerhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ledgerhub",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Business metrics, recorded by the handlers.
var (
	// MovementsTotal counts ledger movements by entry type and currency.
	MovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerhub",
			Subsystem: "ledger",
			Name:      "movements_total",
			Help:      "Total number of committed ledger movements",
		},
		[]string{"type", "currency"},
	)

	// MovementAmount tracks movement sizes in scaled integer units.
	MovementAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledgerhub",
			Subsystem: "ledger",
			Name:      "movement_amount_units",
			Help:      "Movement amounts in scaled integer units",
			Buckets:   prometheus.ExponentialBuckets(10_000, 10, 8),
		},
		[]string{"type", "currency"},
	)
)

// Metrics records per-request Prometheus metrics.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordMovement records one committed ledger movement.
func RecordMovement(entryType, currency string, units int64) {
	MovementsTotal.WithLabelValues(entryType, currency).Inc()
	MovementAmount.WithLabelValues(entryType, currency).Observe(float64(units))
}
