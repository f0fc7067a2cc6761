package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// LifecycleTransitions counts archive/restore/purge attempts per entity kind.
	LifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Archive, restore and purge operations by entity and outcome",
		},
		[]string{"entity", "action", "outcome"},
	)

	registerOnce sync.Once
)

// Register adds the collectors to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDurationHistogram, LifecycleTransitions)
	})
}

// ObserveTransition records one lifecycle operation. n is the number of
// records affected; failures are recorded with n ignored.
func ObserveTransition(entity, action string, err error, n int) {
	if err != nil {
		LifecycleTransitions.WithLabelValues(entity, action, "error").Inc()
		return
	}
	LifecycleTransitions.WithLabelValues(entity, action, "ok").Add(float64(n))
}

// Middleware records request count and latency. The matched route template is
// used as the path label so ids do not explode cardinality.
func Middleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		RequestCounter.WithLabelValues(serviceName, c.Request.Method, path, status).Inc()
		RequestDurationHistogram.WithLabelValues(serviceName, c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
