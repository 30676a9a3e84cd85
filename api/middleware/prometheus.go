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
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	relationOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relation_operations_total",
			Help: "Total number of social graph operations",
		},
		[]string{"operation", "status", "service"},
	)

	relationOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relation_operation_duration_seconds",
			Help:    "Duration of social graph operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "service"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

// RecordRelationOperation пишет метрики операций над графом отношений
func RecordRelationOperation(operation, serviceName string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	relationOperationsTotal.WithLabelValues(operation, status, serviceName).Inc()
	relationOperationDuration.WithLabelValues(operation, serviceName).Observe(duration.Seconds())
}
