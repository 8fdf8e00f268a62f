package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	provRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provchain_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	provRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provchain_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	provAnchorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provchain_anchors_total",
		Help: "Total anchoring attempts by stage and result.",
	}, []string{"stage", "result"})

	provStorageProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provchain_storage_probes_total",
		Help: "Total storage backend health probes by result.",
	}, []string{"result"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		provRequestsTotal.WithLabelValues(method, path, status).Inc()
		provRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordAnchor records an anchoring attempt for a stage.
func RecordAnchor(stage string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	provAnchorsTotal.WithLabelValues(stage, result).Inc()
}

// RecordStorageProbe records a storage backend health probe result.
func RecordStorageProbe(success bool) {
	if success {
		provStorageProbesTotal.WithLabelValues("success").Inc()
	} else {
		provStorageProbesTotal.WithLabelValues("failure").Inc()
	}
}
