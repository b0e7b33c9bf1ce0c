package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "portal"

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "http", Name: "requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"route", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"},
	)
	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "http", Name: "rate_limited_total", Help: "Requests rejected by a rate limiter."},
		[]string{"limiter"},
	)
	authRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "auth", Name: "rejected_total", Help: "Requests refused by the auth gate, by error code."},
		[]string{"code"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, rateLimited, authRejected) }

// Metrics records request counts and latency labelled by the matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpReqTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
