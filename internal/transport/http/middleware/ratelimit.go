package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/ratelimit"
	resp "resident-portal/internal/transport/http/response"
)

// RateLimit applies a fixed-window limiter keyed by client IP. A failing store
// lets the request through.
func RateLimit(l *ratelimit.Limiter, name string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limit store", zap.String("limiter", name), zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			rateLimited.WithLabelValues(name).Inc()
			resp.Fail(c, apperr.TooManyRequests("Too many requests, please try again later", d.RetryAfter))
			return
		}
		c.Next()
	}
}
