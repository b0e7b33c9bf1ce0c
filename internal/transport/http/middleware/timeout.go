package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
	resp "resident-portal/internal/transport/http/response"
)

// Timeout puts a deadline on the request context.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			resp.Fail(c, apperr.New(http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"))
		}
	}
}
