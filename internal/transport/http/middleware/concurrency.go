package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"resident-portal/internal/core/apperr"
	resp "resident-portal/internal/transport/http/response"
)

// ConcurrencyLimit caps requests in flight to protect the database pool.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			resp.Fail(c, apperr.New(http.StatusServiceUnavailable, "SERVER_BUSY", "Server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
