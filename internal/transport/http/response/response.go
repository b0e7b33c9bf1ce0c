package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
)

// ErrorBody is the JSON every failed request answers with.
type ErrorBody struct {
	Error      string              `json:"error"`
	Code       string              `json:"code,omitempty"`
	Details    []apperr.FieldError `json:"details,omitempty"`
	RetryAfter int                 `json:"retryAfter,omitempty"`
	Cause      string              `json:"cause,omitempty"`
	RequestID  string              `json:"requestId,omitempty"`
}

func OK(c *gin.Context, data any) { c.JSON(http.StatusOK, data) }

func Created(c *gin.Context, data any) { c.JSON(http.StatusCreated, data) }

// List writes items as a bare array and the unpaged total in X-Total-Count.
func List[T any](c *gin.Context, items []T, total int64) {
	if items == nil {
		items = []T{}
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, items)
}

// Fail converts err into ErrorBody and aborts. Internal causes are attached to
// the gin context for the access log and only echoed outside release mode;
// 5xx bodies carry the request id so reports can be matched to log lines.
func Fail(c *gin.Context, err error) {
	ae := apperr.From(err)
	body := ErrorBody{Error: ae.Msg, Code: ae.Code, Details: ae.Details, RetryAfter: ae.RetryAfter}
	if body.Error == "" {
		body.Error = http.StatusText(ae.Status)
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		body.RequestID = c.Writer.Header().Get("X-Request-ID")
		if gin.Mode() != gin.ReleaseMode && ae.Err != nil {
			body.Cause = ae.Err.Error()
		}
	}
	if ae.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(ae.RetryAfter))
	}
	c.AbortWithStatusJSON(ae.Status, body)
}
