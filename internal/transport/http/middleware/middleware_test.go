package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/domain"
	"resident-portal/internal/ratelimit"
)

func init() { gin.SetMode(gin.TestMode) }

type stubResolver map[string]*domain.Profile

func (s stubResolver) Resolve(_ context.Context, tok string) (*domain.Profile, error) {
	if p, ok := s[tok]; ok {
		return p, nil
	}
	return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "Invalid token")
}

func serve(r *gin.Engine, method, path, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.7:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthGates(t *testing.T) {
	res := stubResolver{
		"admin": {Base: domain.Base{ID: "1"}, Role: domain.RoleAdmin},
		"user":  {Base: domain.Base{ID: "2"}, Role: domain.RoleResident},
	}
	r := gin.New()
	r.GET("/soft", OptionalAuth(res), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyUserID)) })
	r.GET("/hard", RequireAuth(res), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRole)) })
	r.GET("/admin", RequireAuth(res), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		path, token string
		status      int
		code        string
	}{
		{"/soft", "", http.StatusOK, ""},
		{"/soft", "bogus", http.StatusOK, ""},
		{"/hard", "", http.StatusUnauthorized, apperr.CodeNoToken},
		{"/hard", "bogus", http.StatusUnauthorized, apperr.CodeInvalidToken},
		{"/hard", "user", http.StatusOK, ""},
		{"/admin", "user", http.StatusForbidden, apperr.CodeForbidden},
		{"/admin", "admin", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		w, body := serve(r, http.MethodGet, tc.path, tc.token)
		if w.Code != tc.status || (tc.code != "" && body["code"] != tc.code) {
			t.Errorf("%s with %q: %d %v", tc.path, tc.token, w.Code, body)
		}
	}
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration, time.Time) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("down")
}

func TestRateLimitMiddleware(t *testing.T) {
	l := ratelimit.New(ratelimit.NewMemoryStore(), "t:", 2, time.Minute)
	r := gin.New()
	r.GET("/", RateLimit(l, "test", zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w, _ := serve(r, http.MethodGet, "/", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i+1, w.Code)
		}
	}
	w, body := serve(r, http.MethodGet, "/", "")
	if w.Code != http.StatusTooManyRequests || body["code"] != apperr.CodeRateLimited {
		t.Fatalf("3rd: %d %v", w.Code, body)
	}
	if ra, _ := body["retryAfter"].(float64); ra < 1 || w.Header().Get("Retry-After") == "" {
		t.Fatalf("retry hint missing: %v %q", body["retryAfter"], w.Header().Get("Retry-After"))
	}

	open := gin.New()
	open.GET("/", RateLimit(ratelimit.New(failingStore{}, "f:", 1, time.Minute), "test", zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		if w, _ := serve(open, http.MethodGet, "/", ""); w.Code != http.StatusOK {
			t.Fatalf("store failure should fail open, got %d", w.Code)
		}
	}
}

func TestTimeoutAnswers504(t *testing.T) {
	r := gin.New()
	r.GET("/", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	if w, body := serve(r, http.MethodGet, "/", ""); w.Code != http.StatusGatewayTimeout || body["code"] != "TIMEOUT" {
		t.Fatalf("got %d %v", w.Code, body)
	}
}

func TestRequestIDSanitized(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	for in, keep := range map[string]bool{"abc-123.x_y": true, "bad id\r\n": false, "": false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if in != "" {
			req.Header[KeyRequestID] = []string{in}
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got := w.Header().Get(KeyRequestID)
		if (got == in) != keep || got == "" || w.Body.String() != got {
			t.Errorf("in %q: header %q body %q", in, got, w.Body)
		}
	}
}
