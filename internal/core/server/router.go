package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"resident-portal/internal/core/logger"
)

// NewRouter returns a gin engine with panic recovery logged through zap and
// CORS restricted to the configured origins. onPanic writes the response.
func NewRouter(l *zap.Logger, allowedOrigins []string, onPanic gin.RecoveryFunc) *gin.Engine {
	r := gin.New()
	if onPanic == nil {
		r.Use(ginzap.RecoveryWithZap(l, true))
	} else {
		r.Use(ginzap.CustomRecoveryWithZap(l, true, onPanic))
	}

	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "X-Request-ID")
	cc.ExposeHeaders = []string{"X-Request-ID", "Retry-After", "X-Total-Count", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	cc.AllowCredentials = true
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cc.AllowCredentials = false
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = allowedOrigins
	}
	r.Use(cors.New(cc))
	return r
}

func BuildServer(addr string, handler http.Handler, l *zap.Logger, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20,
		ErrorLog:       logger.ToStdLogger(l, zapcore.WarnLevel),
	}
}

func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
