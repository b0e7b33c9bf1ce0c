package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/core/server"
	"resident-portal/internal/ratelimit"
	"resident-portal/internal/transport/http/ez"
	mdw "resident-portal/internal/transport/http/middleware"
	resp "resident-portal/internal/transport/http/response"
)

type Deps struct {
	Log            *zap.Logger
	AllowedOrigins []string
	Resolver       mdw.TokenResolver
	// General applies to every route except /metrics; nil disables it.
	General *ratelimit.Limiter

	RequestTimeout time.Duration
	MaxConcurrent  int64
	MaxBodyBytes   int64

	Health   gin.HandlerFunc
	Realtime gin.HandlerFunc
	WSPath   string

	UploadDir    string
	UploadPrefix string

	Modules *Registry
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, d.AllowedOrigins, func(c *gin.Context, err any) {
		resp.Fail(c, apperr.Internal("Internal server error", fmt.Errorf("panic: %v", err)))
	})
	r.Use(
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.General != nil {
		r.Use(mdw.RateLimit(d.General, "general", d.Log))
	}
	if d.Health != nil {
		r.GET("/health", d.Health)
	}
	// websocket upgrades stay outside the body and deadline limits
	if d.Realtime != nil && d.WSPath != "" {
		r.GET(d.WSPath, d.Realtime)
	}
	if d.UploadDir != "" && d.UploadPrefix != "" {
		r.Static(d.UploadPrefix, d.UploadDir)
	}

	api := r.Group("/api")
	if d.MaxBodyBytes > 0 {
		api.Use(mdw.MaxBodyBytes(d.MaxBodyBytes))
	}
	if d.RequestTimeout > 0 {
		api.Use(mdw.Timeout(d.RequestTimeout))
	}
	if d.MaxConcurrent > 0 {
		api.Use(mdw.ConcurrencyLimit(d.MaxConcurrent))
	}
	if d.Health != nil {
		api.GET("/health", d.Health)
	}

	authed := api.Group("")
	authed.Use(mdw.RequireAuth(d.Resolver))
	groups := ez.Groups{Public: api, Authed: authed, Admin: mdw.RequireAdmin()}

	if d.Modules != nil {
		d.Modules.MountAPI(groups)
		mountAdmin(authed, d.Modules)
	}
	return r
}
