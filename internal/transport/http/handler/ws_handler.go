package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/realtime"
	mdw "resident-portal/internal/transport/http/middleware"
	resp "resident-portal/internal/transport/http/response"
)

// WSHandler authenticates the handshake and hands the connection to the hub.
type WSHandler struct {
	hub      *realtime.Hub
	resolver mdw.TokenResolver
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, r mdw.TokenResolver, allowedOrigins []string, l *zap.Logger) *WSHandler {
	h := &WSHandler{hub: hub, resolver: r, log: l}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func (h *WSHandler) Serve(c *gin.Context) {
	tok := c.Query("token")
	if tok == "" {
		if ah := c.GetHeader("Authorization"); len(ah) > 7 && strings.EqualFold(ah[:7], "Bearer ") {
			tok = strings.TrimSpace(ah[7:])
		}
	}
	if tok == "" {
		resp.Fail(c, apperr.Unauthorized(apperr.CodeNoToken, "Authentication required"))
		return
	}
	p, err := h.resolver.Resolve(c.Request.Context(), tok)
	if err != nil {
		resp.Fail(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered
		h.log.Debug("ws upgrade failed", zap.Error(err))
		c.Abort()
		return
	}
	h.hub.Attach(conn, realtime.Identity{ID: p.ID, Email: p.Email, Role: string(p.Role)})
}

func originChecker(allowed []string) func(*http.Request) bool {
	all := len(allowed) == 0
	set := map[string]bool{}
	for _, o := range allowed {
		if o == "*" {
			all = true
		}
		set[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || all {
			return true
		}
		if set[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
