package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/domain"
)

type HealthHandler struct {
	db      domain.Pinger
	clients func() int
	started time.Time
}

func NewHealthHandler(db domain.Pinger, clients func() int) *HealthHandler {
	return &HealthHandler{db: db, clients: clients, started: time.Now()}
}

// Serve reports liveness and answers 503 when the database does not respond.
func (h *HealthHandler) Serve(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{
		"status":    "ok",
		"database":  "connected",
		"uptimeSec": int(time.Since(h.started).Seconds()),
		"timestamp": time.Now().UTC(),
	}
	if h.clients != nil {
		body["realtimeClients"] = h.clients()
	}
	status := http.StatusOK
	if h.db.Ping(ctx) != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "disconnected"
	}
	c.JSON(status, body)
}
