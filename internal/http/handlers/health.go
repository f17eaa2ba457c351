package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping           func(ctx context.Context) error
	isShuttingDown func() bool
}

// NewHealthHandler takes the datastore ping; nil means always ready.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// WithShutdownProbe makes /readyz fail once the server starts draining.
func (h *HealthHandler) WithShutdownProbe(isShuttingDown func() bool) *HealthHandler {
	h.isShuttingDown = isShuttingDown
	return h
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.isShuttingDown != nil && h.isShuttingDown() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting down"})
		return
	}

	if h.ping != nil {
		if err := h.ping(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "datastore unavailable"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
