// Package cron serves the bearer-secret endpoints invoked by the platform
// scheduler. These mirror the worker's internal loops so operators can run
// or re-run a sweep on demand.
package cron

import (
	"time"

	"github.com/storekart/storekart/internal/http/response"
	"github.com/storekart/storekart/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler holds the cron endpoint dependencies.
type Handler struct {
	*provider.Container
}

// NewHandler creates a cron handler.
func NewHandler(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// ProcessAbandonedCarts runs one sweep batch. Re-running is safe; all
// transitions are guarded on current state.
func (h *Handler) ProcessAbandonedCarts(c *gin.Context) {
	result := h.AbandonedCartService.Sweep(time.Now())
	response.Success(c, result)
}
