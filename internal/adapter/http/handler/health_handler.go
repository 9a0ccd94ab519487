package handler

import (
	"context"
	"net/http"

	"hypertodo/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler with a nil pinger always reports ok.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable", Error: "store unreachable"})
			return
		}
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}
