package handler

import (
	"io"
	"net/http"

	. "hypertodo/internal/adapter/http/helper"
	"hypertodo/internal/adapter/http/view"
	"hypertodo/internal/core/port"

	"github.com/gin-gonic/gin"
)

type CounterHandler struct {
	svc port.CounterService
}

func NewCounterHandler(counterService port.CounterService) *CounterHandler {
	return &CounterHandler{svc: counterService}
}

func (h *CounterHandler) Index(c *gin.Context) {
	value, err := h.svc.CurrentValue(c.Request.Context())

	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	if err := SendHTML(c, http.StatusOK, func(w io.Writer) error { return view.RenderCounterPage(w, value) }); err != nil {
		c.Error(err)
		c.Abort()
	}
}

// Increment adds one and answers with the button fragment that replaces #counter.
func (h *CounterHandler) Increment(c *gin.Context) {
	value, err := h.svc.Increment(c.Request.Context())

	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	if err := SendHTML(c, http.StatusOK, func(w io.Writer) error { return view.RenderCounter(w, value) }); err != nil {
		c.Error(err)
		c.Abort()
	}
}
