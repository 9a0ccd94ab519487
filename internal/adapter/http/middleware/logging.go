package middleware

import (
	"time"

	"hypertodo/pkg/config"
	ct "hypertodo/pkg/context"
	"hypertodo/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func LoggingMiddleware(logger *config.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		ctx := c.Request.Context()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", ct.RequestID(ctx)),
			zap.String("trace_id", tracing.GetTraceID(ctx)),
			zap.String("span_id", tracing.GetSpanID(ctx)),
		}

		if htmx, _ := GetCurrent(c).Get("htmx").(bool); htmx {
			fields = append(fields, zap.Bool("htmx", true))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.ErrorWithTrace(ctx, "HTTP Request", fields...)
		case c.Writer.Status() >= 400:
			logger.WarnWithTrace(ctx, "HTTP Request", fields...)
		default:
			logger.InfoWithTrace(ctx, "HTTP Request", fields...)
		}
	}
}
