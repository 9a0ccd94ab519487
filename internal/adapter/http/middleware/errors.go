package middleware

import (
	"context"
	"errors"
	"net/http"

	. "hypertodo/internal/adapter/http/helper"
	"hypertodo/internal/core/domain"
	"hypertodo/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrBadRequest marks malformed input that is not a validation failure, like a non-numeric id.
var ErrBadRequest = errors.New("bad request")

// ErrorHandler turns the last error attached with c.Error into a status code and a short text body.
func ErrorHandler(logger *config.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		var validationErr *domain.ValidationError
		var fieldErrs validator.ValidationErrors

		switch {
		case errors.As(err, &fieldErrs):
			SendValidationError(c, err)
		case errors.As(err, &validationErr):
			SendBadRequestError(c, validationErr.Error())
		case errors.Is(err, ErrBadRequest):
			SendBadRequestError(c, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			SendNotFoundError(c, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			SendText(c, http.StatusServiceUnavailable, "request timed out")
		default:
			logger.ErrorWithTrace(ctx, "Request failed",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()))
			SendInternalError(c)
		}
	}
}

// Recovery logs the panic and answers 500 so one request cannot take the process down.
func Recovery(logger *config.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorWithTrace(c.Request.Context(), "Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path))

		SendInternalError(c)
		c.Abort()
	})
}
