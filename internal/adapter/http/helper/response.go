package helper

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	. "hypertodo/internal/adapter/http/validation"

	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

// SendHTML renders into a buffer first so a template failure never leaves a half-written body.
func SendHTML(c *gin.Context, statusCode int, render func(io.Writer) error) error {
	var buf bytes.Buffer

	if err := render(&buf); err != nil {
		return err
	}

	c.Data(statusCode, htmlContentType, buf.Bytes())
	return nil
}

func SendText(c *gin.Context, statusCode int, message string) {
	c.String(statusCode, message)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)

	if len(validationErrors) == 0 {
		SendText(c, http.StatusBadRequest, "invalid request")
		return
	}

	messages := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		messages = append(messages, ve.Message)
	}

	SendText(c, http.StatusBadRequest, strings.Join(messages, "; "))
}

func SendBadRequestError(c *gin.Context, message string) {
	SendText(c, http.StatusBadRequest, message)
}

func SendNotFoundError(c *gin.Context, message string) {
	SendText(c, http.StatusNotFound, message)
}

func SendInternalError(c *gin.Context) {
	SendText(c, http.StatusInternalServerError, "internal server error")
}
