package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ichinichi/internal/core"
	applog "ichinichi/internal/log"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, core.ErrInvalidItem):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Internal errors are logged and replaced
// with a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		body.Error = core.ErrInvalidItem.Error()
		body.Fields = verr.Fields
	}
	if status == http.StatusNotFound {
		body.Error = core.ErrNotFound.Error()
	}
	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		applog.FromContext(ctx).ErrorContext(ctx, "Request failed",
			applog.FieldMethod, c.Request.Method,
			applog.FieldPath, c.FullPath(),
			applog.FieldError, err)
		body.Error = "internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}
