package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/service"
)

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		ErrorResponse(c, http.StatusBadRequest, err.Error(), service.Kind(err))
	case errors.Is(err, service.ErrPermission):
		ErrorResponse(c, http.StatusForbidden, err.Error(), service.Kind(err))
	case errors.Is(err, service.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error(), service.Kind(err))
	case errors.Is(err, service.ErrConflict):
		ErrorResponse(c, http.StatusConflict, err.Error(), service.Kind(err))
	case errors.Is(err, service.ErrNotEligible):
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error(), service.Kind(err))
	case errors.Is(err, service.ErrCollaboratorUnavailable):
		RetryableErrorResponse(c, http.StatusServiceUnavailable, err.Error(), service.Kind(err))
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred", "internal")
	}
}
