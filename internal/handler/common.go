package handler

import (
	"errors"
	"net/http"

	"procurement/pkg/apperr"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP statuses in one place.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrBusinessRule):
		status = http.StatusConflict
		if reason, ok := apperr.ReasonOf(err); ok && reason == apperr.ReasonWrongRank {
			status = http.StatusForbidden
		}
	}

	c.JSON(status, response.Error(status, err.Error()))
}
