package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"procurement/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", apperr.ErrUnauthenticated, http.StatusUnauthorized},
		{"wrapped unauthenticated", apperr.Unauthenticatedf("token for %s", "alice"), http.StatusUnauthorized},
		{"permission denied", apperr.PermissionDeniedf("requires admin"), http.StatusForbidden},
		{"validation", apperr.Validationf("bad input"), http.StatusBadRequest},
		{"not found", apperr.NotFoundf("rfq %s", "x"), http.StatusNotFound},
		{"wrong state", apperr.Rule(apperr.ReasonWrongState, "not DRAFT"), http.StatusConflict},
		{"already decided", apperr.Rule(apperr.ReasonAlreadyDecided, "decided"), http.StatusConflict},
		{"duplicate pending", apperr.Rule(apperr.ReasonDuplicatePending, "pending exists"), http.StatusConflict},
		{"wrong rank maps to forbidden", apperr.Rule(apperr.ReasonWrongRank, "needs admin"), http.StatusForbidden},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondError(c, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
