package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"vet-clinic-server/internal/scheduler"
)

func TestRespondSchedulerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"pet not found", scheduler.ErrPetNotFound, http.StatusNotFound},
		{"vet not found", scheduler.ErrVetNotFound, http.StatusNotFound},
		{"appointment not found", scheduler.ErrAppointmentNotFound, http.StatusNotFound},
		{"forbidden", scheduler.ErrForbidden, http.StatusForbidden},
		{"slot taken", scheduler.ErrSlotTaken, http.StatusConflict},
		{"past date", scheduler.ErrPastDate, http.StatusBadRequest},
		{"already cancelled", scheduler.ErrAlreadyCancelled, http.StatusBadRequest},
		{"cancel completed", scheduler.ErrCancelCompleted, http.StatusBadRequest},
		{"update completed", scheduler.ErrUpdateCompleted, http.StatusBadRequest},
		{"invalid status", scheduler.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid transition", scheduler.ErrInvalidStatusTransition, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("creating appointment: %w", scheduler.ErrSlotTaken), http.StatusConflict},
		{"unexpected error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondSchedulerError(c, tt.err)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestRespondSchedulerError_OpaqueInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondSchedulerError(c, errors.New("pq: connection refused to 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "Internal server error")
}
