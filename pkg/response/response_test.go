package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return w, env
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.NewNotFoundError("Booking", "1"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", domain.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION"},
		{"invalid transition", domain.NewInvalidStateError("completed", "cancelled"), http.StatusConflict, "INVALID_TRANSITION"},
		{"constraint violation", domain.NewConstraintViolationError("dup", nil), http.StatusConflict, "CONSTRAINT_VIOLATION"},
		{"exhausted", domain.NewAllocationExhaustedError(5), http.StatusInternalServerError, "ALLOCATION_EXHAUSTED"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := render(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestError_StoreUnavailableIsRetryableAndOpaque(t *testing.T) {
	err := domain.NewStoreUnavailableError("find booking", errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	w, env := render(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.True(t, env.Error.Retryable)
	assert.NotContains(t, env.Error.Message, "10.0.0.5")
}

func TestPaginated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Paginated(c, []int{1, 2}, 5, 1, 2)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 3, env.Meta.TotalPages)
}
