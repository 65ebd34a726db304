package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid mode", apperror.ErrInvalidMode, http.StatusBadRequest, "invalid leaderboard mode"},
		{"app error message", apperror.New(http.StatusNotFound, "invalid join code", apperror.ErrNotFound), http.StatusNotFound, "invalid join code"},
		{"data source hides cause", fmt.Errorf("%w: %w", apperror.ErrDataSourceUnavailable, errors.New("pq: password authentication failed")), http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"internal hides cause", errors.New("nil pointer somewhere"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ResponseError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	c.Set("user_id", "not-a-number")
	_, err = GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	c.Set("user_id", "42")
	id, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "group_id", Value: "7"}}

	id, err := ParseID(c, "group_id")
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	c.Params = gin.Params{{Key: "group_id", Value: "0"}}
	_, err = ParseID(c, "group_id")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestResponseError_RateLimited(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ResponseError(c, &ratelimit.Error{Message: "you are doing that too fast. Please wait 3 seconds", RetryAfter: 2500 * time.Millisecond})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Please wait 3 seconds")
}
