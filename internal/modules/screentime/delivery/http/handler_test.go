package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sheesh.app/server/internal/entity"
	screentimeDto "sheesh.app/server/internal/modules/screentime/dto"
	"sheesh.app/server/pkg/ratelimit"
	"sheesh.app/server/pkg/validator"
)

type stubService struct {
	got     *screentimeDto.UploadRequest
	userID  uint
	err     error
	entries []screentimeDto.EntryResponse
}

func (s *stubService) Upload(_ context.Context, userID uint, req screentimeDto.UploadRequest) (*screentimeDto.EntryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.got = &req
	s.userID = userID
	return &screentimeDto.EntryResponse{
		ID:                1,
		UserID:            userID,
		Date:              req.Date,
		TotalMinutes:      *req.TotalMinutes,
		CategoryBreakdown: req.CategoryBreakdown,
	}, nil
}

func (s *stubService) GetUserEntries(context.Context, uint) ([]screentimeDto.EntryResponse, error) {
	return s.entries, s.err
}

func newRouter(t *testing.T, svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterCustomValidations())

	h := NewScreentimeHandler(svc)
	r := gin.New()
	r.POST("/screentime", func(c *gin.Context) {
		c.Set("user_id", "4")
		h.Upload(c)
	})
	r.GET("/screentime/:user_id", h.GetUserEntries)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/screentime", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpload_OK(t *testing.T) {
	svc := &stubService{}
	r := newRouter(t, svc)

	w := post(r, `{"date":"2026-03-10","total_minutes":0,"category_breakdown":[{"category":"social","minutes":0}]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 4, svc.userID)
	assert.Equal(t, []entity.CategoryMinutes{{Category: "social", Minutes: 0}}, svc.got.CategoryBreakdown)
	assert.Contains(t, w.Body.String(), `"total_minutes":0`)
}

func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing minutes", `{"date":"2026-03-10"}`, "Total minutes is required"},
		{"too many minutes", `{"date":"2026-03-10","total_minutes":1441}`, "Total minutes must be at most 1440"},
		{"negative minutes", `{"date":"2026-03-10","total_minutes":-1}`, "Total minutes must be at least 0"},
		{"bad date", `{"date":"10/03/2026","total_minutes":5}`, "Date must be a date in YYYY-MM-DD format"},
		{"impossible date", `{"date":"2026-02-30","total_minutes":5}`, "Date must be a date in YYYY-MM-DD format"},
		{"category without name", `{"date":"2026-03-10","total_minutes":5,"category_breakdown":[{"minutes":3}]}`, "Category is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			w := post(newRouter(t, svc), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Nil(t, svc.got)
		})
	}
}

func TestUpload_RateLimited(t *testing.T) {
	svc := &stubService{err: &ratelimit.Error{Message: "you are doing that too fast. Please wait 3 seconds", RetryAfter: 3 * time.Second}}

	w := post(newRouter(t, svc), `{"date":"2026-03-10","total_minutes":5}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
}

func TestGetUserEntries(t *testing.T) {
	svc := &stubService{entries: []screentimeDto.EntryResponse{{ID: 2, Date: "2026-03-10", TotalMinutes: 30}}}
	r := newRouter(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/screentime/4", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"date":"2026-03-10"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/screentime/me", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
