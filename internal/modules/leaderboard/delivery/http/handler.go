package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	leaderboardDto "sheesh.app/server/internal/modules/leaderboard/dto"
	leaderboardService "sheesh.app/server/internal/modules/leaderboard/service"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/response"
	"sheesh.app/server/pkg/validator"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
	now     func() time.Time
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService, now func() time.Time) *LeaderboardHandler {
	if now == nil {
		now = time.Now
	}
	return &LeaderboardHandler{service: service, now: now}
}

// GetLeaderboard serves GET /groups/:group_id/leaderboard?type=&as_of=
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	groupID, err := response.ParseID(c, "group_id")
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid group id", err))
		return
	}

	mode := c.DefaultQuery("type", string(leaderboardDto.ModeToday))

	asOf := h.now()
	if raw := c.Query("as_of"); raw != "" {
		asOf, err = time.ParseInLocation(validator.DateLayout, raw, h.service.Engine().Location())
		if err != nil {
			response.ResponseError(c, apperror.New(http.StatusBadRequest, "as_of must be YYYY-MM-DD", apperror.ErrInvalidInput))
			return
		}
	}

	rows, err := h.service.GetLeaderboard(c.Request.Context(), groupID, mode, asOf)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, leaderboardDto.LeaderboardResponse{
		GroupID: groupID,
		Type:    leaderboardDto.Mode(mode),
		Date:    h.service.Engine().Windows(asOf).Today,
		Data:    rows,
	})
}
