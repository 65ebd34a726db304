package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	screentimeDto "sheesh.app/server/internal/modules/screentime/dto"
	screentimeService "sheesh.app/server/internal/modules/screentime/service"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/response"
	"sheesh.app/server/pkg/validator"
)

type ScreentimeHandler struct {
	service screentimeService.ScreentimeService
}

func NewScreentimeHandler(service screentimeService.ScreentimeService) *ScreentimeHandler {
	return &ScreentimeHandler{service: service}
}

func (h *ScreentimeHandler) Upload(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req screentimeDto.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	entry, err := h.service.Upload(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (h *ScreentimeHandler) GetUserEntries(c *gin.Context) {
	userID, err := response.ParseID(c, "user_id")
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid user id", err))
		return
	}

	entries, err := h.service.GetUserEntries(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
