package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	groupDto "sheesh.app/server/internal/modules/group/dto"
	groupService "sheesh.app/server/internal/modules/group/service"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/response"
	"sheesh.app/server/pkg/validator"
)

type GroupHandler struct {
	service groupService.GroupService
}

func NewGroupHandler(service groupService.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req groupDto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	group, err := h.service.CreateGroup(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": group})
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	groups, err := h.service.ListGroups(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (h *GroupHandler) SearchGroups(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query groupDto.SearchGroupsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	groups, err := h.service.SearchGroups(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (h *GroupHandler) GetMyGroups(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	groups, err := h.service.GetUserGroups(c.Request.Context(), userID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// GetUserGroups serves GET /users/:user_id/groups.
func (h *GroupHandler) GetUserGroups(c *gin.Context) {
	viewerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, err := response.ParseID(c, "user_id")
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid user id", err))
		return
	}

	groups, err := h.service.GetUserGroups(c.Request.Context(), viewerID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	userID, groupID, ok := h.actorAndGroup(c)
	if !ok {
		return
	}

	var req groupDto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	group, err := h.service.UpdateGroup(c.Request.Context(), userID, groupID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": group})
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID, groupID, ok := h.actorAndGroup(c)
	if !ok {
		return
	}

	if err := h.service.DeleteGroup(c.Request.Context(), userID, groupID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group deleted successfully"})
}

func (h *GroupHandler) GetMembers(c *gin.Context) {
	userID, groupID, ok := h.actorAndGroup(c)
	if !ok {
		return
	}

	members, err := h.service.GetMembers(c.Request.Context(), userID, groupID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

func (h *GroupHandler) JoinGroup(c *gin.Context) {
	userID, groupID, ok := h.actorAndGroup(c)
	if !ok {
		return
	}

	membership, err := h.service.JoinGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": membership})
}

func (h *GroupHandler) JoinByCode(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req groupDto.JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	membership, err := h.service.JoinByCode(c.Request.Context(), userID, req.JoinCode)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": membership})
}

// RemoveMember serves DELETE /groups/:group_id/members/:user_id, used both to leave and to kick.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	actorID, groupID, ok := h.actorAndGroup(c)
	if !ok {
		return
	}

	userID, err := response.ParseID(c, "user_id")
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid user id", err))
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), actorID, groupID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed successfully"})
}

func (h *GroupHandler) actorAndGroup(c *gin.Context) (uint, uint, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return 0, 0, false
	}

	groupID, err := response.ParseID(c, "group_id")
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid group id", err))
		return 0, 0, false
	}

	return userID, groupID, true
}
