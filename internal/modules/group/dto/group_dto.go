package dto

import "time"

type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsPrivate   bool    `json:"is_private"`
}

// UpdateGroupRequest changes only the fields that are present.
type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsPrivate   *bool   `json:"is_private"`
	// RegenerateJoinCode issues a fresh code for a private group.
	RegenerateJoinCode bool `json:"regenerate_join_code"`
}

type JoinByCodeRequest struct {
	JoinCode string `json:"join_code" binding:"required,alphanum,max=16"`
}

type SearchGroupsQuery struct {
	Q     string `form:"q" binding:"required,max=100"`
	Limit int64  `form:"limit" binding:"omitempty,min=1,max=50"`
}

type GroupResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatedBy   uint    `json:"created_by"`
	IsPrivate   bool    `json:"is_private"`
	// JoinCode is only filled for members of the group.
	JoinCode    *string   `json:"join_code,omitempty"`
	IsPublic    bool      `json:"is_public_community"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	IsCreator   bool      `json:"is_creator"`
	JoinedAt    time.Time `json:"joined_at"`
}

type MembershipResponse struct {
	ID       uint      `json:"id"`
	GroupID  uint      `json:"group_id"`
	UserID   uint      `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
