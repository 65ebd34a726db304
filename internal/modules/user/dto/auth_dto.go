package dto

import (
	"io"
	"time"

	"sheesh.app/server/internal/entity"
)

// AvatarFile is an avatar image uploaded with a profile update.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type RegisterInput struct {
	Username  string  `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email     string  `json:"email" binding:"required,email,max=100"`
	Password  string  `json:"password" binding:"required,min=8,max=72"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput changes only the fields that are present. It binds from JSON or from a
// multipart form carrying an avatar.
type UpdateProfileInput struct {
	FirstName   *string `json:"first_name" form:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" form:"last_name" binding:"omitempty,max=100"`
	DisplayName *string `json:"display_name" form:"display_name" binding:"omitempty,max=100"`
	Email       *string `json:"email" form:"email" binding:"omitempty,email,max=100"`
	IsPrivate   *bool   `json:"is_private" form:"is_private"`
}

type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		IsPrivate:   user.IsPrivate,
		CreatedAt:   user.CreatedAt,
	}
}
