package dto

import (
	"time"

	"sheesh.app/server/internal/entity"
)

type UploadRequest struct {
	Date              string                   `json:"date" binding:"required,isodate"`
	TotalMinutes      *int                     `json:"total_minutes" binding:"required,min=0,max=1440"`
	CategoryBreakdown []entity.CategoryMinutes `json:"category_breakdown" binding:"omitempty,max=50,dive"`
}

type EntryResponse struct {
	ID                uint                     `json:"id"`
	UserID            uint                     `json:"user_id"`
	Date              string                   `json:"date"`
	TotalMinutes      int                      `json:"total_minutes"`
	CategoryBreakdown []entity.CategoryMinutes `json:"category_breakdown"`
	UploadedAt        time.Time                `json:"uploaded_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}
