package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ScreentimeEntry is one user's total phone usage for one calendar day.
// (user_id, date) is unique; uploads for an existing day overwrite it.
type ScreentimeEntry struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_screentime_user_date,priority:1" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Date    string `gorm:"size:10;not null;uniqueIndex:idx_screentime_user_date,priority:2;index" json:"date"`
	Minutes int    `gorm:"not null;check:minutes >= 0" json:"minutes"`
	// CategoryBreakdown holds []CategoryMinutes as JSON; null when not provided.
	CategoryBreakdown datatypes.JSON `json:"category_breakdown"`
	UploadedAt        time.Time      `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type CategoryMinutes struct {
	Category string `json:"category" binding:"required,max=50"`
	Minutes  int    `json:"minutes" binding:"min=0,max=1440"`
}
