package entity

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    *string   `gorm:"size:100" json:"first_name"`
	LastName     *string   `gorm:"size:100" json:"last_name"`
	DisplayName  *string   `gorm:"size:100" json:"display_name"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	// IsPrivate hides the user's numbers on the public community leaderboard only.
	IsPrivate bool      `gorm:"not null;default:false" json:"is_private"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
