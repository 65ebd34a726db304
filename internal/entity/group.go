package entity

import "time"

type Group struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	CreatedBy   uint    `gorm:"not null;index" json:"created_by"`
	// IsPrivate groups are joined by code only. Unrelated to User.IsPrivate.
	IsPrivate bool      `gorm:"not null;default:false" json:"is_private"`
	JoinCode  *string   `gorm:"size:16;uniqueIndex" json:"join_code,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type GroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_member,priority:1" json:"group_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_member,priority:2;index" json:"user_id"`
	Group    Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
