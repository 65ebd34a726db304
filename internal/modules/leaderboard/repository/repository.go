package repository

import (
	"context"

	"gorm.io/gorm"
	"sheesh.app/server/internal/entity"
)

type LeaderboardRepository interface {
	// FindGroupMembers returns the users of groupID ordered by join time. An unknown group
	// yields an empty slice.
	FindGroupMembers(ctx context.Context, groupID uint) ([]entity.User, error)
	// FindEntriesInRange returns entries of userIDs with from <= date < to.
	FindEntriesInRange(ctx context.Context, userIDs []uint, from, to string) ([]entity.ScreentimeEntry, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) FindGroupMembers(ctx context.Context, groupID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.joined_at ASC").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *leaderboardRepository) FindEntriesInRange(ctx context.Context, userIDs []uint, from, to string) ([]entity.ScreentimeEntry, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var entries []entity.ScreentimeEntry
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "date", "minutes").
		Where("user_id IN ? AND date >= ? AND date < ?", userIDs, from, to).
		Order("date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
