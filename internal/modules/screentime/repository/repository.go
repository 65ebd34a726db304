package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"sheesh.app/server/internal/entity"
)

type ScreentimeRepository interface {
	// Upsert stores entry, replacing the minutes and breakdown of an existing (user, date) row.
	// entry is reloaded with the stored values.
	Upsert(ctx context.Context, entry *entity.ScreentimeEntry) error
	FindByUser(ctx context.Context, userID uint) ([]entity.ScreentimeEntry, error)
}

type screentimeRepository struct {
	db *gorm.DB
}

func NewScreentimeRepository(db *gorm.DB) ScreentimeRepository {
	return &screentimeRepository{db: db}
}

func (r *screentimeRepository) Upsert(ctx context.Context, entry *entity.ScreentimeEntry) error {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"minutes", "category_breakdown", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return err
	}

	// the id reported by an upsert that hit the conflict branch is not reliable on every dialect
	var stored entity.ScreentimeEntry
	if err := db.Where("user_id = ? AND date = ?", entry.UserID, entry.Date).First(&stored).Error; err != nil {
		return err
	}
	*entry = stored
	return nil
}

func (r *screentimeRepository) FindByUser(ctx context.Context, userID uint) ([]entity.ScreentimeEntry, error) {
	var entries []entity.ScreentimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
