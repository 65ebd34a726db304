package bootstrap

import (
	"log"

	"gorm.io/gorm"
	"sheesh.app/server/internal/entity"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Group{},
		&entity.GroupMember{},
		&entity.ScreentimeEntry{},
	)
}

// SeedPublicGroup makes sure the public community group exists under id. Every registered
// user joins it, and it is the only group that hides private users.
func SeedPublicGroup(db *gorm.DB, id uint, name string) error {
	var count int64
	if err := db.Model(&entity.Group{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	group := entity.Group{
		ID:          id,
		Name:        name,
		Description: stringPtr("Everyone on Sheesh. Private accounts stay hidden here."),
	}
	if err := db.Create(&group).Error; err != nil {
		return err
	}

	// An explicit id leaves the postgres sequence behind.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(
			"SELECT setval(pg_get_serial_sequence('groups', 'id'), (SELECT MAX(id) FROM groups))",
		).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Public group %q seeded with id %d", name, id)
	return nil
}

func stringPtr(s string) *string {
	return &s
}
