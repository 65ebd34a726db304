// Package testutil builds migrated in-memory databases and fixtures for repository and
// handler tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"sheesh.app/server/internal/bootstrap"
	"sheesh.app/server/internal/entity"
	"sheesh.app/server/pkg/database"
)

// PublicGroupID is the public community group seeded by NewDB.
const PublicGroupID uint = 1

// NewDB returns a migrated in-memory SQLite database holding only the public group.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedPublicGroup(db, PublicGroupID, "Sheesh"))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, username string, private bool) entity.User {
	t.Helper()

	user := entity.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		IsPrivate:    private,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func CreateGroup(t testing.TB, db *gorm.DB, name string, createdBy uint) entity.Group {
	t.Helper()

	group := entity.Group{Name: name, CreatedBy: createdBy}
	require.NoError(t, db.Create(&group).Error)
	return group
}

func AddMember(t testing.TB, db *gorm.DB, groupID, userID uint) {
	t.Helper()
	require.NoError(t, db.Create(&entity.GroupMember{GroupID: groupID, UserID: userID}).Error)
}

func AddEntry(t testing.TB, db *gorm.DB, userID uint, date string, minutes int) {
	t.Helper()
	require.NoError(t, db.Create(&entity.ScreentimeEntry{UserID: userID, Date: date, Minutes: minutes}).Error)
}
