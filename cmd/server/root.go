package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"sheesh.app/server/internal/bootstrap"
	"sheesh.app/server/internal/config"
	"sheesh.app/server/pkg/database"
)

var rootCmd = &cobra.Command{
	Use:           "sheesh",
	Short:         "Sheesh screentime leaderboard server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// openDatabase loads the config, connects and brings the schema up to date.
func openDatabase(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	db = db.WithContext(ctx)

	if err := bootstrap.Migrate(db); err != nil {
		closeDatabase(db)
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	if err := bootstrap.SeedPublicGroup(db, cfg.PublicGroupID, cfg.PublicGroupName); err != nil {
		closeDatabase(db)
		return nil, nil, fmt.Errorf("failed to seed public group: %w", err)
	}

	return cfg, db, nil
}

// withDatabase runs fn against a migrated database and closes it afterwards.
func withDatabase(ctx context.Context, fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg, db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	return fn(cfg, db)
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
