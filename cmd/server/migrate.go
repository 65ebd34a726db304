package main

import (
	"log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"sheesh.app/server/internal/config"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and seed the public group",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(*config.Config, *gorm.DB) error {
			log.Println("✅ Migration completed")
			return nil
		})
	},
}
