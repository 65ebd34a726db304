package main

import (
	"log"

	"github.com/spf13/cobra"
	"sheesh.app/server/internal/server"
	"sheesh.app/server/pkg/database"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}

	redisClient, err := database.ConnectRedis(cmd.Context(), cfg.RedisURL)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		return err
	}
	defer srv.Close()

	log.Printf("🚀 Sheesh listening on :%s (%s)", cfg.Port, cfg.AppEnv)
	return srv.Run(":" + cfg.Port)
}
