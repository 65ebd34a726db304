package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"sheesh.app/server/internal/config"
	leaderboardDto "sheesh.app/server/internal/modules/leaderboard/dto"
	leaderboardRepo "sheesh.app/server/internal/modules/leaderboard/repository"
	leaderboardService "sheesh.app/server/internal/modules/leaderboard/service"
	"sheesh.app/server/pkg/validator"
)

func init() {
	rootCmd.AddCommand(leaderboardCmd)

	leaderboardCmd.Flags().Uint("group", 0, "Group id (defaults to the public group)")
	leaderboardCmd.Flags().StringP("type", "t", string(leaderboardDto.ModeToday), "today, yesterday, weekly or change")
	leaderboardCmd.Flags().String("as-of", "", "Reference day as YYYY-MM-DD (defaults to today)")
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print a group leaderboard as JSON",
	Args:  cobra.NoArgs,
	RunE:  runLeaderboard,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	groupID, _ := cmd.Flags().GetUint("group")
	mode, _ := cmd.Flags().GetString("type")
	asOfFlag, _ := cmd.Flags().GetString("as-of")

	return withDatabase(cmd.Context(), func(cfg *config.Config, db *gorm.DB) error {
		if groupID == 0 {
			groupID = cfg.PublicGroupID
		}

		asOf := time.Now()
		if asOfFlag != "" {
			var err error
			asOf, err = time.ParseInLocation(validator.DateLayout, asOfFlag, cfg.Location)
			if err != nil {
				return fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
			}
		}

		engine := leaderboardService.NewEngine(cfg.PublicGroupID, cfg.Location)
		svc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), engine)

		rows, err := svc.GetLeaderboard(cmd.Context(), groupID, mode, asOf)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(leaderboardDto.LeaderboardResponse{
			GroupID: groupID,
			Type:    leaderboardDto.Mode(mode),
			Date:    engine.Windows(asOf).Today,
			Data:    rows,
		}, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	})
}
