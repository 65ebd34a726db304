package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"sheesh.app/server/internal/metrics"
	leaderboardDto "sheesh.app/server/internal/modules/leaderboard/dto"
	leaderboardRepo "sheesh.app/server/internal/modules/leaderboard/repository"
	"sheesh.app/server/pkg/apperror"
)

type LeaderboardService interface {
	// GetLeaderboard validates mode before touching the stores. An unknown group returns an
	// empty list. Store failures are returned wrapped in apperror.ErrDataSourceUnavailable.
	GetLeaderboard(ctx context.Context, groupID uint, mode string, asOf time.Time) ([]leaderboardDto.Row, error)
	Engine() *Engine
}

type leaderboardService struct {
	repo   leaderboardRepo.LeaderboardRepository
	engine *Engine
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, engine *Engine) LeaderboardService {
	return &leaderboardService{
		repo:   repo,
		engine: engine,
	}
}

func (s *leaderboardService) Engine() *Engine { return s.engine }

func (s *leaderboardService) GetLeaderboard(ctx context.Context, groupID uint, mode string, asOf time.Time) (rows []leaderboardDto.Row, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveLeaderboard(mode, err, time.Since(start))
	}()

	m, err := leaderboardDto.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.FindGroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load members of group %d: %w: %w", groupID, apperror.ErrDataSourceUnavailable, err)
	}
	if len(members) == 0 {
		return []leaderboardDto.Row{}, nil
	}

	userIDs := make([]uint, 0, len(members))
	for _, u := range members {
		userIDs = append(userIDs, u.ID)
	}

	window := s.engine.Windows(asOf).FetchRange(m)
	entries, err := s.repo.FindEntriesInRange(ctx, userIDs, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("load screentime of group %d: %w: %w", groupID, apperror.ErrDataSourceUnavailable, err)
	}

	rows, err = s.engine.Compute(groupID, m, asOf, members, entries)
	if err != nil {
		return nil, err
	}

	log.Printf("🏆 Leaderboard group=%d type=%s date=%s: %d users", groupID, m, s.engine.Windows(asOf).Today, len(rows))
	return rows, nil
}
