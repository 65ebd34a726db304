package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"sheesh.app/server/internal/entity"
	"sheesh.app/server/internal/metrics"
	notifService "sheesh.app/server/internal/modules/notification/service"
	screentimeDto "sheesh.app/server/internal/modules/screentime/dto"
	screentimeRepo "sheesh.app/server/internal/modules/screentime/repository"
	"sheesh.app/server/pkg/ratelimit"
)

// MembershipLookup lists the groups a user belongs to.
type MembershipLookup interface {
	FindGroupIDsByMember(ctx context.Context, userID uint) ([]uint, error)
}

type ScreentimeService interface {
	Upload(ctx context.Context, userID uint, req screentimeDto.UploadRequest) (*screentimeDto.EntryResponse, error)
	GetUserEntries(ctx context.Context, userID uint) ([]screentimeDto.EntryResponse, error)
}

type screentimeService struct {
	repo        screentimeRepo.ScreentimeRepository
	memberships MembershipLookup
	notifier    notifService.NotificationService
	redisClient *redis.Client
	uploadLimit time.Duration
}

func NewScreentimeService(
	repo screentimeRepo.ScreentimeRepository,
	memberships MembershipLookup,
	notifier notifService.NotificationService,
	redisClient *redis.Client,
	uploadLimit time.Duration,
) ScreentimeService {
	return &screentimeService{
		repo:        repo,
		memberships: memberships,
		notifier:    notifier,
		redisClient: redisClient,
		uploadLimit: uploadLimit,
	}
}

func (s *screentimeService) Upload(ctx context.Context, userID uint, req screentimeDto.UploadRequest) (resp *screentimeDto.EntryResponse, err error) {
	defer func() { metrics.ObserveUpload(err) }()

	subject := strconv.FormatUint(uint64(userID), 10)
	if err := ratelimit.Reserve(ctx, s.redisClient, subject, "upload_screentime", s.uploadLimit); err != nil {
		return nil, err
	}

	entry := &entity.ScreentimeEntry{
		UserID: userID,
		Date:   req.Date,
	}
	if req.TotalMinutes != nil {
		entry.Minutes = *req.TotalMinutes
	}
	if len(req.CategoryBreakdown) > 0 {
		raw, err := json.Marshal(req.CategoryBreakdown)
		if err != nil {
			return nil, fmt.Errorf("encode category breakdown: %w", err)
		}
		entry.CategoryBreakdown = datatypes.JSON(raw)
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	log.Printf("📱 Screentime for user %d on %s set to %d minutes", userID, entry.Date, entry.Minutes)

	s.announce(ctx, userID, entry.Date)

	out := toResponse(*entry)
	return &out, nil
}

func (s *screentimeService) GetUserEntries(ctx context.Context, userID uint) ([]screentimeDto.EntryResponse, error) {
	entries, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]screentimeDto.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toResponse(entry))
	}
	return out, nil
}

// announce tells every group of userID that its leaderboard changed.
func (s *screentimeService) announce(ctx context.Context, userID uint, date string) {
	if s.notifier == nil || !s.notifier.Enabled() {
		return
	}

	groupIDs, err := s.memberships.FindGroupIDsByMember(ctx, userID)
	if err != nil {
		log.Printf("Failed to load groups of user %d for live update: %v", userID, err)
		return
	}
	for _, groupID := range groupIDs {
		if err := s.notifier.PublishLeaderboardUpdate(ctx, groupID, userID, date); err != nil {
			log.Printf("Failed to publish leaderboard update for group %d: %v", groupID, err)
		}
	}
}

func toResponse(entry entity.ScreentimeEntry) screentimeDto.EntryResponse {
	breakdown := []entity.CategoryMinutes{}
	if len(entry.CategoryBreakdown) > 0 {
		if err := json.Unmarshal(entry.CategoryBreakdown, &breakdown); err != nil {
			log.Printf("Ignoring unreadable category breakdown of entry %d: %v", entry.ID, err)
			breakdown = []entity.CategoryMinutes{}
		}
	}

	return screentimeDto.EntryResponse{
		ID:                entry.ID,
		UserID:            entry.UserID,
		Date:              entry.Date,
		TotalMinutes:      entry.Minutes,
		CategoryBreakdown: breakdown,
		UploadedAt:        entry.UploadedAt,
		UpdatedAt:         entry.UpdatedAt,
	}
}
