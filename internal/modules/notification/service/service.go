package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventLeaderboardUpdated = "leaderboard_updated"
	EventMemberJoined       = "member_joined"
	EventMemberLeft         = "member_left"
)

// LeaderboardEvent tells subscribers of a group that its leaderboard should be refetched.
type LeaderboardEvent struct {
	Type    string    `json:"type"`
	GroupID uint      `json:"group_id"`
	UserID  uint      `json:"user_id"`
	Date    string    `json:"date,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

type NotificationService interface {
	// PublishLeaderboardUpdate announces new screentime of userID for date to groupID.
	PublishLeaderboardUpdate(ctx context.Context, groupID, userID uint, date string) error
	PublishMembershipChange(ctx context.Context, groupID, userID uint, joined bool) error
	// Subscribe returns nil, ErrLiveUpdatesDisabled without redis.
	Subscribe(ctx context.Context, groupID uint) (*redis.PubSub, error)
	Enabled() bool
}

var ErrLiveUpdatesDisabled = errors.New("live leaderboard updates need redis")

type notificationService struct {
	redisClient *redis.Client
	now         func() time.Time
}

func NewNotificationService(redisClient *redis.Client) NotificationService {
	return &notificationService{
		redisClient: redisClient,
		now:         time.Now,
	}
}

func Channel(groupID uint) string {
	return fmt.Sprintf("group_leaderboard:%d", groupID)
}

func (s *notificationService) Enabled() bool {
	return s.redisClient != nil
}

func (s *notificationService) PublishLeaderboardUpdate(ctx context.Context, groupID, userID uint, date string) error {
	return s.publish(ctx, LeaderboardEvent{
		Type:    EventLeaderboardUpdated,
		GroupID: groupID,
		UserID:  userID,
		Date:    date,
	})
}

func (s *notificationService) PublishMembershipChange(ctx context.Context, groupID, userID uint, joined bool) error {
	event := LeaderboardEvent{Type: EventMemberLeft, GroupID: groupID, UserID: userID}
	if joined {
		event.Type = EventMemberJoined
	}
	return s.publish(ctx, event)
}

func (s *notificationService) publish(ctx context.Context, event LeaderboardEvent) error {
	if s.redisClient == nil {
		return nil
	}

	event.SentAt = s.now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.redisClient.Publish(ctx, Channel(event.GroupID), payload).Err(); err != nil {
		log.Printf("❌ Failed to publish %s for group %d: %v", event.Type, event.GroupID, err)
		return err
	}
	return nil
}

func (s *notificationService) Subscribe(ctx context.Context, groupID uint) (*redis.PubSub, error) {
	if s.redisClient == nil {
		return nil, ErrLiveUpdatesDisabled
	}

	pubsub := s.redisClient.Subscribe(ctx, Channel(groupID))
	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	return pubsub, nil
}
