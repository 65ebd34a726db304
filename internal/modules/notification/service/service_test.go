package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	assert.Equal(t, "group_leaderboard:42", Channel(42))
}

func TestWithoutRedis(t *testing.T) {
	svc := NewNotificationService(nil)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.PublishLeaderboardUpdate(ctx, 1, 2, "2026-03-10"))
	assert.NoError(t, svc.PublishMembershipChange(ctx, 1, 2, true))

	pubsub, err := svc.Subscribe(ctx, 1)
	require.ErrorIs(t, err, ErrLiveUpdatesDisabled)
	assert.Nil(t, pubsub)
}
