package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sheesh.app/server/internal/entity"
	"sheesh.app/server/internal/modules/leaderboard/dto"
	"sheesh.app/server/pkg/apperror"
)

type fakeRepo struct {
	members    map[uint][]entity.User
	entries    []entity.ScreentimeEntry
	membersErr error
	entriesErr error

	memberCalls int
	lastFrom    string
	lastTo      string
}

func (f *fakeRepo) FindGroupMembers(_ context.Context, groupID uint) ([]entity.User, error) {
	f.memberCalls++
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.members[groupID], nil
}

func (f *fakeRepo) FindEntriesInRange(_ context.Context, userIDs []uint, from, to string) ([]entity.ScreentimeEntry, error) {
	f.lastFrom, f.lastTo = from, to
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	wanted := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []entity.ScreentimeEntry
	for _, e := range f.entries {
		if wanted[e.UserID] && e.Date >= from && e.Date < to {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestService(repo *fakeRepo) LeaderboardService {
	return NewLeaderboardService(repo, NewEngine(publicGroup, nil))
}

func TestGetLeaderboard_InvalidModeSkipsStores(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	rows, err := svc.GetLeaderboard(context.Background(), 1, "monthly", asOf)

	assert.ErrorIs(t, err, apperror.ErrInvalidMode)
	assert.Nil(t, rows)
	assert.Zero(t, repo.memberCalls)
}

func TestGetLeaderboard_UnknownGroupIsEmpty(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	rows, err := svc.GetLeaderboard(context.Background(), 404, "weekly", asOf)

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetLeaderboard_WrapsStoreFailures(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("members", func(t *testing.T) {
		svc := newTestService(&fakeRepo{membersErr: cause})
		_, err := svc.GetLeaderboard(context.Background(), 1, "today", asOf)

		assert.ErrorIs(t, err, apperror.ErrDataSourceUnavailable)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("entries", func(t *testing.T) {
		svc := newTestService(&fakeRepo{
			members:    map[uint][]entity.User{1: {member(1, "a", false)}},
			entriesErr: cause,
		})
		_, err := svc.GetLeaderboard(context.Background(), 1, "today", asOf)

		assert.ErrorIs(t, err, apperror.ErrDataSourceUnavailable)
		assert.ErrorIs(t, err, cause)
	})
}

func TestGetLeaderboard_FetchesModeWindow(t *testing.T) {
	repo := &fakeRepo{
		members: map[uint][]entity.User{3: {member(1, "a", false), member(2, "b", false)}},
		entries: []entity.ScreentimeEntry{
			entry(1, "2026-03-04", 50),
			entry(1, "2026-03-08", 40),
			entry(2, "2026-03-05", 50),
			entry(2, "2026-03-08", 60),
		},
	}
	svc := newTestService(repo)

	rows, err := svc.GetLeaderboard(context.Background(), 3, "change", asOf)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-04", repo.lastFrom)
	assert.Equal(t, "2026-03-10", repo.lastTo)
	require.Len(t, rows, 2)
	assert.Equal(t, dto.ModeChange, rows[0].Mode())
	assert.Equal(t, []uint{1, 2}, userIDs(rows))
}

func TestGetLeaderboard_MembershipIsCurrent(t *testing.T) {
	repo := &fakeRepo{
		members: map[uint][]entity.User{3: {member(1, "a", false)}},
		entries: []entity.ScreentimeEntry{entry(1, "2026-03-10", 10), entry(2, "2026-03-10", 5)},
	}
	svc := newTestService(repo)

	rows, err := svc.GetLeaderboard(context.Background(), 3, "today", asOf)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, userIDs(rows))

	repo.members[3] = append(repo.members[3], member(2, "b", false))
	rows, err = svc.GetLeaderboard(context.Background(), 3, "today", asOf)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 1}, userIDs(rows))
}
