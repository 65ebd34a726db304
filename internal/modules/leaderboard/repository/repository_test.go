package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sheesh.app/server/internal/testutil"
)

func TestFindGroupMembers(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLeaderboardRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "ana", false)
	ben := testutil.CreateUser(t, db, "ben", true)
	cam := testutil.CreateUser(t, db, "cam", false)
	group := testutil.CreateGroup(t, db, "friends", ana.ID)

	testutil.AddMember(t, db, group.ID, ana.ID)
	testutil.AddMember(t, db, group.ID, ben.ID)
	testutil.AddMember(t, db, testutil.PublicGroupID, cam.ID)

	members, err := repo.FindGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "ana", members[0].Username)
	assert.Equal(t, "ben", members[1].Username)
	assert.True(t, members[1].IsPrivate)
}

func TestFindGroupMembers_UnknownGroup(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLeaderboardRepository(db)

	members, err := repo.FindGroupMembers(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestFindEntriesInRange(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLeaderboardRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "ana", false)
	ben := testutil.CreateUser(t, db, "ben", false)
	outsider := testutil.CreateUser(t, db, "zed", false)

	testutil.AddEntry(t, db, ana.ID, "2026-03-02", 10)
	testutil.AddEntry(t, db, ana.ID, "2026-03-03", 20)
	testutil.AddEntry(t, db, ben.ID, "2026-03-09", 30)
	testutil.AddEntry(t, db, ben.ID, "2026-03-10", 40)
	testutil.AddEntry(t, db, outsider.ID, "2026-03-05", 50)

	entries, err := repo.FindEntriesInRange(ctx, []uint{ana.ID, ben.ID}, "2026-03-03", "2026-03-10")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "2026-03-03", entries[0].Date)
	assert.Equal(t, 20, entries[0].Minutes)
	assert.Equal(t, ben.ID, entries[1].UserID)
	assert.Equal(t, 30, entries[1].Minutes)
}

func TestFindEntriesInRange_NoUsers(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLeaderboardRepository(db)

	entries, err := repo.FindEntriesInRange(context.Background(), nil, "2026-01-01", "2026-02-01")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
