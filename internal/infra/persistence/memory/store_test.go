package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-arena/internal/domain"
	"debate-arena/internal/infra/persistence/memory"
	"debate-arena/internal/repository"
)

func TestStanceRepository_CreateIsWriteOnce(t *testing.T) {
	repo := memory.NewStore().StanceRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Stance{RoomID: "r1", UserID: "u1", Team: domain.TeamFavor}))
	err := repo.Create(ctx, &domain.Stance{RoomID: "r1", UserID: "u1", Team: domain.TeamAgainst})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)

	got, err := repo.Find(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.TeamFavor, got.Team)
}

func TestMessageRepository_ListRecentOrdersByTimeThenSeq(t *testing.T) {
	repo := memory.NewStore().MessageRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, &domain.Message{ID: "late", RoomID: "r1", Time: base.Add(time.Second)}))
	require.NoError(t, repo.Append(ctx, &domain.Message{ID: "a", RoomID: "r1", Time: base}))
	require.NoError(t, repo.Append(ctx, &domain.Message{ID: "b", RoomID: "r1", Time: base}))

	msgs, err := repo.ListRecent(ctx, "r1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].ID)
	assert.Equal(t, "late", msgs[1].ID)
}
