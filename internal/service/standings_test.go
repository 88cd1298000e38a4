package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/service"
)

func TestStandingsService_RebuildMatchesIncrementalFold(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.argue(t, "f1", domain.TeamFavor, 2)
	e.argue(t, "a1", domain.TeamAgainst, 1)

	before, err := e.standings.Standings(ctx, testRoom)
	require.NoError(t, err)
	rebuilt, drifted, err := e.standings.Rebuild(ctx, testRoom)
	require.NoError(t, err)
	assert.False(t, drifted)
	assert.Equal(t, before.TotalArguments(), rebuilt.TotalArguments())
	assert.Equal(t, before.Favor.TotalPoints, rebuilt.Favor.TotalPoints)
}

func TestStandingsService_RebuildRepairsDrift(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.argue(t, "f1", domain.TeamFavor, 1)

	// Written behind the engine's back, as another process would.
	require.NoError(t, e.store.EvaluationRepository().Save(ctx, &domain.Evaluation{
		RoomID: testRoom, UserID: "n1", Team: domain.TeamNeutral, Criteria: uniform(7), TotalScore: 42, EvaluatedAt: time.Now().UTC(),
	}))

	rebuilt, drifted, err := e.standings.Rebuild(ctx, testRoom)
	require.NoError(t, err)
	assert.True(t, drifted)
	assert.Equal(t, 1, rebuilt.Neutral.ArgumentCount)
	assert.Equal(t, 2, rebuilt.TotalArguments())
	assert.NotEmpty(t, e.broadcaster.named(dto.EventScoreUpdated))

	cached, err := e.standings.Standings(ctx, testRoom)
	require.NoError(t, err)
	assert.Equal(t, 42, cached.Neutral.TotalPoints)
}

func TestStandingsService_UnknownRoom(t *testing.T) {
	e := newEngine(t)
	_, err := e.standings.Standings(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
	assert.NotContains(t, e.registry.LoadedRoomIDs(), "missing")
}
