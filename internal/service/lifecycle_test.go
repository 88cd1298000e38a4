package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/repository"
	"debate-arena/internal/repository/mocks"
	"debate-arena/internal/service"
)

func TestLifecycleService_EligibilityShortfall(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	elig, err := e.lifecycle.CanEnd(ctx, testRoom)
	require.NoError(t, err)
	assert.False(t, elig.CanEnd)
	assert.Contains(t, elig.Reason, "insufficient teams")

	e.argue(t, "f1", domain.TeamFavor, 3)
	e.argue(t, "a1", domain.TeamAgainst, 2)

	elig, err = e.lifecycle.CanEnd(ctx, testRoom)
	require.NoError(t, err)
	assert.False(t, elig.CanEnd)
	assert.Contains(t, elig.Reason, "against")
	assert.NotContains(t, elig.Reason, "neutral", "teams without participants are exempt")
	assert.Equal(t, 5, elig.TotalArguments)

	_, err = e.lifecycle.End(ctx, testRoom, "f1", "")
	assert.ErrorIs(t, err, service.ErrNotEligible)
	assert.Equal(t, "not_eligible", service.Kind(err))

	e.argue(t, "a1", domain.TeamAgainst, 1)
	elig, err = e.lifecycle.CanEnd(ctx, testRoom)
	require.NoError(t, err)
	assert.True(t, elig.CanEnd)
}

func TestLifecycleService_ConcurrentEndIsIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.argue(t, "f1", domain.TeamFavor, 3)
	e.scorer.set(8, nil)
	e.argue(t, "a1", domain.TeamAgainst, 3)

	const callers = 8
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*domain.DebateResult, callers)
		errs    = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = e.lifecycle.End(ctx, testRoom, "f1", "time is up")
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].WinningTeam, results[i].WinningTeam)
		assert.True(t, results[0].CalculatedAt.Equal(results[i].CalculatedAt))
	}
	assert.Equal(t, domain.WinnerAgainst, results[0].WinningTeam)
	assert.InDelta(t, 60.0, results[0].MarginOfVictory, 1e-9)
	assert.Len(t, e.broadcaster.named(dto.EventDebateEnded), 1)
	assert.Equal(t, []string{testRoom}, e.archiver.rooms)

	room, err := e.store.RoomRepository().FindByID(ctx, testRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.DebateEnded, room.DebateStatus)
	assert.Equal(t, domain.WinnerAgainst, room.Winner)
	assert.False(t, room.IsActive)
}

func TestLifecycleService_TieBelowMarginThreshold(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.lifecycle.UpdateSettings(ctx, testRoom, "creator", domain.Settings{MinArgumentsPerTeam: 1, WinMarginThreshold: 50}))

	e.scorer.set(8, nil)
	e.argue(t, "f1", domain.TeamFavor, 1)
	e.scorer.set(6, nil)
	e.argue(t, "a1", domain.TeamAgainst, 1)

	result, err := e.lifecycle.End(ctx, testRoom, "f1", "")
	require.NoError(t, err)
	// 48 vs 36: gap is 33.33% of the runner-up, below 50.
	assert.Equal(t, domain.WinnerTie, result.WinningTeam)
	assert.InDelta(t, 33.33, result.MarginOfVictory, 1e-9)
}

func TestLifecycleService_ResultsAndAwards(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.lifecycle.Results(ctx, testRoom)
	assert.ErrorIs(t, err, service.ErrResultNotFound)

	e.argue(t, "f1", domain.TeamFavor, 3)
	e.scorer.set(9, nil)
	e.argue(t, "a1", domain.TeamAgainst, 2)
	e.argue(t, "a2", domain.TeamAgainst, 1)
	_, err = e.lifecycle.End(ctx, testRoom, "a1", "")
	require.NoError(t, err)

	res, err := e.lifecycle.Results(ctx, testRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.WinnerAgainst, res.Winner)
	require.NotNil(t, res.Awards.BestArgument)
	assert.Equal(t, "a1", res.Awards.BestArgument.UserID)
	assert.Equal(t, 54, res.Awards.BestArgument.Value)
	require.NotNil(t, res.Awards.MostActive)
	assert.Equal(t, "f1", res.Awards.MostActive.UserID)
	assert.Equal(t, 3, res.Awards.MostActive.Value)
	require.Len(t, res.Leaderboard, 3)
	assert.Equal(t, "a1", res.Leaderboard[0].UserID)

	status, err := e.lifecycle.Status(ctx, testRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.DebateEnded, status.Status)
	assert.False(t, status.CanEnd)
}

func TestLifecycleService_SettingsRules(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	err := e.lifecycle.UpdateSettings(ctx, testRoom, "creator", domain.Settings{MinArgumentsPerTeam: 0, WinMarginThreshold: 10})
	assert.ErrorIs(t, err, service.ErrInvalidSettings)
	err = e.lifecycle.UpdateSettings(ctx, testRoom, "creator", domain.Settings{MinArgumentsPerTeam: 2, WinMarginThreshold: 120})
	assert.ErrorIs(t, err, service.ErrInvalidSettings)
	err = e.lifecycle.UpdateSettings(ctx, testRoom, "someone-else", domain.Settings{MinArgumentsPerTeam: 2, WinMarginThreshold: 10})
	assert.ErrorIs(t, err, service.ErrNotRoomCreator)

	require.NoError(t, e.lifecycle.UpdateSettings(ctx, testRoom, "creator", domain.Settings{MinArgumentsPerTeam: 1, WinMarginThreshold: 5}))
	e.argue(t, "f1", domain.TeamFavor, 1)
	e.argue(t, "a1", domain.TeamAgainst, 1)
	_, err = e.lifecycle.End(ctx, testRoom, "f1", "")
	require.NoError(t, err)

	err = e.lifecycle.UpdateSettings(ctx, testRoom, "creator", domain.Settings{MinArgumentsPerTeam: 3, WinMarginThreshold: 10})
	assert.ErrorIs(t, err, service.ErrDebateEnded)
	assert.Equal(t, "conflict", service.Kind(err))
}

func TestLifecycleService_ScoreboardProjectsWinner(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.argue(t, "f1", domain.TeamFavor, 1)
	e.scorer.set(9, nil)
	e.argue(t, "a1", domain.TeamAgainst, 1)

	board, err := e.lifecycle.Scoreboard(ctx, testRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.WinnerAgainst, board.Winner)
	assert.Equal(t, domain.DebateActive, board.Status)
	assert.False(t, board.CanEnd)
	require.Len(t, board.Leaderboard, 2)
	assert.Equal(t, "a1", board.Leaderboard[0].UserID)
}

func TestLifecycleService_AdoptsResultStoredElsewhere(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.argue(t, "f1", domain.TeamFavor, 3)
	e.argue(t, "a1", domain.TeamAgainst, 3)

	stored := &domain.DebateResult{RoomID: testRoom, WinningTeam: domain.WinnerFavor, MarginOfVictory: 12.5}
	resultRepo := mocks.NewResultRepository(t)
	resultRepo.On("Save", ctx, mock.AnythingOfType("*domain.DebateResult")).Return(repository.ErrDuplicateEntry).Once()
	resultRepo.On("FindByRoom", ctx, testRoom).Return(stored, nil).Once()

	registry := service.NewRoomRegistry(e.store.RoomRepository(), e.store.EvaluationRepository(), resultRepo)
	broadcaster := &recordingBroadcaster{}
	lifecycle := service.NewLifecycleService(registry, e.store.RoomRepository(), e.store.EvaluationRepository(), resultRepo, broadcaster, nil)

	result, err := lifecycle.End(ctx, testRoom, "f1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.WinnerFavor, result.WinningTeam)
	assert.Empty(t, broadcaster.named(dto.EventDebateEnded), "the other process already announced the end")
}

func TestLifecycleService_StatusWriteFailureKeepsRoomActive(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.argue(t, "f1", domain.TeamFavor, 3)
	e.argue(t, "a1", domain.TeamAgainst, 3)

	roomRepo := mocks.NewRoomRepository(t)
	roomRepo.On("FindByID", ctx, testRoom).
		Return(&domain.Room{ID: testRoom, Topic: "Cities should ban cars", CreatorID: "creator", IsActive: true}, nil).Once()
	roomRepo.On("UpdateStatus", ctx, testRoom, domain.DebateEnded, mock.AnythingOfType("domain.Winner"), false).
		Return(errors.New("lock wait timeout")).Once()

	registry := service.NewRoomRegistry(roomRepo, e.store.EvaluationRepository(), e.store.ResultRepository())
	lifecycle := service.NewLifecycleService(registry, roomRepo, e.store.EvaluationRepository(), e.store.ResultRepository(), &recordingBroadcaster{}, nil)

	_, err := lifecycle.End(ctx, testRoom, "f1", "")
	assert.ErrorIs(t, err, service.ErrInternalServer)

	board, err := lifecycle.Scoreboard(ctx, testRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.DebateActive, board.Status)

	// The result row was written; a retry adopts it once the status write succeeds.
	roomRepo.On("UpdateStatus", ctx, testRoom, domain.DebateEnded, mock.AnythingOfType("domain.Winner"), false).Return(nil).Once()
	result, err := lifecycle.End(ctx, testRoom, "f1", "")
	require.NoError(t, err)
	assert.Equal(t, 6, result.TotalArguments)

	board, err = lifecycle.Scoreboard(ctx, testRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.DebateEnded, board.Status)
}
