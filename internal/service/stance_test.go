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

func TestStanceService_ConcurrentFirstSelection(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	teams := []string{"favor", "against"}
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*domain.Stance, len(teams))
		errs    = make([]error, len(teams))
	)
	for i, team := range teams {
		wg.Add(1)
		go func(i int, team string) {
			defer wg.Done()
			<-start
			results[i], errs[i] = e.stances.SelectStance(ctx, testRoom, "u1", "alice", team)
		}(i, team)
	}
	close(start)
	wg.Wait()

	var winner *domain.Stance
	conflicts := 0
	for i := range teams {
		if errs[i] == nil {
			require.Nil(t, winner, "only one selection may succeed")
			winner = results[i]
		} else {
			assert.ErrorIs(t, errs[i], service.ErrStanceAlreadySelected)
			assert.ErrorIs(t, errs[i], service.ErrConflict)
			conflicts++
		}
	}
	require.NotNil(t, winner)
	assert.Equal(t, 1, conflicts)

	stored, err := e.stances.GetStance(ctx, testRoom, "u1")
	require.NoError(t, err)
	assert.Equal(t, winner.Team, stored.Team)
	assert.Len(t, e.broadcaster.named(dto.EventStanceSelected), 1)
}

func TestStanceService_RejectsUnknownTeam(t *testing.T) {
	e := newEngine(t)
	_, err := e.stances.SelectStance(context.Background(), testRoom, "u1", "alice", "maybe")
	assert.ErrorIs(t, err, service.ErrInvalidTeam)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestStanceService_GetStanceBeforeSelection(t *testing.T) {
	e := newEngine(t)
	stance, err := e.stances.GetStance(context.Background(), testRoom, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, stance)
}

func TestStanceService_UnknownRoom(t *testing.T) {
	e := newEngine(t)
	_, err := e.stances.SelectStance(context.Background(), "missing", "u1", "alice", "favor")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestStanceService_StorageFailureIsInternal(t *testing.T) {
	store := newEngine(t).store
	stanceRepo := mocks.NewStanceRepository(t)
	registry := service.NewRoomRegistry(store.RoomRepository(), store.EvaluationRepository(), store.ResultRepository())
	svc := service.NewStanceService(registry, stanceRepo, &recordingBroadcaster{})
	ctx := context.Background()

	stanceRepo.On("Find", ctx, testRoom, "u1").Return(nil, repository.ErrStanceNotFound).Once()
	stanceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Stance")).Return(errors.New("connection reset")).Once()

	_, err := svc.SelectStance(ctx, testRoom, "u1", "alice", "neutral")
	assert.ErrorIs(t, err, service.ErrInternalServer)
	assert.Equal(t, "internal", service.Kind(err))
}
