package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
)

// StandingsService exposes the cached team aggregates and rebuilds them
// from persisted evaluations.
type StandingsService struct {
	registry    *RoomRegistry
	broadcaster Broadcaster
}

func NewStandingsService(registry *RoomRegistry, broadcaster Broadcaster) *StandingsService {
	if registry == nil {
		panic("RoomRegistry cannot be nil for StandingsService")
	}
	if broadcaster == nil {
		panic("Broadcaster cannot be nil for StandingsService")
	}
	return &StandingsService{registry: registry, broadcaster: broadcaster}
}

// Standings is a read of the cached aggregate.
func (s *StandingsService) Standings(ctx context.Context, roomID string) (domain.Standings, error) {
	var out domain.Standings
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		out = st.standings.Clone()
		return nil
	})
	return out, err
}

// Rebuild refolds every persisted evaluation and replaces the cache. It
// reports whether the cached aggregate had drifted. Listing happens under
// the room lock so no evaluation can land between the read and the swap.
func (s *StandingsService) Rebuild(ctx context.Context, roomID string) (domain.Standings, bool, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "RebuildStandings"})

	var (
		rebuilt domain.Standings
		drifted bool
	)
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		evals, err := s.registry.evalRepo.ListByRoom(ctx, roomID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list evaluations")
			return ErrInternalServer
		}
		rebuilt = domain.RebuildStandings(evals)
		drifted = !sameStandings(st.standings, rebuilt)
		st.standings = rebuilt
		st.leaderboard = domain.RebuildLeaderboard(evals)
		rebuilt = rebuilt.Clone()
		return nil
	})
	if err != nil {
		return domain.Standings{}, false, err
	}

	if drifted {
		logCtx.Warn("Cached standings drifted from persisted evaluations, replaced")
		s.broadcaster.BroadcastToRoom(roomID, dto.Event{Event: dto.EventScoreUpdated, RoomID: roomID, Data: rebuilt})
	}
	return rebuilt, drifted, nil
}

func sameStandings(a, b domain.Standings) bool {
	at, bt := a.All(), b.All()
	for i := range at {
		if at[i].TotalPoints != bt[i].TotalPoints ||
			at[i].ArgumentCount != bt[i].ArgumentCount ||
			at[i].ParticipantCount() != bt[i].ParticipantCount() {
			return false
		}
	}
	return true
}
