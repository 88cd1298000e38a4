package service

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/repository"
)

// Broadcaster fans events out to connected sessions. Implementations must
// not block on slow sessions.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event dto.Event)
	SendToUser(roomID, userID string, event dto.Event)
}

// roomState is the in-process aggregate of one room. Every field is guarded
// by mu; different rooms never share a lock.
type roomState struct {
	mu          sync.Mutex
	loaded      bool
	room        domain.Room
	standings   domain.Standings
	leaderboard *domain.Leaderboard
	result      *domain.DebateResult
	// evaluated holds the MessageIDs already folded into standings.
	evaluated map[string]struct{}
}

// alreadyEvaluated reports whether messageID has been scored in this room.
// Submissions without a MessageID are never deduplicated.
func (st *roomState) alreadyEvaluated(messageID string) bool {
	if messageID == "" {
		return false
	}
	_, ok := st.evaluated[messageID]
	return ok
}

// fold applies an accepted evaluation to the aggregate.
func (st *roomState) fold(eval domain.Evaluation) {
	st.standings.Apply(eval)
	st.leaderboard.Apply(eval)
	if eval.MessageID != "" {
		st.evaluated[eval.MessageID] = struct{}{}
	}
}

// RoomRegistry owns the per-room aggregates and their locks.
type RoomRegistry struct {
	mu         sync.Mutex
	rooms      map[string]*roomState
	roomRepo   repository.RoomRepository
	evalRepo   repository.EvaluationRepository
	resultRepo repository.ResultRepository
}

// NewRoomRegistry creates an empty registry; rooms load lazily.
func NewRoomRegistry(roomRepo repository.RoomRepository, evalRepo repository.EvaluationRepository, resultRepo repository.ResultRepository) *RoomRegistry {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomRegistry")
	}
	if evalRepo == nil {
		panic("EvaluationRepository cannot be nil for RoomRegistry")
	}
	if resultRepo == nil {
		panic("ResultRepository cannot be nil for RoomRegistry")
	}
	return &RoomRegistry{
		rooms:      make(map[string]*roomState),
		roomRepo:   roomRepo,
		evalRepo:   evalRepo,
		resultRepo: resultRepo,
	}
}

func (r *RoomRegistry) entry(roomID string) *roomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[roomID]
	if !ok {
		st = &roomState{}
		r.rooms[roomID] = st
	}
	return st
}

func (r *RoomRegistry) forget(roomID string, st *roomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[roomID] == st {
		delete(r.rooms, roomID)
	}
}

// withRoom runs fn while holding the room's lock, loading the aggregate
// from the repositories on first use.
func (r *RoomRegistry) withRoom(ctx context.Context, roomID string, fn func(st *roomState) error) error {
	if roomID == "" {
		return ErrRoomNotFound
	}
	st := r.entry(roomID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.loaded {
		if err := r.load(ctx, roomID, st); err != nil {
			if errors.Is(err, ErrRoomNotFound) {
				r.forget(roomID, st)
			}
			return err
		}
	}
	return fn(st)
}

func (r *RoomRegistry) load(ctx context.Context, roomID string, st *roomState) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "loadRoom"})

	room, err := r.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to load room")
		return ErrInternalServer
	}
	room.Normalize()

	evals, err := r.evalRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load evaluations")
		return ErrInternalServer
	}

	var result *domain.DebateResult
	if room.Ended() {
		result, err = r.resultRepo.FindByRoom(ctx, roomID)
		if err != nil && !errors.Is(err, repository.ErrResultNotFound) {
			logCtx.WithError(err).Error("Failed to load debate result")
			return ErrInternalServer
		}
	}

	st.room = *room
	st.standings = domain.RebuildStandings(evals)
	st.leaderboard = domain.RebuildLeaderboard(evals)
	st.result = result
	st.evaluated = make(map[string]struct{}, len(evals))
	for _, e := range evals {
		if e.MessageID != "" {
			st.evaluated[e.MessageID] = struct{}{}
		}
	}
	st.loaded = true
	logCtx.WithField("evaluations", len(evals)).Debug("Room aggregate loaded")
	return nil
}

// LoadedRoomIDs lists the rooms currently held in memory.
func (r *RoomRegistry) LoadedRoomIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Room returns a copy of the room row as the engine currently sees it.
func (r *RoomRegistry) Room(ctx context.Context, roomID string) (*domain.Room, error) {
	var out domain.Room
	err := r.withRoom(ctx, roomID, func(st *roomState) error {
		out = st.room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
