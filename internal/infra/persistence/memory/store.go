// Package memory holds process-local repository implementations. They are
// used by STORAGE_DRIVER=memory and by tests that need real uniqueness and
// ordering behaviour rather than mocks.
package memory

import (
	"context"
	"sync"

	"debate-arena/internal/domain"
	"debate-arena/internal/repository"
)

// Store is the shared backing state of the memory repositories.
type Store struct {
	mu          sync.Mutex
	rooms       map[string]domain.Room
	stances     map[string]domain.Stance
	messages    map[string][]*domain.Message
	evaluations map[string][]domain.Evaluation
	results     map[string]domain.DebateResult
	strikes     map[string]int64

	nextMessageSeq uint64
	nextEvalID     uint
	nextStanceID   uint
	nextResultID   uint
}

func NewStore() *Store {
	return &Store{
		rooms:       make(map[string]domain.Room),
		stances:     make(map[string]domain.Stance),
		messages:    make(map[string][]*domain.Message),
		evaluations: make(map[string][]domain.Evaluation),
		results:     make(map[string]domain.DebateResult),
		strikes:     make(map[string]int64),
	}
}

func pairKey(roomID, userID string) string { return roomID + "\x00" + userID }

// PutRoom seeds a room, standing in for the room CRUD collaborator.
func (s *Store) PutRoom(room domain.Room) {
	room.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

// RoomRepository returns the room view of the store.
func (s *Store) RoomRepository() *RoomRepository { return &RoomRepository{s: s} }

// StanceRepository returns the stance view of the store.
func (s *Store) StanceRepository() *StanceRepository { return &StanceRepository{s: s} }

// MessageRepository returns the message view of the store.
func (s *Store) MessageRepository() *MessageRepository { return &MessageRepository{s: s} }

// EvaluationRepository returns the evaluation view of the store.
func (s *Store) EvaluationRepository() *EvaluationRepository { return &EvaluationRepository{s: s} }

// ResultRepository returns the result view of the store.
func (s *Store) ResultRepository() *ResultRepository { return &ResultRepository{s: s} }

// StrikeRepository returns the strike-counter view of the store.
func (s *Store) StrikeRepository() *StrikeRepository { return &StrikeRepository{s: s} }

type RoomRepository struct{ s *Store }

func (r *RoomRepository) FindByID(_ context.Context, id string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &room, nil
}

func (r *RoomRepository) UpdateStatus(_ context.Context, id string, status domain.DebateStatus, winner domain.Winner, isActive bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	room.DebateStatus, room.Winner, room.IsActive = status, winner, isActive
	r.s.rooms[id] = room
	return nil
}

func (r *RoomRepository) UpdateSettings(_ context.Context, id string, settings domain.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	room.Settings = settings
	r.s.rooms[id] = room
	return nil
}

type StanceRepository struct{ s *Store }

func (r *StanceRepository) Create(_ context.Context, stance *domain.Stance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(stance.RoomID, stance.UserID)
	if _, exists := r.s.stances[key]; exists {
		return repository.ErrDuplicateEntry
	}
	r.s.nextStanceID++
	stance.ID = r.s.nextStanceID
	r.s.stances[key] = *stance
	return nil
}

func (r *StanceRepository) Find(_ context.Context, roomID, userID string) (*domain.Stance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stance, ok := r.s.stances[pairKey(roomID, userID)]
	if !ok {
		return nil, repository.ErrStanceNotFound
	}
	return &stance, nil
}

type MessageRepository struct{ s *Store }

func (r *MessageRepository) Append(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages[msg.RoomID] {
		if m.ID == msg.ID {
			return repository.ErrDuplicateEntry
		}
	}
	r.s.nextMessageSeq++
	msg.Seq = r.s.nextMessageSeq
	stored := *msg
	r.s.messages[msg.RoomID] = append(r.s.messages[msg.RoomID], &stored)
	return nil
}

func (r *MessageRepository) FindByID(_ context.Context, roomID, messageID string) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages[roomID] {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrMessageNotFound
}

func (r *MessageRepository) SoftDelete(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages[msg.RoomID] {
		if m.ID == msg.ID {
			m.Text = msg.Text
			m.Image = nil
			m.IsDeleted = true
			m.DeletedAt = msg.DeletedAt
			m.DeletedBy = msg.DeletedBy
			return nil
		}
	}
	return repository.ErrMessageNotFound
}

func (r *MessageRepository) ListRecent(_ context.Context, roomID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = domain.ReplayLimit
	}
	r.s.mu.Lock()
	all := make([]domain.Message, 0, len(r.s.messages[roomID]))
	for _, m := range r.s.messages[roomID] {
		all = append(all, *m)
	}
	r.s.mu.Unlock()

	domain.SortChronological(all)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type EvaluationRepository struct{ s *Store }

func (r *EvaluationRepository) Save(_ context.Context, eval *domain.Evaluation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextEvalID++
	eval.ID = r.s.nextEvalID
	r.s.evaluations[eval.RoomID] = append(r.s.evaluations[eval.RoomID], *eval)
	return nil
}

func (r *EvaluationRepository) ListByRoom(_ context.Context, roomID string) ([]domain.Evaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Evaluation(nil), r.s.evaluations[roomID]...), nil
}

type ResultRepository struct{ s *Store }

func (r *ResultRepository) Save(_ context.Context, result *domain.DebateResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.results[result.RoomID]; exists {
		return repository.ErrDuplicateEntry
	}
	r.s.nextResultID++
	result.ID = r.s.nextResultID
	r.s.results[result.RoomID] = *result
	return nil
}

func (r *ResultRepository) FindByRoom(_ context.Context, roomID string) (*domain.DebateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result, ok := r.s.results[roomID]
	if !ok {
		return nil, repository.ErrResultNotFound
	}
	return &result, nil
}

type StrikeRepository struct{ s *Store }

func (r *StrikeRepository) Increment(_ context.Context, roomID, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(roomID, userID)
	r.s.strikes[key]++
	return r.s.strikes[key], nil
}

func (r *StrikeRepository) Count(_ context.Context, roomID, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.strikes[pairKey(roomID, userID)], nil
}
