package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/repository"
)

// StanceService is the stance registry: one immutable team per user per room.
type StanceService struct {
	registry    *RoomRegistry
	stanceRepo  repository.StanceRepository
	broadcaster Broadcaster
}

// NewStanceService creates a StanceService.
func NewStanceService(registry *RoomRegistry, stanceRepo repository.StanceRepository, broadcaster Broadcaster) *StanceService {
	if registry == nil {
		panic("RoomRegistry cannot be nil for StanceService")
	}
	if stanceRepo == nil {
		panic("StanceRepository cannot be nil for StanceService")
	}
	if broadcaster == nil {
		panic("Broadcaster cannot be nil for StanceService")
	}
	return &StanceService{registry: registry, stanceRepo: stanceRepo, broadcaster: broadcaster}
}

// SelectStance records the user's team. The check and the insert run under
// the room lock, and the unique index rejects anything that slips past it,
// so exactly one of several concurrent first selections succeeds.
func (s *StanceService) SelectStance(ctx context.Context, roomID, userID, username, rawTeam string) (*domain.Stance, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "team": rawTeam})

	team, err := domain.ParseTeam(rawTeam)
	if err != nil {
		logCtx.Warn("Rejected stance with unknown team")
		return nil, ErrInvalidTeam
	}
	if userID == "" {
		return nil, ErrStanceRequired
	}

	var stance *domain.Stance
	err = s.registry.withRoom(ctx, roomID, func(_ *roomState) error {
		existing, err := s.stanceRepo.Find(ctx, roomID, userID)
		if err == nil && existing != nil {
			return ErrStanceAlreadySelected
		}
		if err != nil && !errors.Is(err, repository.ErrStanceNotFound) {
			logCtx.WithError(err).Error("Failed to look up stance")
			return ErrInternalServer
		}

		candidate := &domain.Stance{
			RoomID:     roomID,
			UserID:     userID,
			Username:   username,
			Team:       team,
			SelectedAt: time.Now().UTC(),
		}
		if err := s.stanceRepo.Create(ctx, candidate); err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				return ErrStanceAlreadySelected
			}
			logCtx.WithError(err).Error("Failed to save stance")
			return ErrInternalServer
		}
		stance = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStanceAlreadySelected) {
			logCtx.Warn("Stance already selected")
		}
		return nil, err
	}

	s.broadcaster.BroadcastToRoom(roomID, dto.Event{Event: dto.EventStanceSelected, RoomID: roomID, Data: stance})
	logCtx.Info("Stance selected")
	return stance, nil
}

// GetStance returns nil without error when the user has not chosen yet.
func (s *StanceService) GetStance(ctx context.Context, roomID, userID string) (*domain.Stance, error) {
	stance, err := s.stanceRepo.Find(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrStanceNotFound) {
			return nil, nil
		}
		logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).WithError(err).Error("Failed to get stance")
		return nil, ErrInternalServer
	}
	return stance, nil
}
