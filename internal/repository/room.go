package repository

import (
	"context"

	"debate-arena/internal/domain"
)

// RoomRepository reads rooms owned by the room CRUD collaborator and writes
// back the engine-owned fields.
type RoomRepository interface {
	// FindByID returns ErrRoomNotFound when the room does not exist.
	FindByID(ctx context.Context, id string) (*domain.Room, error)

	// UpdateStatus persists debateStatus, winner and isActive.
	UpdateStatus(ctx context.Context, id string, status domain.DebateStatus, winner domain.Winner, isActive bool) error

	// UpdateSettings persists lifecycle settings.
	UpdateSettings(ctx context.Context, id string, settings domain.Settings) error
}
