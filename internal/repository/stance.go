package repository

import (
	"context"

	"debate-arena/internal/domain"
)

// StanceRepository stores write-once stances.
type StanceRepository interface {
	// Create must return ErrDuplicateEntry if (roomID, userID) already has a stance.
	Create(ctx context.Context, stance *domain.Stance) error

	// Find returns ErrStanceNotFound when the user has not chosen yet.
	Find(ctx context.Context, roomID, userID string) (*domain.Stance, error)
}
