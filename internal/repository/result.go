package repository

import (
	"context"

	"debate-arena/internal/domain"
)

// ResultRepository stores one DebateResult per room.
type ResultRepository interface {
	// Save returns ErrDuplicateEntry if the room already has a result.
	Save(ctx context.Context, result *domain.DebateResult) error

	// FindByRoom returns ErrResultNotFound for rooms that have not ended.
	FindByRoom(ctx context.Context, roomID string) (*domain.DebateResult, error)
}

// ResultArchive keeps a document copy of finished debates.
type ResultArchive interface {
	Archive(ctx context.Context, result domain.DebateResult, evals []domain.Evaluation) error
}
