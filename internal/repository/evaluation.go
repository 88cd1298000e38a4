package repository

import (
	"context"

	"debate-arena/internal/domain"
)

// EvaluationRepository stores immutable argument evaluations.
type EvaluationRepository interface {
	Save(ctx context.Context, eval *domain.Evaluation) error

	// ListByRoom returns every evaluation of a room in evaluation order.
	ListByRoom(ctx context.Context, roomID string) ([]domain.Evaluation, error)
}
