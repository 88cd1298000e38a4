package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"debate-arena/internal/domain"
)

// GormEvaluationRepository stores argument evaluations.
type GormEvaluationRepository struct {
	db *gorm.DB
}

func NewGormEvaluationRepository(db *gorm.DB) *GormEvaluationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormEvaluationRepository")
	}
	return &GormEvaluationRepository{db: db}
}

func (r *GormEvaluationRepository) Save(ctx context.Context, eval *domain.Evaluation) error {
	if err := r.db.WithContext(ctx).Create(eval).Error; err != nil {
		return fmt.Errorf("gorm: save evaluation for user %s in room %s: %w", eval.UserID, eval.RoomID, err)
	}
	return nil
}

func (r *GormEvaluationRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Evaluation, error) {
	var evals []domain.Evaluation
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("evaluated_at asc").Order("id asc").
		Find(&evals).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list evaluations of room %s: %w", roomID, err)
	}
	return evals, nil
}
