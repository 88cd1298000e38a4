package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"debate-arena/internal/domain"
	"debate-arena/internal/repository"
)

// GormStanceRepository is the GORM implementation of StanceRepository. The
// unique index on (room_id, user_id) backs the write-once rule.
type GormStanceRepository struct {
	db *gorm.DB
}

func NewGormStanceRepository(db *gorm.DB) *GormStanceRepository {
	if db == nil {
		panic("database connection cannot be nil for GormStanceRepository")
	}
	return &GormStanceRepository{db: db}
}

func (r *GormStanceRepository) Create(ctx context.Context, stance *domain.Stance) error {
	if err := r.db.WithContext(ctx).Create(stance).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create stance (room %s, user %s): %w", stance.RoomID, stance.UserID, err)
	}
	return nil
}

func (r *GormStanceRepository) Find(ctx context.Context, roomID, userID string) (*domain.Stance, error) {
	var stance domain.Stance
	err := r.db.WithContext(ctx).Where("room_id = ? AND user_id = ?", roomID, userID).First(&stance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrStanceNotFound
		}
		return nil, fmt.Errorf("gorm: find stance (room %s, user %s): %w", roomID, userID, err)
	}
	return &stance, nil
}
