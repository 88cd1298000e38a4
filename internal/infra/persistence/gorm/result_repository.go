package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"debate-arena/internal/domain"
	"debate-arena/internal/repository"
)

// GormResultRepository stores one debate result per room (unique room_id).
type GormResultRepository struct {
	db *gorm.DB
}

func NewGormResultRepository(db *gorm.DB) *GormResultRepository {
	if db == nil {
		panic("database connection cannot be nil for GormResultRepository")
	}
	return &GormResultRepository{db: db}
}

func (r *GormResultRepository) Save(ctx context.Context, result *domain.DebateResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save debate result of room %s: %w", result.RoomID, err)
	}
	return nil
}

func (r *GormResultRepository) FindByRoom(ctx context.Context, roomID string) (*domain.DebateResult, error) {
	var result domain.DebateResult
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrResultNotFound
		}
		return nil, fmt.Errorf("gorm: find debate result of room %s: %w", roomID, err)
	}
	return &result, nil
}
