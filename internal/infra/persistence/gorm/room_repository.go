package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"debate-arena/internal/domain"
	"debate-arena/internal/repository"
)

// GormRoomRepository is the GORM implementation of RoomRepository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// FindByID loads a room by its id.
func (r *GormRoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %s: %w", id, err)
	}
	room.Normalize()
	return &room, nil
}

// UpdateStatus writes the lifecycle columns only. Map updates are used so
// that isActive=false is not skipped as a zero value.
func (r *GormRoomRepository) UpdateStatus(ctx context.Context, id string, status domain.DebateStatus, winner domain.Winner, isActive bool) error {
	result := r.db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Updates(map[string]interface{}{
		"debate_status": status,
		"winner":        winner,
		"is_active":     isActive,
	})
	if result.Error != nil {
		return fmt.Errorf("gorm: update status of room %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrRoomNotFound
	}
	return nil
}

// UpdateSettings writes the embedded settings columns.
func (r *GormRoomRepository) UpdateSettings(ctx context.Context, id string, settings domain.Settings) error {
	result := r.db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Updates(map[string]interface{}{
		"setting_min_arguments_per_team": settings.MinArgumentsPerTeam,
		"setting_win_margin_threshold":   settings.WinMarginThreshold,
	})
	if result.Error != nil {
		return fmt.Errorf("gorm: update settings of room %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrRoomNotFound
	}
	return nil
}
