package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"debate-arena/internal/domain"
	"debate-arena/internal/repository"
)

// GormMessageRepository stores the room message log.
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

// Append inserts the message; the auto-increment primary key becomes Seq.
func (r *GormMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: append message %s to room %s: %w", msg.ID, msg.RoomID, err)
	}
	return nil
}

func (r *GormMessageRepository) FindByID(ctx context.Context, roomID, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).Where("room_id = ? AND id = ?", roomID, messageID).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMessageNotFound
		}
		return nil, fmt.Errorf("gorm: find message %s in room %s: %w", messageID, roomID, err)
	}
	return &msg, nil
}

// SoftDelete only touches the deletion columns; the row is never removed.
func (r *GormMessageRepository) SoftDelete(ctx context.Context, msg *domain.Message) error {
	result := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("room_id = ? AND id = ?", msg.RoomID, msg.ID).
		Updates(map[string]interface{}{
			"text":       msg.Text,
			"image":      gorm.Expr("NULL"),
			"is_deleted": true,
			"deleted_at": msg.DeletedAt,
			"deleted_by": msg.DeletedBy,
		})
	if result.Error != nil {
		return fmt.Errorf("gorm: soft delete message %s: %w", msg.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrMessageNotFound
	}
	return nil
}

// ListRecent selects the newest rows and reverses them into chronological order.
func (r *GormMessageRepository) ListRecent(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = domain.ReplayLimit
	}
	var msgs []domain.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("time desc").Order("seq desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list recent messages of room %s: %w", roomID, err)
	}
	domain.SortChronological(msgs)
	return msgs, nil
}
