package repository

import (
	"context"

	"debate-arena/internal/domain"
)

// MessageRepository is the room message log.
type MessageRepository interface {
	// Append stores a new message and fills its Seq.
	Append(ctx context.Context, msg *domain.Message) error

	// FindByID returns ErrMessageNotFound for unknown ids or ids of another room.
	FindByID(ctx context.Context, roomID, messageID string) (*domain.Message, error)

	// SoftDelete writes the deleted state of msg (text, image, flags) in place.
	SoftDelete(ctx context.Context, msg *domain.Message) error

	// ListRecent returns up to limit newest messages, oldest first.
	ListRecent(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
}
