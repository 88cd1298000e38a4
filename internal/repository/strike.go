package repository

import "context"

// StrikeRepository counts AI-content detections per user per room.
type StrikeRepository interface {
	// Increment adds one strike and returns the new count.
	Increment(ctx context.Context, roomID, userID string) (int64, error)

	// Count returns the current count, 0 when none recorded.
	Count(ctx context.Context, roomID, userID string) (int64, error)
}
