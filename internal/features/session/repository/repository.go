package repository

import (
	"context"

	"gemini-relay-bot/internal/features/session/models"
)

// SessionRepository stores sessions by user id. Implementations must be safe
// for concurrent use and may evict idle sessions.
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (models.Session, bool, error)
	Set(ctx context.Context, session models.Session) error
	Delete(ctx context.Context, userID int64) error
	Len(ctx context.Context) (int, error)
}
