package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter"

	"gemini-relay-bot/internal/features/session/models"
	"gemini-relay-bot/internal/features/session/repository"
)

type memoryRepository struct {
	cache otter.Cache[int64, models.Session]
}

// NewMemoryRepository keeps sessions in process memory. Sessions idle for
// longer than ttl are evicted, as are the least valuable ones past capacity.
func NewMemoryRepository(capacity int, ttl time.Duration) (repository.SessionRepository, error) {
	c, err := otter.MustBuilder[int64, models.Session](capacity).WithTTL(ttl).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache with capacity %d: %w", capacity, err)
	}
	return &memoryRepository{cache: c}, nil
}

func (r *memoryRepository) Get(_ context.Context, userID int64) (models.Session, bool, error) {
	s, ok := r.cache.Get(userID)
	if !ok {
		return models.Session{}, false, nil
	}
	return s.Clone(), true, nil
}

func (r *memoryRepository) Set(_ context.Context, session models.Session) error {
	if session.UserID == 0 {
		return fmt.Errorf("cannot store session: user id is zero")
	}
	if !r.cache.Set(session.UserID, session.Clone()) {
		return fmt.Errorf("session cache rejected user %d", session.UserID)
	}
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, userID int64) error {
	r.cache.Delete(userID)
	return nil
}

func (r *memoryRepository) Len(_ context.Context) (int, error) {
	return r.cache.Size(), nil
}
