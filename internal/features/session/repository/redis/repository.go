package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/features/session/models"
	"gemini-relay-bot/internal/features/session/repository"
	redisplatform "gemini-relay-bot/internal/platform/redis"
)

const (
	keyPrefix = "session:"
	scanBatch = 500
)

type redisRepository struct {
	client redisplatform.Client
	ttl    time.Duration
}

// NewRedisRepository stores each session as a JSON value under session:<id>.
// Every write refreshes the key's TTL.
func NewRedisRepository(client redisplatform.Client, ttl time.Duration) repository.SessionRepository {
	return &redisRepository{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func (r *redisRepository) Get(ctx context.Context, userID int64) (models.Session, bool, error) {
	raw, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, apperrors.NewCacheError("get", err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// unreadable entries are dropped rather than blocking the user
		_ = r.client.Del(ctx, sessionKey(userID)).Err()
		return models.Session{}, false, nil
	}
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	return s, true, nil
}

func (r *redisRepository) Set(ctx context.Context, session models.Session) error {
	if session.UserID == 0 {
		return fmt.Errorf("cannot store session: user id is zero")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.UserID), raw, r.ttl).Err(); err != nil {
		return apperrors.NewCacheError("set", err)
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.NewCacheError("delete", err)
	}
	return nil
}

func (r *redisRepository) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return 0, apperrors.NewCacheError("scan", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
