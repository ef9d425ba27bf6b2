package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gemini-relay-bot/internal/features/history/models"
	"gemini-relay-bot/internal/features/history/repository"
)

// Listing without an explicit limit is capped at this many rows.
const defaultListLimit = 100

type sqliteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) repository.HistoryRepository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) LogInteraction(ctx context.Context, userID int64, actionType string, actionData *string) error {
	const query = `INSERT INTO interactions (user_id, action_type, action_data, timestamp) VALUES (?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, actionType, actionData, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}

func (r *sqliteRepository) SaveMessage(ctx context.Context, msg *models.Message) (int64, error) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	const query = `
		INSERT INTO messages (user_id, chat_id, message_id, message_text, message_type, has_media, media_type, timestamp)
		VALUES (:user_id, :chat_id, :message_id, :message_text, :message_type, :has_media, :media_type, :timestamp)
	`
	result, err := r.db.NamedExecContext(ctx, query, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to save message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get message id: %w", err)
	}
	msg.ID = id

	return id, nil
}

func (r *sqliteRepository) SaveImageResult(ctx context.Context, res *models.ImageResult) (int64, error) {
	if res.ProcessedAt.IsZero() {
		res.ProcessedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO image_processing_results (user_id, message_id, file_id, gemini_response, processed_at)
		VALUES (:user_id, :message_id, :file_id, :gemini_response, :processed_at)
	`
	result, err := r.db.NamedExecContext(ctx, query, res)
	if err != nil {
		return 0, fmt.Errorf("failed to save image result: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get image result id: %w", err)
	}
	res.ID = id

	return id, nil
}

func (r *sqliteRepository) ListMessages(ctx context.Context, userID int64, limit int) ([]*models.Message, error) {
	const query = `
		SELECT id, user_id, chat_id, message_id, message_text, message_type, has_media, media_type, timestamp
		FROM messages
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	messages := make([]*models.Message, 0)
	if err := r.db.SelectContext(ctx, &messages, query, userID, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *sqliteRepository) ListInteractions(ctx context.Context, userID int64, limit int) ([]*models.Interaction, error) {
	const query = `
		SELECT id, user_id, action_type, action_data, timestamp
		FROM interactions
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	interactions := make([]*models.Interaction, 0)
	if err := r.db.SelectContext(ctx, &interactions, query, userID, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return interactions, nil
}

func (r *sqliteRepository) ListImageResults(ctx context.Context, userID int64, limit int) ([]*models.ImageResult, error) {
	const query = `
		SELECT id, user_id, message_id, file_id, gemini_response, processed_at
		FROM image_processing_results
		WHERE user_id = ?
		ORDER BY processed_at DESC, id DESC
		LIMIT ?
	`

	results := make([]*models.ImageResult, 0)
	if err := r.db.SelectContext(ctx, &results, query, userID, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list image results: %w", err)
	}
	return results, nil
}

func (r *sqliteRepository) UpdateMessageText(ctx context.Context, userID, id int64, text string) error {
	const query = `UPDATE messages SET message_text = ? WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, text, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrMessageNotFound
	}

	return nil
}

func (r *sqliteRepository) CountByUser(ctx context.Context, userID int64) (*models.ActivityCounts, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM messages WHERE user_id = ?) AS messages,
			(SELECT COUNT(*) FROM interactions WHERE user_id = ?) AS interactions,
			(SELECT COUNT(*) FROM image_processing_results WHERE user_id = ?) AS images
	`

	var counts models.ActivityCounts
	if err := r.db.GetContext(ctx, &counts, query, userID, userID, userID); err != nil {
		return nil, fmt.Errorf("failed to count user activity: %w", err)
	}
	return &counts, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}
