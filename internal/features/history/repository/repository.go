package repository

import (
	"context"
	"errors"

	"gemini-relay-bot/internal/features/history/models"
)

var ErrMessageNotFound = errors.New("message not found")

type HistoryRepository interface {
	LogInteraction(ctx context.Context, userID int64, actionType string, actionData *string) error
	SaveMessage(ctx context.Context, msg *models.Message) (int64, error)
	SaveImageResult(ctx context.Context, result *models.ImageResult) (int64, error)
	ListMessages(ctx context.Context, userID int64, limit int) ([]*models.Message, error)
	ListInteractions(ctx context.Context, userID int64, limit int) ([]*models.Interaction, error)
	ListImageResults(ctx context.Context, userID int64, limit int) ([]*models.ImageResult, error)
	// UpdateMessageText changes a message owned by userID.
	UpdateMessageText(ctx context.Context, userID, id int64, text string) error
	CountByUser(ctx context.Context, userID int64) (*models.ActivityCounts, error)
}
