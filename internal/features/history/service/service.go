package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/features/history/models"
	"gemini-relay-bot/internal/features/history/repository"
)

const maxEditsPerRequest = 100

type HistoryService interface {
	// LogInteraction appends an interaction row. Non-string data is stored as JSON.
	LogInteraction(ctx context.Context, userID int64, action string, data interface{}) error
	SaveMessage(ctx context.Context, msg *models.Message) (int64, error)
	SaveImageResult(ctx context.Context, result *models.ImageResult) (int64, error)
	Messages(ctx context.Context, userID int64, limit int) ([]*models.Message, error)
	Interactions(ctx context.Context, userID int64, limit int) ([]*models.Interaction, error)
	ImageResults(ctx context.Context, userID int64, limit int) ([]*models.ImageResult, error)
	Counts(ctx context.Context, userID int64) (*models.ActivityCounts, error)
	// EditMessages rewrites the text of messages owned by userID.
	EditMessages(ctx context.Context, userID int64, edits []models.MessageEdit) (int, error)
}

type historyService struct {
	repo repository.HistoryRepository
}

func NewHistoryService(repo repository.HistoryRepository) HistoryService {
	return &historyService{repo: repo}
}

func (s *historyService) LogInteraction(ctx context.Context, userID int64, action string, data interface{}) error {
	encoded, err := encodeActionData(data)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Interaction data cannot be encoded")
	}
	if err := s.repo.LogInteraction(ctx, userID, action, encoded); err != nil {
		return apperrors.NewDatabaseError("log interaction", err).WithUserID(userID)
	}
	return nil
}

func (s *historyService) SaveMessage(ctx context.Context, msg *models.Message) (int64, error) {
	id, err := s.repo.SaveMessage(ctx, msg)
	if err != nil {
		return 0, apperrors.NewDatabaseError("save message", err).WithUserID(msg.UserID)
	}
	return id, nil
}

func (s *historyService) SaveImageResult(ctx context.Context, result *models.ImageResult) (int64, error) {
	id, err := s.repo.SaveImageResult(ctx, result)
	if err != nil {
		return 0, apperrors.NewDatabaseError("save image result", err).WithUserID(result.UserID)
	}
	return id, nil
}

func (s *historyService) Messages(ctx context.Context, userID int64, limit int) ([]*models.Message, error) {
	msgs, err := s.repo.ListMessages(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list messages", err).WithUserID(userID)
	}
	return msgs, nil
}

func (s *historyService) Interactions(ctx context.Context, userID int64, limit int) ([]*models.Interaction, error) {
	items, err := s.repo.ListInteractions(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list interactions", err).WithUserID(userID)
	}
	return items, nil
}

func (s *historyService) ImageResults(ctx context.Context, userID int64, limit int) ([]*models.ImageResult, error) {
	results, err := s.repo.ListImageResults(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list image results", err).WithUserID(userID)
	}
	return results, nil
}

func (s *historyService) Counts(ctx context.Context, userID int64) (*models.ActivityCounts, error) {
	counts, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count activity", err).WithUserID(userID)
	}
	return counts, nil
}

func (s *historyService) EditMessages(ctx context.Context, userID int64, edits []models.MessageEdit) (int, error) {
	if len(edits) == 0 {
		return 0, apperrors.NewValidationError("messages", "at least one edit is required")
	}
	if len(edits) > maxEditsPerRequest {
		return 0, apperrors.NewValidationError("messages", fmt.Sprintf("at most %d edits per request", maxEditsPerRequest))
	}

	var (
		updated  int
		notFound []int64
	)
	for _, edit := range edits {
		text := strings.TrimSpace(edit.Text)
		err := s.repo.UpdateMessageText(ctx, userID, edit.ID, text)
		switch {
		case errors.Is(err, repository.ErrMessageNotFound):
			notFound = append(notFound, edit.ID)
		case err != nil:
			return updated, apperrors.NewDatabaseError("update message", err).WithUserID(userID)
		default:
			updated++
		}
	}

	if updated > 0 {
		if err := s.LogInteraction(ctx, userID, models.ActionMessagesEdited, map[string]int{"updated": updated}); err != nil {
			logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to log message edit")
		}
	}

	if len(notFound) > 0 {
		return updated, apperrors.NewNotFoundError("message", notFound).WithUserID(userID)
	}
	return updated, nil
}

func encodeActionData(data interface{}) (*string, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case *string:
		return v, nil
	case []byte:
		s := string(v)
		return &s, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}
