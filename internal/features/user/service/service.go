package service

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/features/user/models"
	"gemini-relay-bot/internal/features/user/repository"
)

type UserService interface {
	// Register upserts the user and refreshes last_activity.
	Register(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetPreferences(ctx context.Context, id int64) (*models.Preferences, error)
	UpdatePreference(ctx context.Context, id int64, name, value string) (*models.Preferences, error)
	// EraseUserData removes every row owned by the user, atomically.
	EraseUserData(ctx context.Context, id int64) error
	Totals(ctx context.Context) (*models.Totals, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Register(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == 0 {
		return apperrors.NewValidationError("user_id", "must be set")
	}
	user.LastActivity = time.Now().UTC()
	if err := s.repo.Upsert(ctx, user); err != nil {
		return apperrors.NewDatabaseError("upsert user", err).WithUserID(user.ID)
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseError("get user", err).WithUserID(id)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}
	return users, nil
}

func (s *userService) GetPreferences(ctx context.Context, id int64) (*models.Preferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, id)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get preferences", err).WithUserID(id)
	}
	return prefs, nil
}

func (s *userService) UpdatePreference(ctx context.Context, id int64, name, value string) (*models.Preferences, error) {
	if err := validation.Validate(name, validation.Required, validation.By(knownPreference)); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidPreference, "Unknown preference").
			WithDetail("preference_name", name).
			WithDetail("allowed", []string{models.PreferenceLanguage, models.PreferenceNotifications, models.PreferenceTheme})
	}
	allowed := models.PreferenceValues[name]
	if err := validation.Validate(value, validation.Required, validation.In(toInterfaces(allowed)...)); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidPreference, "Invalid preference value").
			WithDetail("preference_name", name).
			WithDetail("preference_value", value).
			WithDetail("allowed", allowed)
	}

	if err := s.repo.UpdatePreference(ctx, id, name, value); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseError("update preference", err).WithUserID(id)
	}

	logger.Info().Int64("user_id", id).Str("preference", name).Str("value", value).Msg("Preference updated")
	return s.GetPreferences(ctx, id)
}

func (s *userService) EraseUserData(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUserData(ctx, id); err != nil {
		return apperrors.NewTransactionError("delete user data", err).WithUserID(id)
	}
	logger.Info().Int64("user_id", id).Msg("User data erased")
	return nil
}

func (s *userService) Totals(ctx context.Context) (*models.Totals, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count rows", err)
	}
	return totals, nil
}

func knownPreference(value interface{}) error {
	name, _ := value.(string)
	if !models.IsKnownPreference(name) {
		return errors.New("unknown preference")
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
