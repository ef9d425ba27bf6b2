package repository

import (
	"context"
	"errors"

	"gemini-relay-bot/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error)
	UpdatePreference(ctx context.Context, userID int64, name, value string) error
	// DeleteUserData erases every row owned by the user in one transaction.
	DeleteUserData(ctx context.Context, userID int64) error
	Totals(ctx context.Context) (*models.Totals, error)
}
