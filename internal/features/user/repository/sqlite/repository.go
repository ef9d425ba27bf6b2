package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"

	"gemini-relay-bot/internal/features/user/models"
	"gemini-relay-bot/internal/features/user/repository"
)

type sqliteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) repository.UserRepository {
	return &sqliteRepository{db: db}
}

// Upsert creates the user or refreshes identity fields and last_activity.
// A default preferences row is created alongside a new user.
func (r *sqliteRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.LastActivity.IsZero() {
		user.LastActivity = now
	}

	const qUser = `
		INSERT INTO users (user_id, username, first_name, last_name, language_code, is_bot, chat_id, created_at, last_activity)
		VALUES (:user_id, :username, :first_name, :last_name, :language_code, :is_bot, :chat_id, :last_activity, :last_activity)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			language_code = excluded.language_code,
			is_bot = excluded.is_bot,
			chat_id = excluded.chat_id,
			last_activity = excluded.last_activity
	`
	if _, err := r.db.NamedExecContext(ctx, qUser, user); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	defaults := models.DefaultPreferences(user.ID)
	const qPrefs = `
		INSERT OR IGNORE INTO user_preferences (user_id, language, notifications, theme, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, qPrefs, user.ID, defaults.Language, defaults.Notifications, defaults.Theme, now); err != nil {
		return fmt.Errorf("failed to create preferences: %w", err)
	}

	return nil
}

func (r *sqliteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		SELECT user_id, COALESCE(username, '') AS username, COALESCE(first_name, '') AS first_name,
		       COALESCE(last_name, '') AS last_name, COALESCE(language_code, '') AS language_code,
		       is_bot, COALESCE(chat_id, 0) AS chat_id, created_at, last_activity
		FROM users
		WHERE user_id = ?
	`

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *sqliteRepository) List(ctx context.Context) ([]*models.User, error) {
	const query = `
		SELECT user_id, COALESCE(username, '') AS username, COALESCE(first_name, '') AS first_name,
		       COALESCE(last_name, '') AS last_name, COALESCE(language_code, '') AS language_code,
		       is_bot, COALESCE(chat_id, 0) AS chat_id, created_at, last_activity
		FROM users
		ORDER BY last_activity DESC
	`

	users := make([]*models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// GetPreferences returns stored preferences, or defaults when no row exists.
func (r *sqliteRepository) GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	const query = `
		SELECT user_id, language, notifications, theme, updated_at
		FROM user_preferences
		WHERE user_id = ?
	`

	var prefs models.Preferences
	if err := r.db.GetContext(ctx, &prefs, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultPreferences(userID)
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return &prefs, nil
}

func (r *sqliteRepository) UpdatePreference(ctx context.Context, userID int64, name, value string) error {
	column, err := preferenceColumn(name)
	if err != nil {
		return err
	}

	// column comes from a fixed whitelist
	query := fmt.Sprintf(`UPDATE user_preferences SET %s = ?, updated_at = ? WHERE user_id = ?`, column)

	result, err := r.db.ExecContext(ctx, query, value, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update preference: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// Dependent tables first so the foreign keys on users hold at every step.
var userDataTables = []string{
	"image_processing_results",
	"messages",
	"interactions",
	"user_preferences",
	"users",
}

func (r *sqliteRepository) DeleteUserData(ctx context.Context, userID int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	for _, table := range userDataTables {
		query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, table)
		if _, err = tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}

	return nil
}

func (r *sqliteRepository) Totals(ctx context.Context) (*models.Totals, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM messages) AS messages,
			(SELECT COUNT(*) FROM interactions) AS interactions
	`

	var totals models.Totals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	return &totals, nil
}

func preferenceColumn(name string) (string, error) {
	switch name {
	case models.PreferenceLanguage:
		return "language", nil
	case models.PreferenceNotifications:
		return "notifications", nil
	case models.PreferenceTheme:
		return "theme", nil
	}
	return "", fmt.Errorf("unknown preference %q", name)
}
