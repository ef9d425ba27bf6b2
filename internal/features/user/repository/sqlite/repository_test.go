package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-relay-bot/internal/features/user/models"
	"gemini-relay-bot/internal/features/user/repository"
	platform "gemini-relay-bot/internal/platform/sqlite"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	c, err := platform.NewClient(context.Background(), filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c.GetDB()
}

func seedUserRows(t *testing.T, db *sqlx.DB, userID int64) {
	t.Helper()
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `INSERT INTO interactions (user_id, action_type, action_data) VALUES (?, 'button_click', 'menu1')`, userID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO messages (user_id, chat_id, message_id, message_text, message_type) VALUES (?, ?, 1, 'hi', 'text')`, userID, userID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO image_processing_results (user_id, message_id, file_id, gemini_response) VALUES (?, 1, 'file', '{}')`, userID)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sqlx.DB, table string, userID int64) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table+" WHERE user_id = ?", userID))
	return n
}

func TestUpsertCreatesUserAndPreferences(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := repo.Upsert(ctx, &models.User{ID: 10, Username: "ana", FirstName: "Ana", ChatID: 10})
	require.NoError(t, err)

	u, err := repo.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, int64(10), u.ChatID)
	assert.False(t, u.CreatedAt.IsZero())

	prefs, err := repo.GetPreferences(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "es", prefs.Language)

	err = repo.Upsert(ctx, &models.User{ID: 10, Username: "ana_b", FirstName: "Ana", ChatID: 10})
	require.NoError(t, err)
	u, err = repo.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "ana_b", u.Username)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUpdatePreference(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: 3}))

	require.NoError(t, repo.UpdatePreference(ctx, 3, models.PreferenceTheme, "dark"))
	prefs, err := repo.GetPreferences(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)

	assert.Error(t, repo.UpdatePreference(ctx, 3, "font", "mono"))
	assert.ErrorIs(t, repo.UpdatePreference(ctx, 99, models.PreferenceTheme, "dark"), repository.ErrUserNotFound)
}

func TestDeleteUserDataRemovesOnlyOwnedRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		require.NoError(t, repo.Upsert(ctx, &models.User{ID: id, ChatID: id}))
		seedUserRows(t, db, id)
	}

	require.NoError(t, repo.DeleteUserData(ctx, 1))

	for _, table := range userDataTables {
		assert.Equal(t, 0, countRows(t, db, table, 1), table)
		assert.Equal(t, 1, countRows(t, db, table, 2), table)
	}
}

func TestDeleteUserDataRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.User{ID: 7, ChatID: 7}))
	seedUserRows(t, db, 7)

	// Fails after image results, messages and interactions were already deleted.
	_, err := db.ExecContext(ctx, `
		CREATE TRIGGER fail_preferences_delete BEFORE DELETE ON user_preferences
		BEGIN SELECT RAISE(ABORT, 'forced failure'); END`)
	require.NoError(t, err)

	err = repo.DeleteUserData(ctx, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forced failure")

	for _, table := range userDataTables {
		assert.Equal(t, 1, countRows(t, db, table, 7), table)
	}
}

func TestTotals(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.User{ID: 1}))
	seedUserRows(t, db, 1)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Users)
	assert.Equal(t, 1, totals.Messages)
	assert.Equal(t, 1, totals.Interactions)
}
