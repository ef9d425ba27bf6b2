package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-relay-bot/internal/features/session/models"
	usermodels "gemini-relay-bot/internal/features/user/models"
)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo, err := NewMemoryRepository(100, time.Hour)
	require.NoError(t, err)

	_, ok, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	s := models.New(1, usermodels.DefaultPreferences(1))
	s.Data["k"] = "v"
	require.NoError(t, repo.Set(ctx, s))

	got, ok, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.StateMainMenu, got.State)
	assert.Equal(t, "v", got.Data["k"])

	n, err := repo.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, 1))
	_, ok, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo, err := NewMemoryRepository(100, time.Hour)
	require.NoError(t, err)

	s := models.New(7, usermodels.DefaultPreferences(7))
	require.NoError(t, repo.Set(ctx, s))
	s.Data["leak"] = "x"

	got, _, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	got.Data["other"] = "y"

	again, _, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, again.Data)
}

func TestMemoryRepository_RejectsZeroUser(t *testing.T) {
	repo, err := NewMemoryRepository(10, time.Hour)
	require.NoError(t, err)
	assert.Error(t, repo.Set(context.Background(), models.Session{}))
}
