package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-relay-bot/internal/common/middleware"
	historymodels "gemini-relay-bot/internal/features/history/models"
	historysqlite "gemini-relay-bot/internal/features/history/repository/sqlite"
	historyservice "gemini-relay-bot/internal/features/history/service"
	"gemini-relay-bot/internal/features/session/repository/memory"
	sessionservice "gemini-relay-bot/internal/features/session/service"
	"gemini-relay-bot/internal/features/user/models"
	usersqlite "gemini-relay-bot/internal/features/user/repository/sqlite"
	"gemini-relay-bot/internal/features/user/service"
	platform "gemini-relay-bot/internal/platform/sqlite"
)

type fixture struct {
	router   *gin.Engine
	users    service.UserService
	history  historyservice.HistoryService
	sessions *sessionservice.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := platform.NewClient(context.Background(), filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	repo, err := memory.NewMemoryRepository(10, time.Hour)
	require.NoError(t, err)

	f := &fixture{
		users:    service.NewUserService(usersqlite.NewSQLiteRepository(c.GetDB())),
		history:  historyservice.NewHistoryService(historysqlite.NewSQLiteRepository(c.GetDB())),
		sessions: sessionservice.NewTracker(repo),
	}

	f.router = gin.New()
	f.router.Use(middleware.RequestID(), middleware.HandleErrors())
	NewDebugHandler(f.users, f.history, f.sessions).RegisterRoutes(f.router.Group("/debug"))

	ctx := context.Background()
	require.NoError(t, f.users.Register(ctx, &models.User{ID: 1, ChatID: 1, FirstName: "Ana"}))
	require.NoError(t, f.users.Register(ctx, &models.User{ID: 2, ChatID: 2, Username: "bob"}))
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, out interface{}) int {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)

	var resp models.UsersResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/debug/users", "", &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Items, 2)
}

func TestListHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.history.SaveMessage(ctx, &historymodels.Message{
			UserID: 1, ChatID: 1, MessageID: 10 + i,
			Text: historymodels.StringPtr("hola"), Type: historymodels.MessageTypeText,
		})
		require.NoError(t, err)
	}
	_, err := f.history.SaveImageResult(ctx, &historymodels.ImageResult{
		UserID: 1, MessageID: 20, FileID: "file-1", GeminiResponse: historymodels.StringPtr(`{"candidates":[]}`),
	})
	require.NoError(t, err)
	require.NoError(t, f.history.LogInteraction(ctx, 1, historymodels.ActionButtonClick, "menu1"))

	var messages MessagesResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/debug/users/1/messages?limit=2", "", &messages))
	assert.Equal(t, int64(1), messages.UserID)
	assert.Equal(t, 2, messages.Count)

	var images ImagesResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/debug/users/1/images", "", &images))
	require.Equal(t, 1, images.Count)
	assert.Equal(t, "file-1", images.Items[0].FileID)

	var interactions InteractionsResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/debug/users/1/interactions", "", &interactions))
	assert.Equal(t, 1, interactions.Count)

	var empty MessagesResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/debug/users/2/messages", "", &empty))
	assert.Zero(t, empty.Count)
}

func TestInvalidUserID(t *testing.T) {
	f := newFixture(t)

	var resp middleware.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/debug/users/abc/messages", "", &resp))
	assert.Equal(t, "id", resp.Error.Details["field"])
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/debug/users/0/summary", "", nil))
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	var resp SummaryResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/debug/users/1/summary", "", &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ana", resp.User.FirstName)
	require.NotNil(t, resp.Preferences)
	assert.Equal(t, "es", resp.Preferences.Language)
	require.NotNil(t, resp.Counts)
	assert.Zero(t, resp.Counts.Messages)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/debug/users/404/summary", "", nil))
}

func TestUpdatePreference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sessions.GetOrCreate(ctx, 1, models.DefaultPreferences(1))
	require.NoError(t, err)

	var prefs models.Preferences
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/debug/users/1/preferences",
		`{"preference_name":"language","preference_value":"en"}`, &prefs))
	assert.Equal(t, "en", prefs.Language)

	session, ok, err := f.sessions.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "en", session.Preferences.Language)

	// no cached session for user 2, only the store changes
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/debug/users/2/preferences",
		`{"preference_name":"theme","preference_value":"dark"}`, &prefs))
	assert.Equal(t, "dark", prefs.Theme)
	_, ok, err = f.sessions.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	interactions, err := f.history.Interactions(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, historymodels.ActionPreferenceSet, interactions[0].ActionType)
}

func TestUpdatePreferenceErrors(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown preference", "/debug/users/1/preferences", `{"preference_name":"font","preference_value":"big"}`, http.StatusBadRequest},
		{"value not allowed", "/debug/users/1/preferences", `{"preference_name":"theme","preference_value":"blue"}`, http.StatusBadRequest},
		{"missing fields", "/debug/users/1/preferences", `{"preference_name":"theme"}`, http.StatusBadRequest},
		{"unknown user", "/debug/users/404/preferences", `{"preference_name":"theme","preference_value":"dark"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.do(t, http.MethodPost, tc.path, tc.body, nil))
		})
	}
}
