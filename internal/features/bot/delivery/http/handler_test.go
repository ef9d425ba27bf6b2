package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usermodels "gemini-relay-bot/internal/features/user/models"
)

const token = "123456:TEST-token"

type fakeUpdates struct {
	got []tgbotapi.Update
	err error
}

func (f *fakeUpdates) Submit(update tgbotapi.Update) error {
	f.got = append(f.got, update)
	return f.err
}

type fakeStore struct {
	pingErr   error
	totalsErr error
	active    int
}

func (f *fakeStore) HealthCheck(context.Context) error { return f.pingErr }

func (f *fakeStore) ActiveCount(context.Context) (int, error) { return f.active, nil }

func (f *fakeStore) Totals(context.Context) (*usermodels.Totals, error) {
	if f.totalsErr != nil {
		return nil, f.totalsErr
	}
	return &usermodels.Totals{Users: 2, Messages: 10, Interactions: 30}, nil
}

func newRouter(updates *fakeUpdates, store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(Deps{
		Token:                token,
		Bot:                  tgbotapi.User{ID: 99, UserName: "relay_bot", FirstName: "Relay"},
		Updates:              updates,
		DB:                   store,
		Sessions:             store,
		Totals:               store,
		ServiceAccountStatus: "not_configured",
	})
	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestWebhook(t *testing.T) {
	const update = `{"update_id":5,"message":{"message_id":1,"from":{"id":42,"first_name":"Ana"},"chat":{"id":42,"type":"private"},"date":1700000000,"text":"hola"}}`

	t.Run("queues update", func(t *testing.T) {
		updates := &fakeUpdates{}
		w := post(newRouter(updates, &fakeStore{}), "/"+token, update)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, updates.got, 1)
		assert.Equal(t, 5, updates.got[0].UpdateID)
		assert.Equal(t, "hola", updates.got[0].Message.Text)
	})

	t.Run("wrong token", func(t *testing.T) {
		updates := &fakeUpdates{}
		w := post(newRouter(updates, &fakeStore{}), "/123456:other", update)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, updates.got)
	})

	t.Run("malformed body", func(t *testing.T) {
		updates := &fakeUpdates{}
		w := post(newRouter(updates, &fakeStore{}), "/"+token, "{not json")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, updates.got)
	})

	t.Run("queue failure", func(t *testing.T) {
		updates := &fakeUpdates{err: errors.New("pool closed")}
		w := post(newRouter(updates, &fakeStore{}), "/"+token, update)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHealth(t *testing.T) {
	get := func(store *fakeStore) (*httptest.ResponseRecorder, HealthResponse) {
		w := httptest.NewRecorder()
		newRouter(&fakeUpdates{}, store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	w, resp := get(&fakeStore{active: 3})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, StatusOK, resp.DBStatus)
	assert.Equal(t, "relay_bot", resp.BotInfo.Username)
	assert.Equal(t, int64(99), resp.BotInfo.ID)
	assert.Equal(t, "not_configured", resp.ServiceAccountStatus)
	assert.Equal(t, 3, resp.ActiveUsersInMemory)
	assert.Equal(t, 2, resp.TotalUsersInDB)
	assert.Equal(t, 10, resp.TotalMessagesInDB)
	assert.Equal(t, 30, resp.TotalInteractionsInDB)

	w, resp = get(&fakeStore{pingErr: errors.New("disk I/O error")})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, "error: disk I/O error", resp.DBStatus)

	w, resp = get(&fakeStore{totalsErr: errors.New("no such table")})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, StatusDegraded, resp.Status)
}
