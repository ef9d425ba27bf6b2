package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/common/middleware"
	historymodels "gemini-relay-bot/internal/features/history/models"
	historyservice "gemini-relay-bot/internal/features/history/service"
	sessionmodels "gemini-relay-bot/internal/features/session/models"
	"gemini-relay-bot/internal/features/user/models"
	"gemini-relay-bot/internal/features/user/service"
)

const defaultListLimit = 50

// SessionCache is the part of the session tracker that mirrors preferences.
type SessionCache interface {
	Get(ctx context.Context, userID int64) (sessionmodels.Session, bool, error)
	SetPreferences(ctx context.Context, userID int64, prefs models.Preferences) (sessionmodels.Session, error)
}

// DebugHandler exposes read-only views of stored data plus preference
// updates. It is mounted only in debug mode.
type DebugHandler struct {
	users    service.UserService
	history  historyservice.HistoryService
	sessions SessionCache
}

func NewDebugHandler(users service.UserService, history historyservice.HistoryService, sessions SessionCache) *DebugHandler {
	return &DebugHandler{
		users:    users,
		history:  history,
		sessions: sessions,
	}
}

func (h *DebugHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id/images", h.ListImages)
		users.GET("/:id/messages", h.ListMessages)
		users.GET("/:id/interactions", h.ListInteractions)
		users.GET("/:id/summary", h.Summary)
		users.POST("/:id/preferences", h.UpdatePreference)
	}
}

type ImagesResponse struct {
	UserID int64                        `json:"user_id" example:"123456789"`
	Count  int                          `json:"count" example:"3"`
	Items  []*historymodels.ImageResult `json:"items"`
}

type MessagesResponse struct {
	UserID int64                    `json:"user_id" example:"123456789"`
	Count  int                      `json:"count" example:"10"`
	Items  []*historymodels.Message `json:"items"`
}

type InteractionsResponse struct {
	UserID int64                        `json:"user_id" example:"123456789"`
	Count  int                          `json:"count" example:"25"`
	Items  []*historymodels.Interaction `json:"items"`
}

type SummaryResponse struct {
	User        *models.User                  `json:"user"`
	Preferences *models.Preferences           `json:"preferences"`
	Counts      *historymodels.ActivityCounts `json:"counts"`
}

// @Summary List users
// @Description All users that have written to the bot
// @Tags debug
// @Produce json
// @Success 200 {object} models.UsersResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /debug/users [get]
func (h *DebugHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UsersResponse{Items: users, Total: len(users)})
}

// @Summary List image results
// @Description Raw Gemini responses stored for the user's photos, newest first
// @Tags debug
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {object} ImagesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /debug/users/{id}/images [get]
func (h *DebugHandler) ListImages(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	items, err := h.history.ImageResults(c.Request.Context(), id, limitParam(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ImagesResponse{UserID: id, Count: len(items), Items: items})
}

// @Summary List messages
// @Tags debug
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {object} MessagesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /debug/users/{id}/messages [get]
func (h *DebugHandler) ListMessages(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	items, err := h.history.Messages(c.Request.Context(), id, limitParam(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessagesResponse{UserID: id, Count: len(items), Items: items})
}

// @Summary List interactions
// @Tags debug
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {object} InteractionsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /debug/users/{id}/interactions [get]
func (h *DebugHandler) ListInteractions(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	items, err := h.history.Interactions(c.Request.Context(), id, limitParam(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, InteractionsResponse{UserID: id, Count: len(items), Items: items})
}

// @Summary User summary
// @Description Profile, preferences and row counts of one user
// @Tags debug
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /debug/users/{id}/summary [get]
func (h *DebugHandler) Summary(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.GetUser(ctx, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	prefs, err := h.users.GetPreferences(ctx, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	counts, err := h.history.Counts(ctx, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{User: user, Preferences: prefs, Counts: counts})
}

// @Summary Update a preference
// @Description Sets language, notifications or theme for a user
// @Tags debug
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body models.PreferenceUpdate true "Preference to set"
// @Success 200 {object} models.Preferences
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /debug/users/{id}/preferences [post]
func (h *DebugHandler) UpdatePreference(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var req models.PreferenceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "preference_name and preference_value are required"))
		return
	}

	ctx := c.Request.Context()
	prefs, err := h.users.UpdatePreference(ctx, id, req.PreferenceName, req.PreferenceValue)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	if h.sessions != nil {
		if _, cached, err := h.sessions.Get(ctx, id); err == nil && cached {
			if _, err := h.sessions.SetPreferences(ctx, id, *prefs); err != nil {
				logger.Warn().Err(err).Int64("user_id", id).Msg("Failed to refresh session preferences")
			}
		}
	}
	if err := h.history.LogInteraction(ctx, id, historymodels.ActionPreferenceSet, req); err != nil {
		logger.Warn().Err(err).Int64("user_id", id).Msg("Failed to log interaction")
	}

	c.JSON(http.StatusOK, prefs)
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		middleware.RespondError(c, apperrors.NewValidationError("id", "must be a non-zero integer"))
		return 0, false
	}
	return id, true
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return limit
}
