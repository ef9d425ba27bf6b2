package http

import (
	_ "embed"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/middleware"
	"gemini-relay-bot/internal/features/history/models"
	"gemini-relay-bot/internal/features/history/service"
)

const defaultEditorLimit = 50

//go:embed static/edit_messages.html
var editMessagesPage []byte

// WebAppHandler serves the message editor Mini App.
type WebAppHandler struct {
	history service.HistoryService
	auth    gin.HandlerFunc
}

// NewWebAppHandler takes the init data middleware that authenticates the
// JSON endpoints.
func NewWebAppHandler(history service.HistoryService, auth gin.HandlerFunc) *WebAppHandler {
	return &WebAppHandler{history: history, auth: auth}
}

func (h *WebAppHandler) RegisterRoutes(router *gin.RouterGroup) {
	webapp := router.Group("/webapp")
	webapp.GET("/edit_messages", h.EditMessagesPage)

	api := webapp.Group("")
	api.Use(h.auth)
	{
		api.POST("/get_messages", h.GetMessages)
		api.POST("/save_messages", h.SaveMessages)
	}
}

type GetMessagesRequest struct {
	Limit int `json:"limit" example:"50"`
}

type GetMessagesResponse struct {
	UserID   int64             `json:"user_id" example:"123456789"`
	Messages []*models.Message `json:"messages"`
}

type SaveMessagesRequest struct {
	Messages []models.MessageEdit `json:"messages" binding:"required,dive"`
}

type SaveMessagesResponse struct {
	Success  bool        `json:"success" example:"true"`
	Updated  int         `json:"updated" example:"2"`
	NotFound interface{} `json:"not_found,omitempty"`
}

// @Summary Message editor page
// @Tags webapp
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /webapp/edit_messages [get]
func (h *WebAppHandler) EditMessagesPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", editMessagesPage)
}

// @Summary Messages of the calling user
// @Description Text-bearing messages of the user identified by the init data, newest first
// @Tags webapp
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param body body GetMessagesRequest false "Options"
// @Success 200 {object} GetMessagesResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /webapp/get_messages [post]
func (h *WebAppHandler) GetMessages(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, apperrors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	var req GetMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		middleware.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultEditorLimit
	}

	all, err := h.history.Messages(c.Request.Context(), userID, req.Limit)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	messages := make([]*models.Message, 0, len(all))
	for _, m := range all {
		if m.Text != nil {
			messages = append(messages, m)
		}
	}
	c.JSON(http.StatusOK, GetMessagesResponse{UserID: userID, Messages: messages})
}

// @Summary Save edited messages
// @Description Rewrites the text of messages owned by the calling user. Unknown or foreign ids are reported in not_found.
// @Tags webapp
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param body body SaveMessagesRequest true "Edits"
// @Success 200 {object} SaveMessagesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /webapp/save_messages [post]
func (h *WebAppHandler) SaveMessages(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, apperrors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	var req SaveMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	updated, err := h.history.EditMessages(c.Request.Context(), userID, req.Messages)
	if err != nil {
		// partial success still reports what was written
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsNotFound() && updated > 0 {
			c.JSON(http.StatusOK, SaveMessagesResponse{Success: true, Updated: updated, NotFound: appErr.Details["id"]})
			return
		}
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SaveMessagesResponse{Success: true, Updated: updated})
}
