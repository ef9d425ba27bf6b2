package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"gemini-relay-bot/internal/common/logger"
	usermodels "gemini-relay-bot/internal/features/user/models"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

type UpdateSubmitter interface {
	Submit(update tgbotapi.Update) error
}

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type SessionCounter interface {
	ActiveCount(ctx context.Context) (int, error)
}

type TotalsReader interface {
	Totals(ctx context.Context) (*usermodels.Totals, error)
}

// Deps wires the webhook and health endpoints.
type Deps struct {
	Token                string
	Bot                  tgbotapi.User
	Updates              UpdateSubmitter
	DB                   Pinger
	Sessions             SessionCounter
	Totals               TotalsReader
	ServiceAccountStatus string
}

type Handler struct {
	deps Deps
	log  zerolog.Logger
}

func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, log: logger.With("webhook")}
}

// WebhookPath is the route pattern; its parameter is compared to the bot
// token.
const WebhookPath = "/:token"

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.POST(WebhookPath, h.Webhook)
}

type BotInfo struct {
	ID        int64  `json:"id" example:"123456789"`
	Username  string `json:"username" example:"relay_bot"`
	FirstName string `json:"first_name" example:"Relay"`
}

type HealthResponse struct {
	Status                string    `json:"status" example:"ok"`
	Timestamp             time.Time `json:"timestamp"`
	BotInfo               BotInfo   `json:"bot_info"`
	DBStatus              string    `json:"db_status" example:"ok"`
	ServiceAccountStatus  string    `json:"service_account_status" example:"loaded"`
	ActiveUsersInMemory   int       `json:"active_users_in_memory" example:"3"`
	TotalUsersInDB        int       `json:"total_users_in_db" example:"42"`
	TotalMessagesInDB     int       `json:"total_messages_in_db" example:"1200"`
	TotalInteractionsInDB int       `json:"total_interactions_in_db" example:"3400"`
}

// Webhook accepts an update from Telegram. The response is 200 whatever
// happens to the update; only a wrong token path gets 404.
func (h *Handler) Webhook(c *gin.Context) {
	if subtle.ConstantTimeCompare([]byte(c.Param("token")), []byte(h.deps.Token)) != 1 {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Warn().Err(err).Msg("Malformed update body")
		c.Status(http.StatusOK)
		return
	}

	if err := h.deps.Updates.Submit(update); err != nil {
		h.log.Error().Err(err).Int("update_id", update.UpdateID).Msg("Failed to queue update")
	}
	c.Status(http.StatusOK)
}

// @Summary Health check
// @Description Bot identity, store status and row counts
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	resp := HealthResponse{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		BotInfo: BotInfo{
			ID:        h.deps.Bot.ID,
			Username:  h.deps.Bot.UserName,
			FirstName: h.deps.Bot.FirstName,
		},
		DBStatus:             StatusOK,
		ServiceAccountStatus: h.deps.ServiceAccountStatus,
	}

	if err := h.deps.DB.HealthCheck(ctx); err != nil {
		resp.Status = StatusDegraded
		resp.DBStatus = "error: " + err.Error()
	} else if totals, err := h.deps.Totals.Totals(ctx); err != nil {
		resp.Status = StatusDegraded
		resp.DBStatus = "error: " + err.Error()
	} else {
		resp.TotalUsersInDB = totals.Users
		resp.TotalMessagesInDB = totals.Messages
		resp.TotalInteractionsInDB = totals.Interactions
	}

	if n, err := h.deps.Sessions.ActiveCount(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Failed to count sessions")
	} else {
		resp.ActiveUsersInMemory = n
	}

	status := http.StatusOK
	if resp.Status != StatusOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
