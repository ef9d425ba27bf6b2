package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
)

// InitDataHeader carries the Mini App init data string.
const InitDataHeader = "X-Telegram-Init-Data"

// legacyInitDataHeader is accepted for older web app builds.
const legacyInitDataHeader = "init_data"

// TelegramInitData authenticates Mini App requests. A missing payload is 401,
// a payload whose signature or age does not check out is 403. ttl of zero
// disables the age check.
func TelegramInitData(botToken string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(InitDataHeader)
		if raw == "" {
			raw = c.GetHeader(legacyInitDataHeader)
		}
		if raw == "" {
			RespondError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		if err := initdata.Validate(raw, botToken, ttl); err != nil {
			logger.Debug().Err(err).Str("request_id", getRequestID(c)).Msg("Init data rejected")
			appErr := errors.NewForbiddenError("invalid init data")
			appErr.Cause = err
			RespondError(c, appErr)
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil || parsed.User.ID == 0 {
			RespondError(c, errors.NewForbiddenError("init data carries no user"))
			return
		}

		c.Set(ContextUser, parsed.User)
		c.Set(ContextUserID, parsed.User.ID)
		c.Next()
	}
}

// UserID returns the authenticated Mini App user id.
func UserID(c *gin.Context) (int64, bool) {
	id := c.GetInt64(ContextUserID)
	return id, id != 0
}

// RequireAdmin must run after TelegramInitData.
func RequireAdmin(isAdmin func(userID int64) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			RespondError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}
		if !isAdmin(userID) {
			RespondError(c, errors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}
