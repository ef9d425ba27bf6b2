package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
)

const (
	ContextRequestID = "request_id"
	ContextUser      = "user"
	ContextUserID    = "user_id"
)

// Recovery turns a handler panic into a 500 AppError response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))
		RespondError(c, appErr)
	})
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// HandleErrors writes the last error a handler attached with c.Error, unless
// the handler already wrote a response.
func HandleErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondError(c, c.Errors.Last().Err)
	}
}

type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

// RespondError aborts the request with err rendered as an ErrorResponse.
// Errors that are not AppErrors become INTERNAL_ERROR.
func RespondError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error")
	}

	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)
	if userID := getUserID(c); userID != 0 && appErr.UserID == 0 {
		appErr.WithUserID(userID)
	}

	logError(appErr, c)

	c.AbortWithStatusJSON(StatusCode(appErr), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

func StatusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeInvalidPreference:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUserNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeInvalidTransition:
		return http.StatusConflict
	case errors.ErrCodeCacheError:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTelegramAPI, errors.ErrCodeExternalAPI, errors.ErrCodeGemini, errors.ErrCodeForms, errors.ErrCodeAppsScript:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func logError(appErr *errors.AppError, c *gin.Context) {
	var event *zerolog.Event
	switch {
	case appErr.IsInternal():
		event = logger.Error()
	case appErr.IsUnauthorized():
		event = logger.Warn()
	case appErr.IsValidation(), appErr.IsNotFound():
		event = logger.Info()
	default:
		event = logger.Error()
	}

	event = event.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)
	if appErr.UserID != 0 {
		event = event.Int64("user_id", appErr.UserID)
	}
	if len(appErr.Details) > 0 {
		event = event.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		event = event.Err(appErr.Cause)
	}
	if appErr.IsInternal() && len(appErr.Stack) > 0 {
		event = event.Strs("stack", appErr.Stack)
	}
	event.Msg("Request failed")
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(ContextRequestID); id != "" {
		return id
	}
	return "unknown"
}

func getUserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}
