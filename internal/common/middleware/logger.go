package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"gemini-relay-bot/internal/common/logger"
)

// Logger writes one access log line per request. paths listed in skip, such
// as the webhook route that carries the bot token, are logged without their
// path.
func Logger(skip ...string) gin.HandlerFunc {
	hidden := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		hidden[p] = struct{}{}
	}
	log := logger.With("http")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		if _, ok := hidden[c.FullPath()]; ok {
			path = c.FullPath()
		}

		log.Info().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("body_size", c.Writer.Size()).
			Msg("Request processed")
	}
}
