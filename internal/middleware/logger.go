package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// Logger logs one line per request, levelled by response status. Request
// bodies are never logged since they carry passwords and health details.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := log.With().
			Str("request_id", c.GetString(ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent())

		if v, ok := c.Get(ContextSession); ok {
			if s, ok := v.(model.Session); ok {
				fields = fields.Str("user_id", s.UserID).Str("role", string(s.Role))
			}
		}
		if len(c.Errors) > 0 {
			fields = fields.Str("errors", c.Errors.String())
		}
		logger := fields.Logger()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.Msg("Request processed")
	}
}
