package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// accessLogMiddleware logs one line per request via zerolog, layered on
// top of the gin.Engine the way r3e-style services wrap zerolog's
// hlog-style access logging around their HTTP stack. Application logging
// elsewhere in the service stays on log/slog; this middleware is scoped
// to HTTP access logs only.
func accessLogMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}
