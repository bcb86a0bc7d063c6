package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoggingMiddleware tags each request with a short request_id and emits one
// structured access line after the handler chain runs. The sandbox flag is
// logged so sandbox traffic can be filtered out of production dashboards.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()[:8]
		c.Set("request_id", requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		evt := log.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())

		if clientID := c.GetInt(ctxClientID); clientID != 0 {
			evt = evt.Int("client_id", clientID).Bool("sandbox", c.GetBool(ctxIsSandbox))
		}

		evt.Msg("request")
	}
}
