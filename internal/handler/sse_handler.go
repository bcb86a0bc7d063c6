package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/LapakSync/lapaksync_api/internal/sse"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// sseHeartbeat keeps intermediaries from timing out idle streams.
const sseHeartbeat = 30 * time.Second

// SSEHandler streams push-log events to admin dashboards over Server-Sent
// Events.
type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream handles GET /v1/admin/sse?token=<jwt>
// EventSource cannot set headers, so the JWT rides in the query string.
func (h *SSEHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, 401, "UNAUTHORIZED", "Missing token query parameter")
		return
	}

	claims, err := utils.ValidateJWT(token)
	if err != nil {
		utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	subscriberID := fmt.Sprintf("admin-%d-%d", claims.UserID, time.Now().UnixNano())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx would buffer the stream otherwise

	subscriber := h.hub.Register(subscriberID)
	defer h.hub.Unregister(subscriberID)

	c.SSEvent("connected", gin.H{
		"clientId":  subscriberID,
		"message":   "SSE connection established",
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("subscriber", subscriberID).Int("admin_id", claims.UserID).Msg("admin sse stream opened")

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-subscriber.Events:
			if !ok {
				return false
			}
			c.SSEvent("push", string(data))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
