package sse

import (
	"time"

	"github.com/LapakSync/lapaksync_api/internal/models"
)

// PushNotifier is the interface services use to emit push events.
type PushNotifier interface {
	NotifyPush(push *models.PushLog)
}

// HubNotifier implements PushNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyPush(push *models.PushLog) {
	if n.hub.SubscriberCount() == 0 {
		return
	}
	n.hub.Broadcast(pushToEvent(push))
}

func pushToEvent(push *models.PushLog) *PushEvent {
	event := EventPushAccepted
	if push.Status == models.PushStatusFailed {
		event = EventPushFailed
	}
	return &PushEvent{
		Event:        event,
		PushID:       push.PushID,
		CatalogID:    push.CatalogID,
		Kind:         string(push.Kind),
		ItemCount:    push.ItemCount,
		Status:       string(push.Status),
		IsSandbox:    push.IsSandbox,
		FailedReason: push.FailedReason,
		Timestamp:    time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyPush(push *models.PushLog) {}
