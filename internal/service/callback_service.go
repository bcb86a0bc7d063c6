package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// callbackBatchSize caps how many undelivered callbacks one sweep claims.
const callbackBatchSize = 50

// retryIntervals spaces out delivery attempts: 30s, 1m, 5m, 30m, 2h.
// After the last interval the callback is abandoned.
var retryIntervals = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
}

type callbackClientStore interface {
	GetByID(id int) (*models.Client, error)
}

type callbackLogStore interface {
	Create(log *models.CallbackLog) error
	Update(log *models.CallbackLog) error
	ClaimPending(limit int) ([]models.CallbackLog, error)
}

// CallbackService delivers signed webhooks to merchant systems whenever a
// catalog push settles, and retries undelivered attempts.
type CallbackService struct {
	clients    callbackClientStore
	callbacks  callbackLogStore
	httpClient *http.Client
}

// NewCallbackService constructs a CallbackService with a default HTTP client.
func NewCallbackService(clients callbackClientStore, callbacks callbackLogStore) *CallbackService {
	return &CallbackService{
		clients:   clients,
		callbacks: callbacks,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// attemptResult is the outcome of a single delivery attempt.
type attemptResult struct {
	status    *int
	body      *string
	delivered bool
}

// attempt POSTs one signed payload to the merchant's callback URL. The
// response body is closed before attempt returns, so sweeps over many
// callbacks never pile up open connections.
func (s *CallbackService) attempt(client *models.Client, payload []byte, event string) attemptResult {
	req, err := http.NewRequest(http.MethodPost, client.CallbackURL, bytes.NewReader(payload))
	if err != nil {
		log.Error().Err(err).Str("client_id", client.ClientID).Msg("building callback request failed")
		return attemptResult{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Callback-Token", client.CallbackSecret)
	req.Header.Set("X-Callback-Signature", utils.SignPayload(payload, client.CallbackSecret))
	req.Header.Set("X-LapakSync-Event", event)
	req.Header.Set("X-LapakSync-Timestamp", time.Now().Format(time.RFC3339))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return attemptResult{}
	}
	defer resp.Body.Close()

	res := attemptResult{delivered: resp.StatusCode == http.StatusOK}
	sc := resp.StatusCode
	res.status = &sc
	if b, _ := io.ReadAll(resp.Body); len(b) > 0 {
		body := string(b)
		res.body = &body
	}
	return res
}

// SendCallback makes the first delivery attempt for a settled push and logs
// it. Failed attempts are rescheduled and picked up by the callback worker.
func (s *CallbackService) SendCallback(push *models.PushLog, client *models.Client, event string) error {
	if push == nil || client == nil || !client.HasCallback() {
		return nil
	}

	payload := buildCallbackPayload(push, event)
	res := s.attempt(client, payload, event)

	entry := &models.CallbackLog{
		PushID:       push.ID,
		ClientID:     client.ID,
		Event:        event,
		Payload:      json.RawMessage(payload),
		Attempt:      1,
		HTTPStatus:   res.status,
		ResponseBody: res.body,
		IsDelivered:  res.delivered,
	}
	if !res.delivered {
		if next := nextRetryAt(1); !next.IsZero() {
			entry.NextRetryAt = &next
		}
	}
	if err := s.callbacks.Create(entry); err != nil {
		log.Error().Err(err).Str("push_id", push.PushID).Msg("recording callback attempt failed")
	}
	return nil
}

// RetryPendingCallbacks claims a batch of due callbacks and redelivers them.
// Called periodically by the callback worker.
func (s *CallbackService) RetryPendingCallbacks() error {
	callbacks, err := s.callbacks.ClaimPending(callbackBatchSize)
	if err != nil {
		return err
	}

	for i := range callbacks {
		cb := &callbacks[i]
		client, err := s.clients.GetByID(cb.ClientID)
		if err != nil || client == nil || !client.HasCallback() {
			continue
		}

		res := s.attempt(client, []byte(cb.Payload), cb.Event)

		cb.Attempt++
		cb.HTTPStatus = res.status
		cb.ResponseBody = res.body
		cb.IsDelivered = res.delivered
		cb.NextRetryAt = nil
		if !res.delivered {
			if next := nextRetryAt(cb.Attempt); !next.IsZero() {
				cb.NextRetryAt = &next
			}
		}

		if err := s.callbacks.Update(cb); err != nil {
			log.Error().Err(err).Int("callback_id", cb.ID).Msg("updating callback log failed")
		}
	}
	return nil
}

// nextRetryAt schedules the attempt after the one just made, or the zero
// time when the callback has exhausted its retries.
func nextRetryAt(attempt int) time.Time {
	if attempt >= len(retryIntervals) {
		return time.Time{}
	}
	return time.Now().Add(retryIntervals[attempt])
}

// buildCallbackPayload constructs the JSON payload sent to merchants.
func buildCallbackPayload(push *models.PushLog, event string) []byte {
	type dataPayload struct {
		PushID       string          `json:"pushId"`
		CatalogID    string          `json:"catalogId"`
		Kind         string          `json:"kind"`
		ItemCount    int             `json:"itemCount"`
		Status       string          `json:"status"`
		FailedReason *string         `json:"failedReason,omitempty"`
		Response     json.RawMessage `json:"response,omitempty"`
		CreatedAt    time.Time       `json:"createdAt"`
	}
	type payload struct {
		Event     string      `json:"event"`
		Data      dataPayload `json:"data"`
		Timestamp string      `json:"timestamp"`
	}
	p := payload{
		Event: event,
		Data: dataPayload{
			PushID:       push.PushID,
			CatalogID:    push.CatalogID,
			Kind:         string(push.Kind),
			ItemCount:    push.ItemCount,
			Status:       string(push.Status),
			FailedReason: push.FailedReason,
			Response:     push.Response,
			CreatedAt:    push.CreatedAt,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	b, _ := json.Marshal(p)
	return b
}
