package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

type fakeCBClientStore struct {
	client *models.Client
}

func (f *fakeCBClientStore) GetByID(id int) (*models.Client, error) {
	return f.client, nil
}

type fakeCBLogStore struct {
	created    []*models.CallbackLog
	updated    []*models.CallbackLog
	pending    []models.CallbackLog
	claimLimit int
}

func (f *fakeCBLogStore) Create(log *models.CallbackLog) error {
	f.created = append(f.created, log)
	return nil
}

func (f *fakeCBLogStore) Update(log *models.CallbackLog) error {
	f.updated = append(f.updated, log)
	return nil
}

func (f *fakeCBLogStore) ClaimPending(limit int) ([]models.CallbackLog, error) {
	f.claimLimit = limit
	return f.pending, nil
}

func settledPush() *models.PushLog {
	return &models.PushLog{
		ID:        11,
		PushID:    "push-11",
		CatalogID: "cat-1",
		Kind:      models.PushKindProductsAdd,
		ItemCount: 2,
		Status:    models.PushStatusAccepted,
	}
}

func TestSendCallbackSignsAndLogsDelivery(t *testing.T) {
	var gotSig, gotEvent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Callback-Signature")
		gotEvent = r.Header.Get("X-LapakSync-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &fakeCBLogStore{}
	svc := NewCallbackService(&fakeCBClientStore{}, store)

	client := &models.Client{ID: 3, ClientID: "toko-abadi", CallbackURL: srv.URL, CallbackSecret: "ls_secret_x"}
	require.NoError(t, svc.SendCallback(settledPush(), client, "push.completed"))

	assert.Equal(t, "push.completed", gotEvent)
	assert.True(t, utils.VerifySignature(gotBody, gotSig, "ls_secret_x"))

	var payload struct {
		Event string `json:"event"`
		Data  struct {
			PushID string `json:"pushId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "push.completed", payload.Event)
	assert.Equal(t, "push-11", payload.Data.PushID)

	require.Len(t, store.created, 1)
	assert.True(t, store.created[0].IsDelivered)
	assert.Equal(t, 1, store.created[0].Attempt)
	assert.Nil(t, store.created[0].NextRetryAt)
}

func TestSendCallbackSchedulesRetryOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &fakeCBLogStore{}
	svc := NewCallbackService(&fakeCBClientStore{}, store)

	client := &models.Client{ID: 3, CallbackURL: srv.URL, CallbackSecret: "ls_secret_x"}
	require.NoError(t, svc.SendCallback(settledPush(), client, "push.completed"))

	require.Len(t, store.created, 1)
	assert.False(t, store.created[0].IsDelivered)
	require.NotNil(t, store.created[0].NextRetryAt)
	require.NotNil(t, store.created[0].HTTPStatus)
	assert.Equal(t, 502, *store.created[0].HTTPStatus)
}

func TestSendCallbackSkipsClientsWithoutWebhook(t *testing.T) {
	store := &fakeCBLogStore{}
	svc := NewCallbackService(&fakeCBClientStore{}, store)

	client := &models.Client{ID: 3}
	require.NoError(t, svc.SendCallback(settledPush(), client, "push.completed"))
	assert.Empty(t, store.created)
}

func TestRetryPendingCallbacksDeliversClaimedBatch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &models.Client{ID: 3, CallbackURL: srv.URL, CallbackSecret: "ls_secret_x"}
	store := &fakeCBLogStore{
		pending: []models.CallbackLog{
			{ID: 1, ClientID: 3, Event: "push.completed", Payload: []byte(`{}`), Attempt: 1},
			{ID: 2, ClientID: 3, Event: "push.failed", Payload: []byte(`{}`), Attempt: 2},
		},
	}
	svc := NewCallbackService(&fakeCBClientStore{client: client}, store)

	require.NoError(t, svc.RetryPendingCallbacks())

	assert.Equal(t, callbackBatchSize, store.claimLimit)
	assert.Equal(t, int32(2), hits.Load())
	require.Len(t, store.updated, 2)
	for _, cb := range store.updated {
		assert.True(t, cb.IsDelivered)
		assert.Nil(t, cb.NextRetryAt)
	}
	assert.Equal(t, 2, store.updated[0].Attempt)
	assert.Equal(t, 3, store.updated[1].Attempt)
}

func TestRetryPendingCallbacksAbandonsAfterLastAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &models.Client{ID: 3, CallbackURL: srv.URL, CallbackSecret: "ls_secret_x"}
	store := &fakeCBLogStore{
		pending: []models.CallbackLog{
			{ID: 1, ClientID: 3, Event: "push.completed", Payload: []byte(`{}`), Attempt: 4},
		},
	}
	svc := NewCallbackService(&fakeCBClientStore{client: client}, store)

	require.NoError(t, svc.RetryPendingCallbacks())

	require.Len(t, store.updated, 1)
	assert.False(t, store.updated[0].IsDelivered)
	assert.Equal(t, 5, store.updated[0].Attempt)
	// retries are exhausted, nothing further is scheduled
	assert.Nil(t, store.updated[0].NextRetryAt)
}
