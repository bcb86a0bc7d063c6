package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LapakSync/lapaksync_api/internal/cache"
	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/pkg/meta"
)

type fakePushStore struct {
	created   []*models.PushLog
	createErr error
}

func (f *fakePushStore) Create(push *models.PushLog) error {
	f.created = append(f.created, push)
	return f.createErr
}

func (f *fakePushStore) GetByPushID(clientID int, pushID string) (*models.PushLog, error) {
	for _, p := range f.created {
		if p.ClientID == clientID && p.PushID == pushID {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakePushStore) ListByClient(clientID, page, limit int) ([]models.PushLog, int, error) {
	out := make([]models.PushLog, 0, len(f.created))
	for _, p := range f.created {
		if p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

type fakeReceiptStore struct {
	receipts map[string]*cache.ReceiptData
}

func (f *fakeReceiptStore) Set(ctx context.Context, data *cache.ReceiptData) error {
	f.receipts[data.PushID] = data
	return nil
}

func (f *fakeReceiptStore) Get(ctx context.Context, pushID string) (*cache.ReceiptData, error) {
	if r, ok := f.receipts[pushID]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

type fakeCallbackSender struct {
	events []string
}

func (f *fakeCallbackSender) SendCallback(push *models.PushLog, client *models.Client, event string) error {
	f.events = append(f.events, event)
	return nil
}

type catalogFixture struct {
	svc       *CatalogService
	pushes    *fakePushStore
	receipts  *fakeReceiptStore
	callbacks *fakeCallbackSender
}

func newCatalogFixture(t *testing.T, graph http.HandlerFunc) *catalogFixture {
	t.Helper()
	srv := httptest.NewServer(graph)
	t.Cleanup(srv.Close)

	fix := &catalogFixture{
		pushes:    &fakePushStore{},
		receipts:  &fakeReceiptStore{receipts: map[string]*cache.ReceiptData{}},
		callbacks: &fakeCallbackSender{},
	}
	metaClient := meta.NewClient(meta.Config{BaseURL: srv.URL})
	fix.svc = NewCatalogService(metaClient, fix.pushes, fix.receipts, fix.callbacks, nil)
	return fix
}

func graphOK(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"handles":["h1"]}`))
}

func graphDown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte(`{"error":{"message":"Invalid catalog id"}}`))
}

func merchant() *models.Client {
	return &models.Client{ID: 3, ClientID: "toko-abadi", CallbackURL: "https://toko.example.id/hooks"}
}

func TestEveryMutationRecordsAPushLog(t *testing.T) {
	fix := newCatalogFixture(t, graphOK)
	ctx := context.Background()
	cl := merchant()

	_, err := fix.svc.AddProducts(ctx, cl, false, "tok", "cat-1", []meta.ProductInput{{Name: "Kopi", Price: 25000, Currency: "IDR"}})
	require.NoError(t, err)
	_, err = fix.svc.DeleteProducts(ctx, cl, false, "tok", "cat-1", []meta.ProductID{"p1", "p2"})
	require.NoError(t, err)
	_, err = fix.svc.CreateProductSets(ctx, cl, false, "tok", "cat-1", []meta.ProductSetInput{{Name: "Promo"}})
	require.NoError(t, err)
	_, err = fix.svc.DeleteProductSets(ctx, cl, false, "tok", "cat-1", []meta.ProductSetID{"s1"})
	require.NoError(t, err)

	require.Len(t, fix.pushes.created, 4)
	kinds := make([]models.PushKind, 0, 4)
	for _, p := range fix.pushes.created {
		kinds = append(kinds, p.Kind)
		assert.Equal(t, cl.ID, p.ClientID)
		assert.Equal(t, models.PushStatusAccepted, p.Status)
		assert.NotEmpty(t, p.PushID)
	}
	assert.Equal(t, []models.PushKind{
		models.PushKindProductsAdd,
		models.PushKindProductsDel,
		models.PushKindSetsCreate,
		models.PushKindSetsDelete,
	}, kinds)

	// one webhook and one receipt per mutation
	assert.Equal(t, []string{"push.completed", "push.completed", "push.completed", "push.completed"}, fix.callbacks.events)
	assert.Len(t, fix.receipts.receipts, 4)
}

func TestFailedVendorCallStillRecordsPush(t *testing.T) {
	fix := newCatalogFixture(t, graphDown)
	cl := merchant()

	push, err := fix.svc.AddProducts(context.Background(), cl, true, "tok", "cat-1", []meta.ProductInput{{Name: "Kopi", Price: 25000, Currency: "IDR"}})
	require.Error(t, err)
	require.NotNil(t, push)

	require.Len(t, fix.pushes.created, 1)
	assert.Equal(t, models.PushStatusFailed, fix.pushes.created[0].Status)
	require.NotNil(t, fix.pushes.created[0].FailedReason)
	assert.Contains(t, *fix.pushes.created[0].FailedReason, "Invalid catalog id")
	assert.True(t, fix.pushes.created[0].IsSandbox)
	assert.Equal(t, []string{"push.failed"}, fix.callbacks.events)
}

func TestPushLogWriteFailureDoesNotFailSettledMutation(t *testing.T) {
	fix := newCatalogFixture(t, graphOK)
	fix.pushes.createErr = errors.New("connection refused")
	cl := merchant()

	push, err := fix.svc.AddProducts(context.Background(), cl, false, "tok", "cat-1", []meta.ProductInput{{Name: "Kopi", Price: 25000, Currency: "IDR"}})

	// The vendor accepted the batch; a retry here would duplicate products.
	require.NoError(t, err)
	require.NotNil(t, push)
	assert.Equal(t, models.PushStatusAccepted, push.Status)

	// The merchant still gets the webhook and the receipt survives in Redis.
	assert.Equal(t, []string{"push.completed"}, fix.callbacks.events)
	assert.Len(t, fix.receipts.receipts, 1)
}

func TestGetReceiptScopedToOwningClient(t *testing.T) {
	fix := newCatalogFixture(t, graphOK)
	cl := merchant()

	push, err := fix.svc.AddProducts(context.Background(), cl, false, "tok", "cat-1", []meta.ProductInput{{Name: "Kopi", Price: 25000, Currency: "IDR"}})
	require.NoError(t, err)

	receipt, err := fix.svc.GetReceipt(context.Background(), cl, push.PushID)
	require.NoError(t, err)
	assert.Equal(t, push.PushID, receipt.PushID)

	other := &models.Client{ID: 99, ClientID: "toko-lain"}
	_, err = fix.svc.GetReceipt(context.Background(), other, push.PushID)
	assert.Error(t, err)
}
