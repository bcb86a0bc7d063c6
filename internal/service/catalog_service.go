package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LapakSync/lapaksync_api/internal/cache"
	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/internal/sse"
	"github.com/LapakSync/lapaksync_api/internal/utils"
	"github.com/LapakSync/lapaksync_api/pkg/meta"
)

// pushStore is implemented by repository.PushRepository.
type pushStore interface {
	Create(push *models.PushLog) error
	GetByPushID(clientID int, pushID string) (*models.PushLog, error)
	ListByClient(clientID, page, limit int) ([]models.PushLog, int, error)
}

// receiptStore is implemented by cache.ReceiptCache.
type receiptStore interface {
	Set(ctx context.Context, data *cache.ReceiptData) error
	Get(ctx context.Context, pushID string) (*cache.ReceiptData, error)
}

// callbackSender is implemented by CallbackService.
type callbackSender interface {
	SendCallback(push *models.PushLog, client *models.Client, event string) error
}

// CatalogService bridges the gateway surface to the Graph API client. It owns
// no catalog state: reads go straight through, and the only thing persisted
// for mutations is a push log, a Redis receipt, and a queued merchant
// webhook. The vendor token arrives per request and is never stored.
type CatalogService struct {
	meta      *meta.Client
	pushes    pushStore
	receipts  receiptStore
	callbacks callbackSender
	notifier  sse.PushNotifier
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(
	metaClient *meta.Client,
	pushes pushStore,
	receipts receiptStore,
	callbacks callbackSender,
	notifier sse.PushNotifier,
) *CatalogService {
	return &CatalogService{
		meta:      metaClient,
		pushes:    pushes,
		receipts:  receipts,
		callbacks: callbacks,
		notifier:  notifier,
	}
}

// ListBusinesses passes through to the Graph API.
func (s *CatalogService) ListBusinesses(ctx context.Context, token string, userID meta.UserID) ([]meta.Business, error) {
	return s.meta.ListBusinesses(ctx, token, userID)
}

// ListCatalogs passes through to the Graph API.
func (s *CatalogService) ListCatalogs(ctx context.Context, token string, businessID meta.BusinessID) ([]meta.Catalog, error) {
	return s.meta.ListCatalogs(ctx, token, businessID)
}

// ListProducts passes through to the Graph API. First page only.
func (s *CatalogService) ListProducts(ctx context.Context, token string, catalogID meta.CatalogID) ([]meta.Product, error) {
	return s.meta.ListProducts(ctx, token, catalogID)
}

// ListProductSets passes through to the Graph API, membership resolved.
func (s *CatalogService) ListProductSets(ctx context.Context, token string, catalogID meta.CatalogID) ([]meta.ProductSet, error) {
	return s.meta.ListProductSets(ctx, token, catalogID)
}

// AddProducts pushes a product batch to the catalog and records the push.
func (s *CatalogService) AddProducts(ctx context.Context, client *models.Client, sandbox bool, token string, catalogID meta.CatalogID, products []meta.ProductInput) (*models.PushLog, error) {
	resp, err := s.meta.AddProducts(ctx, token, catalogID, products)
	return s.recordPush(ctx, client, sandbox, string(catalogID), models.PushKindProductsAdd, len(products), products, resp, err)
}

// DeleteProducts pushes a batch delete of products by their Meta-assigned ids.
func (s *CatalogService) DeleteProducts(ctx context.Context, client *models.Client, sandbox bool, token string, catalogID meta.CatalogID, ids []meta.ProductID) (*models.PushLog, error) {
	resp, err := s.meta.DeleteProducts(ctx, token, catalogID, ids)
	return s.recordPush(ctx, client, sandbox, string(catalogID), models.PushKindProductsDel, len(ids), ids, resp, err)
}

// CreateProductSets pushes a batch of empty product sets.
func (s *CatalogService) CreateProductSets(ctx context.Context, client *models.Client, sandbox bool, token string, catalogID meta.CatalogID, sets []meta.ProductSetInput) (*models.PushLog, error) {
	resp, err := s.meta.CreateProductSets(ctx, token, catalogID, sets)
	return s.recordPush(ctx, client, sandbox, string(catalogID), models.PushKindSetsCreate, len(sets), sets, resp, err)
}

// DeleteProductSets pushes a batch delete of product sets.
func (s *CatalogService) DeleteProductSets(ctx context.Context, client *models.Client, sandbox bool, token string, catalogID meta.CatalogID, ids []meta.ProductSetID) (*models.PushLog, error) {
	resp, err := s.meta.DeleteProductSets(ctx, token, ids)
	return s.recordPush(ctx, client, sandbox, string(catalogID), models.PushKindSetsDelete, len(ids), ids, resp, err)
}

// UpdateProductSet replaces a set's membership and records the push. The
// updated set is embedded in the push response payload.
func (s *CatalogService) UpdateProductSet(ctx context.Context, client *models.Client, sandbox bool, token string, setID meta.ProductSetID, update meta.ProductSetUpdate) (*models.PushLog, *meta.ProductSet, error) {
	set, err := s.meta.UpdateProductSet(ctx, token, setID, update)

	var response json.RawMessage
	if set != nil {
		response, _ = json.Marshal(set)
	}
	push := s.recordPushRaw(ctx, client, sandbox, string(setID), models.PushKindSetUpdate, len(update.ProductIDs), update, response, err)
	if err != nil {
		return push, nil, err
	}
	return push, set, nil
}

// GetPush returns one of the client's push logs.
func (s *CatalogService) GetPush(client *models.Client, pushID string) (*models.PushLog, error) {
	return s.pushes.GetByPushID(client.ID, pushID)
}

// ListPushes returns a page of the client's push history.
func (s *CatalogService) ListPushes(client *models.Client, page, limit int) ([]models.PushLog, int, error) {
	return s.pushes.ListByClient(client.ID, page, limit)
}

// GetReceipt returns the cached vendor response for a recent push.
func (s *CatalogService) GetReceipt(ctx context.Context, client *models.Client, pushID string) (*cache.ReceiptData, error) {
	receipt, err := s.receipts.Get(ctx, pushID)
	if err != nil {
		return nil, err
	}
	if receipt.ClientID != client.ID {
		return nil, utils.ErrPushNotFound
	}
	return receipt, nil
}

// recordPush serializes the vendor batch response and logs the push.
func (s *CatalogService) recordPush(ctx context.Context, client *models.Client, sandbox bool, catalogID string, kind models.PushKind, count int, request any, resp *meta.BatchResponse, callErr error) (*models.PushLog, error) {
	var response json.RawMessage
	if resp != nil {
		response = resp.Raw
	}
	push := s.recordPushRaw(ctx, client, sandbox, catalogID, kind, count, request, response, callErr)
	return push, callErr
}

// recordPushRaw writes the push log, caches the receipt, queues the merchant
// webhook and notifies the admin feed. None of those failures are surfaced:
// the vendor call already settled, and answering with an upstream error here
// would invite the merchant to retry a mutation that went through. The push
// log gap is logged loudly instead.
func (s *CatalogService) recordPushRaw(ctx context.Context, client *models.Client, sandbox bool, catalogID string, kind models.PushKind, count int, request any, response json.RawMessage, callErr error) *models.PushLog {
	requestJSON, _ := json.Marshal(request)

	push := &models.PushLog{
		PushID:    uuid.New().String(),
		ClientID:  client.ID,
		CatalogID: catalogID,
		Kind:      kind,
		IsSandbox: sandbox,
		ItemCount: count,
		Request:   requestJSON,
		Response:  response,
		Status:    models.PushStatusAccepted,
	}
	if callErr != nil {
		push.Status = models.PushStatusFailed
		reason := callErr.Error()
		push.FailedReason = &reason
	}

	if err := s.pushes.Create(push); err != nil {
		log.Error().Err(err).Str("push_id", push.PushID).Str("catalog_id", catalogID).Msg("push log not persisted, vendor outcome stands")
	}

	if err := s.receipts.Set(ctx, &cache.ReceiptData{
		PushID:    push.PushID,
		ClientID:  client.ID,
		CatalogID: catalogID,
		Kind:      string(kind),
		Response:  response,
	}); err != nil {
		log.Warn().Err(err).Str("push_id", push.PushID).Msg("failed to cache push receipt")
	}

	if err := s.callbacks.SendCallback(push, client, callbackEvent(push)); err != nil {
		log.Error().Err(err).Str("push_id", push.PushID).Msg("failed to send push callback")
	}

	if s.notifier != nil {
		s.notifier.NotifyPush(push)
	}

	return push
}

// callbackEvent maps a push outcome to the webhook event name.
func callbackEvent(push *models.PushLog) string {
	if push.Status == models.PushStatusFailed {
		return "push.failed"
	}
	return "push.completed"
}
