package cache

import (
	"context"
	"encoding/json"
	"time"
)

// receiptZone is WIB; receipts expire at the end of the merchant's business
// day.
var receiptZone = time.FixedZone("WIB", 7*3600)

// ReceiptData is the cached outcome of one catalog push: the raw vendor batch
// response plus enough context to identify the push. Catalog reads are never
// cached; only push receipts live here so merchants can re-fetch a recent
// outcome without a second vendor round-trip.
type ReceiptData struct {
	PushID    string          `json:"pushId"`
	ClientID  int             `json:"clientId"`
	CatalogID string          `json:"catalogId"`
	Kind      string          `json:"kind"`
	Response  json.RawMessage `json:"response,omitempty"`
	CachedAt  time.Time       `json:"cachedAt"`
}

// ReceiptCache stores push receipts in Redis until end of day WIB.
type ReceiptCache struct {
	redis *RedisClient
}

// NewReceiptCache creates a new ReceiptCache.
func NewReceiptCache(redis *RedisClient) *ReceiptCache {
	return &ReceiptCache{
		redis: redis,
	}
}

// endOfDayTTL returns the time remaining until 23:59:59 WIB today.
func endOfDayTTL() time.Duration {
	now := time.Now().In(receiptZone)
	eod := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, receiptZone)
	return time.Until(eod)
}

func receiptKey(pushID string) string {
	return "receipt:" + pushID
}

// Set stores a push receipt, expiring at end of day.
func (c *ReceiptCache) Set(ctx context.Context, data *ReceiptData) error {
	data.CachedAt = time.Now()
	return c.redis.SetJSON(ctx, receiptKey(data.PushID), data, endOfDayTTL())
}

// Get retrieves a push receipt by push id.
func (c *ReceiptCache) Get(ctx context.Context, pushID string) (*ReceiptData, error) {
	var data ReceiptData
	if err := c.redis.GetJSON(ctx, receiptKey(pushID), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Delete removes a push receipt.
func (c *ReceiptCache) Delete(ctx context.Context, pushID string) error {
	return c.redis.Delete(ctx, receiptKey(pushID))
}
