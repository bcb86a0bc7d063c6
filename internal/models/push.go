package models

import (
	"encoding/json"
	"time"
)

type PushKind string
type PushStatus string

const (
	PushKindProductsAdd PushKind = "products.add"
	PushKindProductsDel PushKind = "products.delete"
	PushKindSetsCreate  PushKind = "product_sets.create"
	PushKindSetsDelete  PushKind = "product_sets.delete"
	PushKindSetUpdate   PushKind = "product_sets.update"
)

const (
	PushStatusAccepted PushStatus = "Accepted"
	PushStatusFailed   PushStatus = "Failed"
)

// PushLog records one catalog mutation pushed through the gateway to the
// Graph API: what the merchant submitted and what the vendor answered. The
// gateway keeps no catalog state; these rows are its only record of writes.
type PushLog struct {
	ID           int             `db:"id" json:"-"`
	PushID       string          `db:"push_id" json:"pushId"`
	ClientID     int             `db:"client_id" json:"-"`
	CatalogID    string          `db:"catalog_id" json:"catalogId"`
	Kind         PushKind        `db:"kind" json:"kind"`
	IsSandbox    bool            `db:"is_sandbox" json:"-"`
	ItemCount    int             `db:"item_count" json:"itemCount"`
	Request      json.RawMessage `db:"request" json:"request,omitempty"`
	Response     json.RawMessage `db:"response" json:"response,omitempty"`
	Status       PushStatus      `db:"status" json:"status"`
	FailedReason *string         `db:"failed_reason" json:"failedReason,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}
