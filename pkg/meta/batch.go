package meta

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// The Graph API has two batch conventions. The generic batch is a JSON array
// of {method, relative_url, body} sub-requests POSTed to the API root in the
// "batch" form parameter, with body itself form-urlencoded. The item batch is
// a JSON array of {method, retailer_id, data} sub-requests POSTed to a
// catalog's /batch edge in the "requests" form parameter. Both are built here
// so the encoding convention lives in one place.

// graphBatchRequest is one sub-request of a generic batch call.
type graphBatchRequest struct {
	Method      string `json:"method"`
	RelativeURL string `json:"relative_url"`
	Body        string `json:"body,omitempty"`
}

// itemBatchRequest is one sub-request of a catalog item batch call.
type itemBatchRequest struct {
	Method     string         `json:"method"`
	RetailerID RetailerID     `json:"retailer_id"`
	Data       map[string]any `json:"data"`
}

// newDeleteRequest builds a generic DELETE sub-request for the resource with
// the given id.
func newDeleteRequest[T ~string](id T) graphBatchRequest {
	return graphBatchRequest{
		Method:      "DELETE",
		RelativeURL: url.PathEscape(string(id)),
	}
}

// newCreateSetRequest builds a generic POST sub-request creating an empty
// product set in the catalog. The filter matches no products so the set
// starts without members.
func newCreateSetRequest(catalogID CatalogID, name string) graphBatchRequest {
	form := url.Values{
		"name":   {name},
		"filter": {`{"product_item_id":{"is_any":[]}}`},
	}
	return graphBatchRequest{
		Method:      "POST",
		RelativeURL: url.PathEscape(string(catalogID)) + "/product_sets",
		Body:        form.Encode(),
	}
}

// newCreateItemRequest builds an item-batch CREATE sub-request for a product.
// Price is converted to integer minor units with a fixed two-decimal
// assumption, so zero- and three-decimal currencies come out wrong.
func newCreateItemRequest(retailerID RetailerID, p ProductInput) itemBatchRequest {
	data := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"brand":       p.Brand,
		"url":         p.Link,
		"image_url":   p.ImageURL,
		"price":       minorUnits(p.Price),
		"currency":    p.Currency,
	}
	return itemBatchRequest{
		Method:     "CREATE",
		RetailerID: retailerID,
		Data:       data,
	}
}

// minorUnits converts a major-unit price to integer minor units.
func minorUnits(price float64) int64 {
	return int64(price*100 + 0.5)
}

// encodeBatch JSON-encodes a batch array into a single form value.
func encodeBatch[T any](requests []T) (string, error) {
	b, err := json.Marshal(requests)
	if err != nil {
		return "", fmt.Errorf("failed to encode batch: %w", err)
	}
	return string(b), nil
}

// BatchResponse is the raw vendor reply to a batch call. A batch-level 200
// can still carry per-item failures; this client does not inspect them.
type BatchResponse struct {
	Handles  []string          `json:"handles,omitempty"`
	Raw      json.RawMessage   `json:"-"`
	Messages []json.RawMessage `json:"validation_status,omitempty"`
}

// UnmarshalJSON keeps the full body in Raw alongside the decoded fields.
func (r *BatchResponse) UnmarshalJSON(data []byte) error {
	type alias BatchResponse
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = BatchResponse(a)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}
