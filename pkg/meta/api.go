package meta

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

// listLimit caps every list request at one page. Pagination cursors are not
// followed, so collections beyond this size return a truncated first page.
const listLimit = "100"

// productFields is the fixed field list requested for products.
const productFields = "id,retailer_id,name,description,brand,url,image_url,price,currency"

// ErrMissingMembership is returned by UpdateProductSet before any network
// call when the update carries no membership list.
var ErrMissingMembership = errors.New("product set update requires a membership list")

// ListBusinesses returns the businesses owned by the given user, as the
// vendor reports them.
func (c *Client) ListBusinesses(ctx context.Context, token string, userID UserID) ([]Business, error) {
	var envelope listEnvelope[Business]
	path := "/" + escape(userID) + "/businesses"
	if err := c.call(ctx, http.MethodGet, path, token, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ListCatalogs returns the product catalogs owned by the given business.
func (c *Client) ListCatalogs(ctx context.Context, token string, businessID BusinessID) ([]Catalog, error) {
	var envelope listEnvelope[Catalog]
	path := "/" + escape(businessID) + "/owned_product_catalogs"
	if err := c.call(ctx, http.MethodGet, path, token, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ListProducts returns the first page of products in the catalog, reshaped so
// vendor url becomes Link and image_url a nested Image reference. Cursors are
// not followed.
func (c *Client) ListProducts(ctx context.Context, token string, catalogID CatalogID) ([]Product, error) {
	params := url.Values{
		"fields": {productFields},
		"limit":  {listLimit},
	}

	var envelope listEnvelope[productRecord]
	path := "/" + escape(catalogID) + "/products"
	if err := c.call(ctx, http.MethodGet, path, token, params, &envelope); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(envelope.Data))
	for _, rec := range envelope.Data {
		p := Product{
			ID:          rec.ID,
			RetailerID:  rec.RetailerID,
			Name:        rec.Name,
			Description: rec.Description,
			Brand:       rec.Brand,
			Link:        rec.URL,
			Price:       rec.Price,
			Currency:    rec.Currency,
		}
		if rec.ImageURL != "" {
			p.Image = &Image{URL: rec.ImageURL}
		}
		products = append(products, p)
	}
	return products, nil
}

// AddProducts creates the given products with one item-batch call. Each item
// gets a generated retailer id, distinct within the batch. The vendor batch
// response is returned raw; per-item outcomes are not validated here.
func (c *Client) AddProducts(ctx context.Context, token string, catalogID CatalogID, products []ProductInput) (*BatchResponse, error) {
	requests := make([]itemBatchRequest, 0, len(products))
	seen := make(map[RetailerID]bool, len(products))
	for _, p := range products {
		rid := newRetailerID()
		for seen[rid] {
			rid = newRetailerID()
		}
		seen[rid] = true
		requests = append(requests, newCreateItemRequest(rid, p))
	}

	encoded, err := encodeBatch(requests)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"item_type": {"PRODUCT_ITEM"},
		"requests":  {encoded},
	}
	var resp BatchResponse
	path := "/" + escape(catalogID) + "/batch"
	if err := c.call(ctx, http.MethodPost, path, token, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteProducts removes products by their Meta-assigned ids with one generic
// batch call to the API root. The catalog id travels for symmetry with
// AddProducts; item deletes address products by id alone. An empty id list
// short-circuits without a network call.
func (c *Client) DeleteProducts(ctx context.Context, token string, catalogID CatalogID, productIDs []ProductID) (*BatchResponse, error) {
	_ = catalogID
	if len(productIDs) == 0 {
		return &BatchResponse{}, nil
	}

	requests := make([]graphBatchRequest, 0, len(productIDs))
	for _, id := range productIDs {
		requests = append(requests, newDeleteRequest(id))
	}
	return c.sendGraphBatch(ctx, token, requests)
}

// ListProductSets returns the catalog's product sets with their member
// product ids. The set list is one GET; every set's membership is a further
// concurrent GET, and the result is assembled only once all of them resolve.
// Any membership failure fails the whole call with no partial result.
func (c *Client) ListProductSets(ctx context.Context, token string, catalogID CatalogID) ([]ProductSet, error) {
	params := url.Values{
		"fields": {"id,name,product_count"},
		"limit":  {listLimit},
	}

	var envelope listEnvelope[productSetRecord]
	path := "/" + escape(catalogID) + "/product_sets"
	if err := c.call(ctx, http.MethodGet, path, token, params, &envelope); err != nil {
		return nil, err
	}

	sets := make([]ProductSet, len(envelope.Data))
	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range envelope.Data {
		g.Go(func() error {
			ids, err := c.listSetMembers(gctx, token, rec.ID)
			if err != nil {
				return err
			}
			sets[i] = ProductSet{
				ID:         rec.ID,
				Name:       rec.Name,
				Count:      rec.ProductCount,
				ProductIDs: ids,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

// listSetMembers fetches the member product ids of one set.
func (c *Client) listSetMembers(ctx context.Context, token string, setID ProductSetID) ([]ProductID, error) {
	params := url.Values{
		"fields": {"id"},
		"limit":  {listLimit},
	}
	var envelope listEnvelope[idRecord]
	path := "/" + escape(setID) + "/products"
	if err := c.call(ctx, http.MethodGet, path, token, params, &envelope); err != nil {
		return nil, err
	}
	ids := make([]ProductID, 0, len(envelope.Data))
	for _, rec := range envelope.Data {
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

// CreateProductSets creates one initially empty set per input with a single
// generic batch call. The raw batch response is returned.
func (c *Client) CreateProductSets(ctx context.Context, token string, catalogID CatalogID, sets []ProductSetInput) (*BatchResponse, error) {
	requests := make([]graphBatchRequest, 0, len(sets))
	for _, s := range sets {
		requests = append(requests, newCreateSetRequest(catalogID, s.Name))
	}
	return c.sendGraphBatch(ctx, token, requests)
}

// DeleteProductSets removes sets by id with one generic batch call. An empty
// id list short-circuits without a network call.
func (c *Client) DeleteProductSets(ctx context.Context, token string, setIDs []ProductSetID) (*BatchResponse, error) {
	if len(setIDs) == 0 {
		return &BatchResponse{}, nil
	}

	requests := make([]graphBatchRequest, 0, len(setIDs))
	for _, id := range setIDs {
		requests = append(requests, newDeleteRequest(id))
	}
	return c.sendGraphBatch(ctx, token, requests)
}

// UpdateProductSet replaces a set's membership in full: fetch current member
// ids, remove them all if any, add the new members if any, then read back the
// set and return it with the new membership. The steps are sequential and not
// atomic; a failure after the removal leaves the set empty rather than in
// either the old or new state.
func (c *Client) UpdateProductSet(ctx context.Context, token string, setID ProductSetID, update ProductSetUpdate) (*ProductSet, error) {
	if update.ProductIDs == nil {
		return nil, ErrMissingMembership
	}

	current, err := c.listSetMembers(ctx, token, setID)
	if err != nil {
		return nil, err
	}

	membersPath := "/" + escape(setID) + "/products"
	if len(current) > 0 {
		params, err := productIDParams(current)
		if err != nil {
			return nil, err
		}
		var out json.RawMessage
		if err := c.call(ctx, http.MethodDelete, membersPath, token, params, &out); err != nil {
			return nil, err
		}
	}

	if len(update.ProductIDs) > 0 {
		params, err := productIDParams(update.ProductIDs)
		if err != nil {
			return nil, err
		}
		var out json.RawMessage
		if err := c.call(ctx, http.MethodPost, membersPath, token, params, &out); err != nil {
			return nil, err
		}
	}

	var rec productSetRecord
	params := url.Values{"fields": {"id,name"}}
	if err := c.call(ctx, http.MethodGet, "/"+escape(setID), token, params, &rec); err != nil {
		return nil, err
	}
	return &ProductSet{
		ID:         rec.ID,
		Name:       rec.Name,
		Count:      len(update.ProductIDs),
		ProductIDs: update.ProductIDs,
	}, nil
}

// sendGraphBatch POSTs a generic batch array to the API root.
func (c *Client) sendGraphBatch(ctx context.Context, token string, requests []graphBatchRequest) (*BatchResponse, error) {
	encoded, err := encodeBatch(requests)
	if err != nil {
		return nil, err
	}

	params := url.Values{"batch": {encoded}}
	var resp BatchResponse
	if err := c.call(ctx, http.MethodPost, "", token, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// productIDParams builds the form parameter carrying a JSON-encoded product
// id array for set membership calls.
func productIDParams(ids []ProductID) (url.Values, error) {
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product ids: %w", err)
	}
	return url.Values{"product_ids": {string(b)}}, nil
}

// newRetailerID generates a merchant-side idempotency key from the current
// time plus a random hex suffix. Collision-resistant, not globally unique;
// AddProducts regenerates on the rare in-batch collision.
func newRetailerID() RetailerID {
	b := make([]byte, 4)
	rand.Read(b)
	return RetailerID(fmt.Sprintf("ls-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b)))
}
