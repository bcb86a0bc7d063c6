package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBusinessesReturnsDataUnchanged(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/42/businesses", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"b1","name":"Acme"},{"id":"b2","name":"Beta"}]}`))
	}))

	businesses, err := client.ListBusinesses(context.Background(), "tok", "42")
	require.NoError(t, err)
	require.Len(t, businesses, 2)
	assert.Equal(t, Business{ID: "b1", Name: "Acme"}, businesses[0])
	assert.Equal(t, Business{ID: "b2", Name: "Beta"}, businesses[1])
}

func TestListCatalogsReturnsDataUnchanged(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/b1/owned_product_catalogs", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"c1","name":"Spring"}]}`))
	}))

	catalogs, err := client.ListCatalogs(context.Background(), "tok", "b1")
	require.NoError(t, err)
	require.Len(t, catalogs, 1)
	assert.Equal(t, Catalog{ID: "c1", Name: "Spring"}, catalogs[0])
}

func TestListProductsReshapesFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":"p1","retailer_id":"r1","name":"Shirt","description":"Cotton","brand":"Acme",
			 "url":"https://shop.example/shirt","image_url":"https://cdn.example/shirt.jpg",
			 "price":"Rp150.000","currency":"IDR"},
			{"id":"p2","name":"Plain"}
		]}`))
	}))

	products, err := client.ListProducts(context.Background(), "tok", "c1")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "https://shop.example/shirt", products[0].Link)
	require.NotNil(t, products[0].Image)
	assert.Equal(t, "https://cdn.example/shirt.jpg", products[0].Image.URL)
	assert.Equal(t, "Rp150.000", products[0].Price)

	// No image_url means no nested image reference.
	assert.Nil(t, products[1].Image)
}

func TestAddProductsBatchShape(t *testing.T) {
	var gotPath string
	var gotRequests []itemBatchRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("requests")), &gotRequests))
		w.Write([]byte(`{"handles":["h1"]}`))
	}))

	resp, err := client.AddProducts(context.Background(), "tok", "c1", []ProductInput{
		{Name: "Shirt", Price: 19.99, Currency: "USD"},
		{Name: "Hat", Price: 150000, Currency: "IDR"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, resp.Handles)
	assert.Equal(t, "/v21.0/c1/batch", gotPath)

	require.Len(t, gotRequests, 2)
	assert.Equal(t, "CREATE", gotRequests[0].Method)
	// Price travels as integer minor units: round(major * 100).
	assert.Equal(t, float64(1999), gotRequests[0].Data["price"])
	assert.Equal(t, float64(15000000), gotRequests[1].Data["price"])

	// Retailer ids are distinct within one batch.
	assert.NotEmpty(t, gotRequests[0].RetailerID)
	assert.NotEqual(t, gotRequests[0].RetailerID, gotRequests[1].RetailerID)
}

func TestDeleteProductsBatchShape(t *testing.T) {
	var gotRequests []graphBatchRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("batch")), &gotRequests))
		w.Write([]byte(`{}`))
	}))

	_, err := client.DeleteProducts(context.Background(), "tok", "c1", []ProductID{"111", "222"})
	require.NoError(t, err)

	require.Len(t, gotRequests, 2)
	assert.Equal(t, graphBatchRequest{Method: "DELETE", RelativeURL: "111"}, gotRequests[0])
	assert.Equal(t, graphBatchRequest{Method: "DELETE", RelativeURL: "222"}, gotRequests[1])
}

func TestDeleteProductsEmptyListShortCircuits(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))

	resp, err := client.DeleteProducts(context.Background(), "tok", "c1", nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Zero(t, atomic.LoadInt32(&calls), "no network call for empty id list")
}

func TestDeleteProductSetsEmptyListShortCircuits(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))

	resp, err := client.DeleteProductSets(context.Background(), "tok", nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Zero(t, atomic.LoadInt32(&calls), "no network call for empty id list")
}

func TestListProductSetsResolvesMembership(t *testing.T) {
	var gets int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gets, 1)
		switch {
		case r.URL.Path == "/v21.0/c1/product_sets":
			w.Write([]byte(`{"data":[
				{"id":"s1","name":"Summer","product_count":2},
				{"id":"s2","name":"Winter","product_count":0}
			]}`))
		case r.URL.Path == "/v21.0/s1/products":
			w.Write([]byte(`{"data":[{"id":"p1"},{"id":"p2"}]}`))
		case r.URL.Path == "/v21.0/s2/products":
			w.Write([]byte(`{"data":[]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	sets, err := client.ListProductSets(context.Background(), "tok", "c1")
	require.NoError(t, err)

	// One list call plus one membership call per set.
	assert.Equal(t, int32(3), atomic.LoadInt32(&gets))

	require.Len(t, sets, 2)
	assert.Equal(t, ProductSet{ID: "s1", Name: "Summer", Count: 2, ProductIDs: []ProductID{"p1", "p2"}}, sets[0])
	assert.Equal(t, ProductSet{ID: "s2", Name: "Winter", Count: 0, ProductIDs: []ProductID{}}, sets[1])
}

func TestListProductSetsFailsWholeOnMembershipError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v21.0/c1/product_sets":
			w.Write([]byte(`{"data":[{"id":"s1","name":"A","product_count":1},{"id":"s2","name":"B","product_count":1}]}`))
		case r.URL.Path == "/v21.0/s1/products":
			w.Write([]byte(`{"data":[{"id":"p1"}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"boom"}}`))
		}
	}))

	sets, err := client.ListProductSets(context.Background(), "tok", "c1")
	require.Error(t, err)
	assert.Nil(t, sets, "no partial result")
}

func TestCreateProductSetsBatchShape(t *testing.T) {
	var gotRequests []graphBatchRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("batch")), &gotRequests))
		w.Write([]byte(`{}`))
	}))

	_, err := client.CreateProductSets(context.Background(), "tok", "c1", []ProductSetInput{
		{Name: "Summer"},
		{Name: "Winter"},
	})
	require.NoError(t, err)

	require.Len(t, gotRequests, 2)
	assert.Equal(t, "POST", gotRequests[0].Method)
	assert.Equal(t, "c1/product_sets", gotRequests[0].RelativeURL)
	// The body filter matches no products so the set starts empty.
	assert.Contains(t, gotRequests[0].Body, "name=Summer")
	assert.Contains(t, gotRequests[0].Body, "filter=")
}

// setUpdateServer records the order of membership mutations against set s1.
type setUpdateServer struct {
	t       *testing.T
	current string // JSON data array of current members
	ops     []string
}

func (s *setUpdateServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/v21.0/s1/products" && r.Method == http.MethodGet:
		s.ops = append(s.ops, "list")
		fmt.Fprintf(w, `{"data":%s}`, s.current)
	case r.URL.Path == "/v21.0/s1/products" && r.Method == http.MethodDelete:
		s.ops = append(s.ops, "remove")
		w.Write([]byte(`{"success":true}`))
	case r.URL.Path == "/v21.0/s1/products" && r.Method == http.MethodPost:
		s.ops = append(s.ops, "add")
		w.Write([]byte(`{"success":true}`))
	case r.URL.Path == "/v21.0/s1" && r.Method == http.MethodGet:
		s.ops = append(s.ops, "read")
		w.Write([]byte(`{"id":"s1","name":"Summer"}`))
	default:
		s.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	}
}

func newSetUpdateClient(t *testing.T, current string) (*Client, *setUpdateServer) {
	t.Helper()
	handler := &setUpdateServer{t: t, current: current}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}), handler
}

func TestUpdateProductSetRemovesThenAdds(t *testing.T) {
	client, srv := newSetUpdateClient(t, `[{"id":"old1"},{"id":"old2"}]`)

	set, err := client.UpdateProductSet(context.Background(), "tok", "s1", ProductSetUpdate{
		ProductIDs: []ProductID{"new1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"list", "remove", "add", "read"}, srv.ops)
	assert.Equal(t, ProductSetID("s1"), set.ID)
	assert.Equal(t, "Summer", set.Name)
	assert.Equal(t, []ProductID{"new1"}, set.ProductIDs)
	assert.Equal(t, 1, set.Count)
}

func TestUpdateProductSetSkipsRemovalWhenEmpty(t *testing.T) {
	client, srv := newSetUpdateClient(t, `[]`)

	_, err := client.UpdateProductSet(context.Background(), "tok", "s1", ProductSetUpdate{
		ProductIDs: []ProductID{"new1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "add", "read"}, srv.ops)
}

func TestUpdateProductSetSkipsAdditionWhenTargetEmpty(t *testing.T) {
	client, srv := newSetUpdateClient(t, `[{"id":"old1"}]`)

	set, err := client.UpdateProductSet(context.Background(), "tok", "s1", ProductSetUpdate{
		ProductIDs: []ProductID{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "remove", "read"}, srv.ops)
	assert.Empty(t, set.ProductIDs)
}

func TestUpdateProductSetRequiresMembershipList(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))

	_, err := client.UpdateProductSet(context.Background(), "tok", "s1", ProductSetUpdate{})
	require.ErrorIs(t, err, ErrMissingMembership)
	assert.Zero(t, atomic.LoadInt32(&calls), "fails before any network call")
}

func TestNewRetailerIDFormat(t *testing.T) {
	id := newRetailerID()
	assert.True(t, strings.HasPrefix(string(id), "ls-"))
	assert.NotEqual(t, id, newRetailerID())
}
