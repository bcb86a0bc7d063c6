package meta

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeleteRequestSerialization(t *testing.T) {
	encoded, err := encodeBatch([]graphBatchRequest{newDeleteRequest(ProductID("12345"))})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"method":"DELETE","relative_url":"12345"}]`, encoded)
}

func TestNewCreateSetRequestSerialization(t *testing.T) {
	req := newCreateSetRequest("cat-1", "Summer Sale")

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "cat-1/product_sets", req.RelativeURL)

	form, err := url.ParseQuery(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", form.Get("name"))
	assert.Equal(t, `{"product_item_id":{"is_any":[]}}`, form.Get("filter"))
}

func TestNewCreateItemRequestSerialization(t *testing.T) {
	req := newCreateItemRequest("r-1", ProductInput{
		Name:        "Shirt",
		Description: "Cotton",
		Brand:       "Acme",
		Link:        "https://shop.example/shirt",
		ImageURL:    "https://cdn.example/shirt.jpg",
		Price:       19.99,
		Currency:    "USD",
	})

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"method": "CREATE",
		"retailer_id": "r-1",
		"data": {
			"name": "Shirt",
			"description": "Cotton",
			"brand": "Acme",
			"url": "https://shop.example/shirt",
			"image_url": "https://cdn.example/shirt.jpg",
			"price": 1999,
			"currency": "USD"
		}
	}`, string(b))
}

func TestMinorUnitsRounding(t *testing.T) {
	assert.Equal(t, int64(1999), minorUnits(19.99))
	assert.Equal(t, int64(10), minorUnits(0.1))
	assert.Equal(t, int64(1000), minorUnits(9.999)) // rounds, does not truncate
	assert.Equal(t, int64(0), minorUnits(0))
}

func TestBatchResponseKeepsRawBody(t *testing.T) {
	body := `{"handles":["h1","h2"],"extra":{"nested":true}}`
	var resp BatchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Equal(t, []string{"h1", "h2"}, resp.Handles)
	assert.JSONEq(t, body, string(resp.Raw))
}
