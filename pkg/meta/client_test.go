package meta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL})
}

func TestCallAppendsAccessToken(t *testing.T) {
	var gotToken string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("access_token")
		w.Write([]byte(`{"data":[]}`))
	}))

	_, err := client.ListBusinesses(context.Background(), "tok-123", "42")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", gotToken)
}

func TestCallGetSerializesParamsIntoQuery(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data":[]}`))
	}))

	_, err := client.ListProducts(context.Background(), "tok", "cat-1")
	require.NoError(t, err)
	assert.Equal(t, productFields, gotQuery.Get("fields"))
	assert.Equal(t, "100", gotQuery.Get("limit"))
}

func TestCallPostSendsFormEncodedBody(t *testing.T) {
	var gotContentType string
	var gotForm url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`{}`))
	}))

	_, err := client.DeleteProducts(context.Background(), "tok", "cat-1", []ProductID{"111"})
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.NotEmpty(t, gotForm.Get("batch"))
}

func TestCallErrorUsesVendorMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token."}}`))
	}))

	_, err := client.ListBusinesses(context.Background(), "bad", "42")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid OAuth access token.", apiErr.Message)
}

func TestCallErrorFallbackMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`upstream exploded`))
	}))

	_, err := client.ListBusinesses(context.Background(), "tok", "42")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, fallbackErrMsg, apiErr.Message)
}

func TestCallRejectsNonJSONSuccessBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))

	_, err := client.ListBusinesses(context.Background(), "tok", "42")
	require.Error(t, err)
	assert.NotErrorAs(t, err, new(*APIError))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, DefaultBaseURL, c.config.BaseURL)
	assert.Equal(t, DefaultVersion, c.config.Version)
}
