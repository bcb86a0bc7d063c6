package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the Graph API host.
	DefaultBaseURL = "https://graph.facebook.com"
	// DefaultVersion is the pinned Graph API version every request is issued against.
	DefaultVersion = "v21.0"

	// fallbackErrMsg is surfaced when a failed response carries no vendor error message.
	fallbackErrMsg = "graph api request failed"
)

// Config holds Graph API client configuration.
type Config struct {
	BaseURL string // override for tests; defaults to DefaultBaseURL
	Version string // defaults to DefaultVersion
	AppID   string
}

// Client is a minimal HTTP client for the Meta Graph API commerce surface.
// It holds no session state: the access token is supplied on every call.
type Client struct {
	httpClient *http.Client
	config     Config
	debug      bool
}

// NewClient constructs a new Graph API client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		config:     cfg,
		debug:      os.Getenv("ENV") == "development",
	}
}

// call performs one Graph API round-trip. The access token always travels as
// the access_token query parameter. GET params are appended to the query
// string (values must already be strings; nested structures pre-JSON-encoded
// by the caller). POST and DELETE params go form-encoded into the body.
// The response body is decoded as JSON unconditionally, so a non-JSON body is
// an error even on a 2xx status.
func (c *Client) call(ctx context.Context, method, path, token string, params url.Values, result any) error {
	endpoint := c.config.BaseURL + "/" + c.config.Version + path

	query := url.Values{"access_token": {token}}

	var body io.Reader
	var contentType string
	switch method {
	case http.MethodGet:
		for key, values := range params {
			for _, v := range values {
				query.Add(key, v)
			}
		}
	case http.MethodPost, http.MethodDelete:
		if len(params) > 0 {
			body = strings.NewReader(params.Encode())
			contentType = "application/x-www-form-urlencoded"
		}
	default:
		return fmt.Errorf("unsupported method %s", method)
	}

	if c.debug {
		// Token stays out of the log: only path and params are recorded.
		log.Debug().
			Str("method", method).
			Str("endpoint", endpoint).
			Str("params", params.Encode()).
			Msg("[GRAPH] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+query.Encode(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", path).
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[GRAPH] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			return &APIError{Message: envelope.Error.Message}
		}
		return &APIError{Message: fallbackErrMsg}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// escape makes an identifier safe for use as a path segment.
func escape[T ~string](id T) string {
	return url.PathEscape(string(id))
}
