package models

import (
	"strings"
	"time"
)

// SandboxKeyPrefix marks a merchant key as sandbox mode. Sandbox pushes hit
// the same Graph API but are flagged on every push log so merchants can
// filter test traffic out of their history.
const SandboxKeyPrefix = "ls_sandbox_"

// Client is a merchant onboarded to the gateway. Each merchant holds a live
// and a sandbox API key, an optional link to the Meta business whose catalogs
// it manages, and a webhook endpoint the gateway notifies when pushes settle.
// Key material is serialized only on the admin surface that issues it.
type Client struct {
	ID             int       `db:"id" json:"id"`
	ClientID       string    `db:"client_id" json:"clientId"`
	Name           string    `db:"name" json:"name"`
	APIKey         string    `db:"api_key" json:"apiKey,omitempty"`
	SandboxKey     string    `db:"sandbox_key" json:"sandboxKey,omitempty"`
	MetaBusinessID string    `db:"meta_business_id" json:"metaBusinessId,omitempty"`
	DefaultCatalog string    `db:"default_catalog_id" json:"defaultCatalogId,omitempty"`
	CallbackURL    string    `db:"callback_url" json:"callbackUrl"`
	CallbackSecret string    `db:"callback_secret" json:"callbackSecret,omitempty"`
	IPWhitelist    []string  `db:"ip_whitelist" json:"ipWhitelist"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// HasCallback reports whether the merchant registered a webhook endpoint.
func (c *Client) HasCallback() bool {
	return c.CallbackURL != ""
}

// IsSandboxKey reports whether the given key is the merchant's sandbox key.
// The prefix alone is not trusted; the key must match what is on record.
func (c *Client) IsSandboxKey(key string) bool {
	return strings.HasPrefix(key, SandboxKeyPrefix) && key == c.SandboxKey
}
