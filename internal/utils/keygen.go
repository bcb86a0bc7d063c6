package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// keyBytes is the entropy per credential; rendered as 64 hex characters.
const keyBytes = 32

// newKey issues a random credential of the form prefix_<hex>.
func newKey(prefix string) (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return prefix + "_" + hex.EncodeToString(b), nil
}

// GenerateLiveKey issues a production API key (ls_live_...).
func GenerateLiveKey() (string, error) {
	return newKey("ls_live")
}

// GenerateSandboxKey issues a sandbox API key (ls_sandbox_...).
func GenerateSandboxKey() (string, error) {
	return newKey("ls_sandbox")
}

// GenerateWebhookSecret issues a callback signing secret (ls_secret_...).
func GenerateWebhookSecret() (string, error) {
	return newKey("ls_secret")
}
