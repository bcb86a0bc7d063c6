package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signaturePrefix follows the GitHub/Meta webhook convention of prefixing
// the hex digest with the hash algorithm.
const signaturePrefix = "sha256="

// SignPayload computes the HMAC-SHA256 of payload under the client's webhook
// secret, returned as "sha256=<hex>". Sent in the X-Signature header of
// every callback so merchants can authenticate deliveries.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches payload under secret.
// The "sha256=" prefix is optional on the supplied signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	signature = strings.TrimPrefix(signature, signaturePrefix)
	expected := strings.TrimPrefix(SignPayload(payload, secret), signaturePrefix)
	return hmac.Equal([]byte(signature), []byte(expected))
}
