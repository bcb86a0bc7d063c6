package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialPrefixes(t *testing.T) {
	live, err := GenerateLiveKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(live, "ls_live_"))

	sandbox, err := GenerateSandboxKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sandbox, "ls_sandbox_"))

	secret, err := GenerateWebhookSecret()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret, "ls_secret_"))

	// 32 random bytes as hex
	assert.Len(t, strings.TrimPrefix(live, "ls_live_"), 64)
}

func TestSignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"event":"push.completed"}`)
	sig := SignPayload(payload, "secret-1")
	assert.True(t, strings.HasPrefix(sig, "sha256="))

	assert.True(t, VerifySignature(payload, sig, "secret-1"))
	assert.False(t, VerifySignature(payload, sig, "secret-2"))
	assert.False(t, VerifySignature([]byte("tampered"), sig, "secret-1"))

	// verification accepts the bare hex digest too
	bare := strings.TrimPrefix(sig, "sha256=")
	assert.True(t, VerifySignature(payload, bare, "secret-1"))
}

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT(7, "admin@lapaksync.id")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "admin@lapaksync.id", claims.Email)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}
