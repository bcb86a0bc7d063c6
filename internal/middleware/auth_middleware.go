package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/internal/service"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// Context keys set by the merchant auth middleware.
const (
	ctxClient    = "client"
	ctxClientID  = "client_id"
	ctxIsSandbox = "is_sandbox"
)

// AuthMiddleware guards the merchant API surface. It resolves the bearer key
// to an onboarded merchant and throttles repeated invalid attempts per IP.
type AuthMiddleware struct {
	auth    *service.AuthService
	limiter *InvalidAuthRateLimiter
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth:    auth,
		limiter: NewInvalidAuthRateLimiter(),
	}
}

// Handle returns a Gin middleware enforcing merchant authentication.
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.reject(c, "INVALID_TOKEN", "Missing or invalid authorization header")
			return
		}

		client, sandbox, err := m.auth.Authenticate(key, c.GetHeader("X-Client-Id"), c.ClientIP())
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrInvalidClient):
				m.reject(c, "INVALID_CLIENT", "Client inactive or client id mismatch")
			case errors.Is(err, utils.ErrInvalidIP):
				m.reject(c, "INVALID_IP", "Request from unauthorized IP address")
			default:
				m.reject(c, "INVALID_TOKEN", "Invalid API token")
			}
			return
		}

		c.Set(ctxClient, client)
		c.Set(ctxClientID, client.ID)
		c.Set(ctxIsSandbox, sandbox)
		c.Next()
	}
}

// reject answers an auth failure, throttling the source IP first so key
// guessing cannot run unbounded.
func (m *AuthMiddleware) reject(c *gin.Context, code, message string) {
	if !m.limiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.Error(c, 401, code, message)
	c.Abort()
}

// bearerToken extracts the credential from an Authorization header.
func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// GetClient returns the authenticated merchant from context, or nil outside
// the merchant surface.
func GetClient(c *gin.Context) *models.Client {
	v, ok := c.Get(ctxClient)
	if !ok {
		return nil
	}
	client, _ := v.(*models.Client)
	return client
}

// IsSandbox reports whether the request authenticated with the sandbox key.
func IsSandbox(c *gin.Context) bool {
	return c.GetBool(ctxIsSandbox)
}
