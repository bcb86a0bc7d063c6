package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// Context keys set by the admin JWT middleware.
const (
	ctxAdminID    = "admin_id"
	ctxAdminEmail = "admin_email"
)

// JWTMiddleware guards the admin surface with the JWTs minted at login.
type JWTMiddleware struct{}

func NewJWTMiddleware() *JWTMiddleware {
	return &JWTMiddleware{}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing or invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ctxAdminID, claims.UserID)
		c.Set(ctxAdminEmail, claims.Email)
		c.Next()
	}
}
