package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/auth"
	"github.com/naturespot/naturespot/backend/internal/logger"
)

// UserIDKey is the gin context key holding the verified caller's user ID
const UserIDKey = "user_id"

// RequireUser returns middleware that rejects requests without a valid user
// bearer token. The verified user ID is stored under UserIDKey.
func RequireUser(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrMissingToken) {
				logger.Log.Warn("Token verification failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the user ID set by RequireUser, or "".
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// AdminKeyAuth returns middleware that requires a valid admin key for access.
// If key is empty, all requests are allowed (local development).
// The key should be provided in the Authorization header as "Bearer <key>".
func AdminKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		if status, body := checkAdminKey(c.GetHeader("Authorization"), key); status != http.StatusOK {
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}

// VerifyAdminKey returns a handler clients use to check a stored admin key.
func VerifyAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.JSON(http.StatusOK, gin.H{
				"valid":        true,
				"auth_enabled": false,
				"message":      "Authentication is not configured",
			})
			return
		}

		if status, body := checkAdminKey(c.GetHeader("Authorization"), key); status != http.StatusOK {
			body["valid"] = false
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":        true,
			"auth_enabled": true,
		})
	}
}

func checkAdminKey(header, key string) (int, gin.H) {
	if header == "" {
		return http.StatusUnauthorized, gin.H{
			"error": "Authorization header required",
			"code":  "AUTH_REQUIRED",
		}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return http.StatusUnauthorized, gin.H{
			"error": "Invalid authorization format. Use: Bearer <admin_key>",
			"code":  "AUTH_INVALID_FORMAT",
		}
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(key)) != 1 {
		return http.StatusUnauthorized, gin.H{
			"error": "Invalid admin key",
			"code":  "AUTH_INVALID_KEY",
		}
	}
	return http.StatusOK, nil
}

// AuthStatus reports whether the admin endpoints require a key.
// This is a public endpoint that doesn't require authentication.
func AuthStatus(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"auth_enabled": key != ""})
	}
}
