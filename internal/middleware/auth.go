package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"estate-listing-backend/internal/config"
)

const (
	UserIDKey    = "user_id"
	UserNameKey  = "user_name"
	UserPhoneKey = "user_phone"
	UserEmailKey = "user_email"
)

// AuthMiddleware validates the Supabase HS256 bearer token and stashes the
// user id plus any profile claims used to pre-fill the wizard's contact
// fields.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err != nil {
			var errorMsg string
			switch {
			case strings.Contains(err.Error(), "signature is invalid"):
				errorMsg = "token signature is invalid - check JWT secret"
			case strings.Contains(err.Error(), "token is expired"):
				errorMsg = "token has expired"
			default:
				errorMsg = err.Error()
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "message": errorMsg})
			c.Abort()
			return
		}

		if !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id in token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, sub)

		// Profile claims are optional; the wizard pre-fills contact fields
		// from whatever is present.
		if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
			if name, ok := meta["name"].(string); ok {
				c.Set(UserNameKey, name)
			}
			if phone, ok := meta["phone"].(string); ok {
				c.Set(UserPhoneKey, phone)
			}
		}
		if email, ok := claims["email"].(string); ok {
			c.Set(UserEmailKey, email)
		}

		c.Next()
	}
}
