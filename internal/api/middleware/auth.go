package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the opaque session id.
const SessionCookie = "cancha_session"

// AuthMiddleware authenticates a request from a Bearer JWT or, failing
// that, the session cookie. The account is re-fetched on every request so
// deleted accounts are rejected immediately, and the copy stored in the
// context never carries the password hash.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := resolveAccount(c, authService)
		if err != nil {
			log.Printf("❌ [Auth] Unauthenticated request - Path: %s, Error: %v", c.Request.URL.Path, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired credentials"})
			c.Abort()
			return
		}

		c.Set("accountID", account.ID)
		c.Set("account", account)
		c.Next()
	}
}

// OptionalAuthMiddleware sets account context when credentials are present
// but lets anonymous requests through
func OptionalAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := resolveAccount(c, authService)
		if err == nil {
			c.Set("accountID", account.ID)
			c.Set("account", account)
		}
		c.Next()
	}
}

func resolveAccount(c *gin.Context, authService service.AuthService) (*repository.Account, error) {
	ctx := c.Request.Context()

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, service.ErrUnauthorized
		}

		token, err := authService.ValidateToken(parts[1])
		if err != nil || !token.Valid {
			return nil, service.ErrUnauthorized
		}

		accountID, err := authService.GetAccountIDFromToken(token)
		if err != nil {
			return nil, service.ErrUnauthorized
		}

		return authService.CurrentAccount(ctx, accountID)
	}

	if sessionID, err := c.Cookie(SessionCookie); err == nil && sessionID != "" {
		return authService.ResolveSession(ctx, sessionID)
	}

	return nil, service.ErrUnauthorized
}

// RequestLogger logs all incoming requests with details
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		statusEmoji := "✅"
		if status >= 400 && status < 500 {
			statusEmoji = "⚠️"
		} else if status >= 500 {
			statusEmoji = "❌"
		}

		log.Printf("%s [%s] %s %d - %v", statusEmoji, method, path, status, duration)

		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				log.Printf("❌ [Error] %v", e.Err)
			}
		}
	}
}

// GetAccountID extracts the authenticated account id from gin context
func GetAccountID(c *gin.Context) string {
	accountID, exists := c.Get("accountID")
	if !exists {
		return ""
	}
	return accountID.(string)
}

// GetAccount extracts the sanitized account from gin context
func GetAccount(c *gin.Context) *repository.Account {
	account, exists := c.Get("account")
	if !exists {
		return nil
	}
	return account.(*repository.Account)
}

// RequireAccountID returns false and writes a 401 if no account is set
func RequireAccountID(c *gin.Context) (string, bool) {
	accountID := GetAccountID(c)
	if accountID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	return accountID, true
}
