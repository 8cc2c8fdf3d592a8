package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const (
	// CustomerIDContextKey is a gin context key for authenticated customer identifier.
	CustomerIDContextKey = "customerID"
	authCookieName       = "storefront_token"
	adminTokenHeader     = "X-Admin-Token"
)

// TokenParser resolves a session token into a customer identifier.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// AdminAuthorizer decides whether a presented admin token is accepted.
type AdminAuthorizer interface {
	Allow(candidate string) bool
}

// AuthRequired ensures customer is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		customerID, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(CustomerIDContextKey, customerID)
		c.Next()
	}
}

// AdminRequired guards back-office routes with the static admin token,
// read from X-Admin-Token or a bearer Authorization header.
func AdminRequired(guard AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(adminTokenHeader)
		if token == "" {
			token = bearerToken(c)
		}
		if !guard.Allow(token) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func extractToken(c *gin.Context) string {
	if token := bearerToken(c); token != "" {
		return token
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
