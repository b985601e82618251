// Package middleware provides the gin middleware used by the readlist API.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// sessionCookie is the cookie carrying the session token for browser requests.
const sessionCookie = "session"

// ownerIDKey is the gin context key holding the resolved owner identity.
const ownerIDKey = "owner_id"

// Claims represents the JWT claims issued by the identity service.
// Sub carries the owner identity.
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// Identity resolves the owner identity from either a Bearer token or the
// session cookie and stores it in the request context. Requests with no
// valid token are rejected with 401 before any store access.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ownerID, err := validateToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ownerIDKey, ownerID)
		c.Next()
	}
}

// OwnerID returns the owner identity stored by Identity.
func OwnerID(c *gin.Context) (string, bool) {
	val, exists := c.Get(ownerIDKey)
	if !exists {
		return "", false
	}

	id, ok := val.(string)
	return id, ok && id != ""
}

// extractToken returns the raw token from the Authorization header or the
// session cookie, preferring the header.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie
}

// validateToken parses the HS256 token and returns its subject.
func validateToken(tokenString, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Sub == "" {
		return "", errors.New("invalid token")
	}

	return claims.Sub, nil
}
