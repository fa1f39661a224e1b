package identity

import (
	"net/http"
	"strings"

	idt "github.com/beka-birhanu/vinom-snake/identity"
	"github.com/beka-birhanu/vinom-snake/service"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserClaims is the key used to store user claims in the Gin context.
	ContextUserClaims = "userClaims"

	// AdminKeyHeader carries the operator key on admin routes.
	AdminKeyHeader = "X-Admin-Key"
)

func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve the access token from the Authorization header.
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Status(http.StatusUnauthorized) // No token found in the header.
			c.Abort()
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Status(http.StatusUnauthorized) // Malformed Authorization header.
			c.Abort()
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.Status(http.StatusUnauthorized)
			c.Abort()
			return
		}

		if name, _ := claims[service.PlayerNameClaim].(string); name == "" {
			c.Status(http.StatusUnauthorized) // Token without a player.
			c.Abort()
			return
		}

		// Attach user claims to the request context for further use.
		c.Set(ContextUserClaims, claims)
		c.Next()
	}
}

// PlayerName returns the player stored by Authoriz.
func PlayerName(c *gin.Context) (string, bool) {
	raw, ok := c.Get(ContextUserClaims)
	if !ok {
		return "", false
	}
	claims, ok := raw.(map[string]interface{})
	if !ok {
		return "", false
	}
	name, ok := claims[service.PlayerNameClaim].(string)
	return name, ok && name != ""
}

// AdminOnly lets a request through only when it carries the operator key. A
// nil key disables the admin routes.
func AdminOnly(key *idt.AdminKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin routes are disabled"})
			c.Abort()
			return
		}
		if !key.Verify(c.GetHeader(AdminKeyHeader)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
