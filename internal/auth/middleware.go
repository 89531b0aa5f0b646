package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const maxClientIDLength = 128

// resolves who the caller is for history and quota purposes:
// a valid bearer token, else the client id header, else the client IP.
// invalid tokens are ignored like missing ones
func Identify(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, secret); ok {
			c.Set(KeyUserID, claims.UserID)
			c.Set(KeyEmail, claims.Email)
			c.Set(KeyOwner, "user:"+claims.UserID)
			c.Next()

			return
		}

		if id := clientID(c.GetHeader(ClientIDHeader)); id != "" {
			c.Set(KeyOwner, "client:"+id)
			c.Next()

			return
		}

		c.Set(KeyOwner, "ip:"+c.ClientIP())
		c.Next()
	}
}

func bearerClaims(c *gin.Context, secret string) (*Claims, bool) {
	if secret == "" {
		return nil, false
	}

	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := ValidateJWT(secret, parts[1])
	if err != nil || claims.UserID == "" {
		return nil, false
	}

	return claims, true
}

// accepts short ids made of letters, digits, dashes and underscores
func clientID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxClientIDLength {
		return ""
	}

	for _, r := range raw {
		ok := r == '-' || r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return ""
		}
	}

	return raw
}

// the caller identity set by Identify
func GetOwner(c *gin.Context) string {
	return c.GetString(KeyOwner)
}

// the email claim of an authenticated caller, empty otherwise
func GetEmail(c *gin.Context) string {
	return c.GetString(KeyEmail)
}

// extracts user_id from context after Identify
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(KeyUserID)
	return userID, userID != ""
}
