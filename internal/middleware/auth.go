package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/azhao/scanpay/internal/auth"
)

// sessionIDKey is the gin context key holding the verified session id.
const sessionIDKey = "session_id"

// SessionID returns the verified session id set by RequireSession, or "".
func SessionID(c *gin.Context) string {
	id, _ := c.Value(sessionIDKey).(string)
	return id
}

// RequireSession validates the Bearer session token and puts the session id
// on the request context. Requests without a valid token are rejected.
func RequireSession(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		sessionID, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}
