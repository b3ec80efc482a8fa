package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/session"
)

// Context keys set for authenticated requests.
const (
	CtxEmail = "session_email"
	CtxRole  = "session_role"
	CtxToken = "session_token"
	CtxName  = "session_display_name"
)

// RequireSession validates the Bearer token against the session store and
// places the identity in context. The paired X-Session-Email header must
// match the session's owner.
func RequireSession(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		email := strings.TrimSpace(c.GetHeader("X-Session-Email"))
		if token == "" || email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing session credentials"})
			c.Abort()
			return
		}

		sess, err := sessions.Validate(c.Request.Context(), email, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "session is invalid or expired"})
			c.Abort()
			return
		}

		c.Set(CtxEmail, sess.User.Email)
		c.Set(CtxRole, sess.User.Role)
		c.Set(CtxToken, token)
		c.Set(CtxName, sess.User.DisplayName)

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
