package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ledgerchat/ledgerchat/internal/observability"
)

// SessionHeader carries the Redis session ID as an alternative to a JWT
const SessionHeader = "X-Session-ID"

// Middleware returns a gin middleware that authenticates requests via
// Bearer JWT or session ID and applies per-client rate limiting
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.ClientIP()
		if !GetGlobalRateLimiter().Allow(clientID, m.config.RateLimit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests, slow down",
				},
			})
			return
		}

		userID, username, ok := m.authenticate(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "NOT_AUTHENTICATED",
					"message": "Authentication required",
				},
			})
			return
		}

		c.Set("user_id", userID)
		c.Set("username", username)

		// Propagate the user onto the request context for structured logs
		ctx := observability.WithUserID(c.Request.Context(), username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func (m *Manager) authenticate(c *gin.Context) (int64, string, bool) {
	// Bearer JWT first
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if claims, err := m.ValidateToken(tokenString); err == nil {
			return claims.UserID, claims.Username, true
		}
	}

	// Fall back to the session header, then the session cookie
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		sessionID, _ = c.Cookie("session_id")
	}
	if sessionID != "" {
		if sess, err := m.ValidateSession(c.Request.Context(), sessionID); err == nil {
			return sess.UserID, sess.Username, true
		}
	}

	return 0, "", false
}
