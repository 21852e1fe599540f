package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionIDKey is the gin context key holding the caller's session ID.
const SessionIDKey = "session_id"

const sessionCookie = "session_id"

// Session ensures every request carries a session ID, minting a cookie for
// first-time visitors. The cart store is keyed by this ID.
func Session(cookieMaxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(sessionCookie, sessionID, cookieMaxAge, "/", "", false, true)
		}
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session ID attached by the Session middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
