package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vetaris/storefront-golang/internal/auth"
	"go.uber.org/zap"
)

// Context keys set by this package.
const (
	SessionIDKey = "sessionID"
	RequestIDKey = "requestID"
)

const (
	SessionCookie   = "sf_session"
	HeaderRequestID = "X-Request-ID"
)

// RequestID tags every request with an ID, reusing one sent by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Set(RequestIDKey, id)
		c.Next()
	}
}

// Session makes sure every visitor carries a signed session cookie and
// puts the session ID on the context. A missing, expired or forged
// cookie starts a fresh session.
func Session(tokens *auth.Tokens, ttl time.Duration, secure bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Reuse a valid cookie ---
		if raw, err := c.Cookie(SessionCookie); err == nil && raw != "" {
			if sid, err := tokens.ValidateToken(raw); err == nil {
				c.Set(SessionIDKey, sid)
				c.Next()
				return
			}
			log.Debug("discarding invalid session cookie")
		}

		// 2. --- Start a new session ---
		sid := uuid.NewString()
		token, err := tokens.GenerateToken(sid)
		if err != nil {
			log.Error("session token signing failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not start session"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
		c.Set(SessionIDKey, sid)
		c.Next()
	}
}

// SessionID returns the visitor session of c. Session must have run.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
