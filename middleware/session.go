package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "foodgram_session"
	sessionIDKey      = "session_id"
	sessionMaxAge     = 30 * 24 * 60 * 60
)

// GetSessionID returns the caller's anonymous session id, or "" if the
// request carries none.
func GetSessionID(c *gin.Context) string {
	if id := c.GetString(sessionIDKey); id != "" {
		return id
	}
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie); err != nil {
		return ""
	}
	return cookie
}

// EnsureSessionID returns the caller's session id, issuing a new cookie when
// the request has none.
func EnsureSessionID(c *gin.Context) string {
	if id := GetSessionID(c); id != "" {
		return id
	}
	id := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, id, sessionMaxAge, "/", "", c.Request.TLS != nil, true)
	c.Set(sessionIDKey, id)
	return id
}
