package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/language"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCtxKey = "sessionID"
)

// sessionMiddleware identifies the browsing session from the X-Session-ID
// header and issues a fresh id when the header is missing or malformed. The
// id is echoed back so the client can keep it.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(sessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(sessionCtxKey, id)
		c.Header(sessionHeader, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}

// requestLanguage is the ?lang query parameter when valid, otherwise the
// session's stored preference.
func (h *handlers) requestLanguage(c *gin.Context) language.Code {
	if raw := c.Query("lang"); raw != "" {
		if code, err := language.Parse(raw); err == nil {
			return code
		}
	}
	if h.deps.Languages == nil {
		return language.Default
	}
	return h.deps.Languages.Get(sessionID(c))
}
