package middleware

import (
	"github.com/labstack/echo/v4"
)

const sessionKey = "session"

// Session is the authenticated staff member behind a request.  JWTAuth
// stores it in the echo context; handlers read it with CurrentSession.
type Session struct {
	UserID   uint64
	Username string
	Role     string
}

// CurrentSession returns the session of the request, if any.
func CurrentSession(c echo.Context) (Session, bool) {
	s, ok := c.Get(sessionKey).(Session)
	return s, ok
}

// SetSession attaches s to the request.
func SetSession(c echo.Context, s Session) { c.Set(sessionKey, s) }

// Actor is the name recorded in audit entries for the request: the staff
// username, or "public" for anonymous callers.
func Actor(c echo.Context) string {
	if s, ok := CurrentSession(c); ok && s.Username != "" {
		return s.Username
	}
	return "public"
}
