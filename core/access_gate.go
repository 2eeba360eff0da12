package core

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Paths reachable without a session: the login screen and the
// auth/login/logout/test API endpoints. Everything else is protected.
var publicPathPrefixes = []string{
	"/login",
	"/api/auth",
	"/api/login",
	"/api/logout",
	"/api/test",
}

const loginRedirectTarget = "/login?redirected=true"

const userContextKey = "user"

// IsProtectedPath reports whether a request path requires a valid session.
func IsProtectedPath(path string) bool {
	for _, prefix := range publicPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// ResolveSession extracts, decodes, and validates the session cookie of a
// request. The possible failures (missing cookie, malformed token, expired
// session, rotated credentials) are returned distinctly for logging, but
// callers must collapse them into a single unauthenticated outcome.
func ResolveSession(r *http.Request, creds AdminCredentials, now time.Time) (User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		// No cookie at all; nothing to decode.
		return User{}, err
	}
	payload, err := DecodeSessionToken(cookie.Value)
	if err != nil {
		return User{}, err
	}
	return ValidateSession(payload, creds, now)
}

// AuthMiddleware guards every protected path. Public paths pass through with
// no cookie inspection at all. On a protected path, any resolution failure
// sends the client back to the login page with a redirected marker and
// aborts before downstream handlers run; which check failed is only logged.
func AuthMiddleware(creds AdminCredentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsProtectedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		user, err := ResolveSession(c.Request, creds, time.Now())
		if err != nil {
			log.Printf("auth: rejecting %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.Redirect(http.StatusFound, loginRedirectTarget)
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by AuthMiddleware.
// Downstream handlers may read it but must not mutate request identity.
func CurrentUser(c *gin.Context) (User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}
