package middleware

import (
	"net/http"

	"agency-platform/config"
	"agency-platform/internal/auth"
	"agency-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the single HTTP-only cookie carrying the opaque
// session identifier.
const SessionCookie = "agency_session"

const (
	ctxUser    = "current_user"
	ctxSession = "session_token"
)

func SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int((12 * 60 * 60)), "/", "", config.IsProduction(), true)
}

func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", config.IsProduction(), true)
}

// ResolveSession attaches the current user to the request context when the
// cookie references a live session. It never aborts: anonymous callers
// pass through so endpoints like GET /api/auth/user can answer null.
func ResolveSession(manager *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		c.Set(ctxSession, token)

		user, rotated, err := manager.Resolve(token)
		if err != nil {
			// Resolution errors degrade to anonymous; the store problem
			// is logged where it happened.
			c.Next()
			return
		}
		if rotated != nil {
			SetSessionCookie(c, rotated.Token)
			c.Set(ctxSession, rotated.Token)
		}
		if user != nil {
			c.Set(ctxUser, user)
		}
		c.Next()
	}
}

// RequireAuth aborts anonymous requests with an opaque 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			c.Abort()
			return
		}
		if user.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *users.User {
	v, exists := c.Get(ctxUser)
	if !exists {
		return nil
	}
	u, ok := v.(*users.User)
	if !ok {
		return nil
	}
	return u
}

// SessionToken returns the cookie value seen on this request, possibly
// already rotated by the legacy upgrade path.
func SessionToken(c *gin.Context) string {
	v, exists := c.Get(ctxSession)
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}
