package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travel-admin/auth"
	"travel-admin/utils"
)

const (
	SessionCookie = "auth-token"
	claimsKey     = "session_claims"
)

func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func authenticate(c *gin.Context, tokens *auth.TokenService) bool {
	if _, ok := CurrentAdmin(c); ok {
		return true
	}
	claims, err := tokens.VerifySessionToken(sessionToken(c))
	if err != nil {
		return false
	}
	c.Set(claimsKey, claims)
	return true
}

// CurrentAdmin returns the session claims set by RequireSession or
// SessionGate.
func CurrentAdmin(c *gin.Context) (*auth.SessionClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.SessionClaims)
	return claims, ok && claims != nil
}

// RequireSession guards API routes: 401 JSON when the session is missing or
// invalid.
func RequireSession(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			utils.RespondError(c, utils.Unauthorized())
			return
		}
		c.Next()
	}
}

// SessionGate redirects unauthenticated browser requests under any of the
// protected prefixes to loginPath. Other paths pass through untouched.
func SessionGate(tokens *auth.TokenService, prefixes []string, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isProtected(c.Request.URL.Path, prefixes) {
			c.Next()
			return
		}
		if !authenticate(c, tokens) {
			c.Redirect(http.StatusTemporaryRedirect, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimRight(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
