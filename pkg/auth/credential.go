package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the dashboard credential for browsers
const CookieName = "shario_admin_session"

// ClaimsKey is the gin context key the guard stores validated claims under
const ClaimsKey = "dashboard_claims"

// ExtractToken reads the credential from "Authorization: Bearer", else from
// the session cookie.
func ExtractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}

	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", ErrMissingToken
}

// SetCookie hands the credential to a browser. The cookie is HttpOnly and
// SameSite=Strict; secure marks it HTTPS-only.
func SetCookie(c *gin.Context, token *Token, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token.Value, int(time.Until(token.ExpiresAt).Seconds()), "/", "", secure, true)
}

// ClearCookie expires the session cookie
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

// GetClaims returns the claims the guard validated for this request
func GetClaims(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}
