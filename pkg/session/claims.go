package session

import (
	"fmt"

	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

// ProfileFromToken reads the admin profile out of an access token's claims.
// The signature is not verified: the backend owns the key and this is display
// data only. Returns nil when the token is not a JWT or names nobody.
func ProfileFromToken(token string) *models.CurrentUser {
	if token == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	user := &models.CurrentUser{
		Email:    stringClaim(claims, "email"),
		Username: stringClaim(claims, "username"),
	}
	if id := stringClaim(claims, "user_id"); id != "" {
		user.ID = models.ID(id)
	} else if sub, err := claims.GetSubject(); err == nil && sub != "" {
		user.ID = models.ID(sub)
	}
	if user.Username == "" {
		user.Username = stringClaim(claims, "preferred_username")
	}

	if user.ID == "" && user.Email == "" && user.Username == "" {
		return nil
	}
	return user
}

func stringClaim(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
