// Package auth issues the dashboard's own session credential. A sign-in gets
// an HS256 token naming the admin and the dashboard session id; the backend
// access token never leaves the server.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer names tokens minted by this dashboard
const Issuer = "shario-admin-dashboard"

// DefaultTTL is how long a dashboard credential is honored
const DefaultTTL = 12 * time.Hour

// Token validation errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrMissingToken     = errors.New("no session credential")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrSecretEmpty      = errors.New("session secret cannot be empty")
	ErrUserEmpty        = errors.New("user cannot be nil")
	ErrSessionEnded     = errors.New("dashboard session has ended")
)

// Claims identify the admin and the sign-in the token was issued for
type Claims struct {
	AdminID   string `json:"admin_id,omitempty"`
	Email     string `json:"email,omitempty"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AdminLabel is the id used in logs: the admin id, else the email
func (c *Claims) AdminLabel() string {
	if c.AdminID != "" {
		return c.AdminID
	}
	return c.Email
}

// Token is a signed credential and when it stops being honored
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GenerateSecret returns 32 random bytes for signing. Tokens signed with it
// do not survive a restart.
func GenerateSecret() []byte {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	return secret
}

// GenerateToken signs a credential for user bound to sessionID
func GenerateToken(user *models.CurrentUser, sessionID string, secret []byte, ttl time.Duration) (*Token, error) {
	if user == nil {
		return nil, ErrUserEmpty
	}
	if len(secret) == 0 {
		return nil, ErrSecretEmpty
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		AdminID:   user.ID.String(),
		Email:     user.Email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    Issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken checks signature, issuer and expiry and returns the claims
func ValidateToken(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	if len(secret) == 0 {
		return nil, ErrSecretEmpty
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
