package admin

import (
	"context"
	"strings"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/session"
)

// SessionWriter is the part of the session store SignIn needs
type SessionWriter interface {
	SetToken(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error
	SetUser(user *models.CurrentUser)
}

// Login authenticates against the public endpoint. It does not touch the session.
func (a *API) Login(ctx context.Context, identifier, password string) (*models.LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, errors.New(errors.ErrCodeValidation, "Username or email and password are required")
	}

	body, err := a.post(ctx, a.endpoints.public("/auth/login"), models.LoginRequest{
		UsernameOrEmail: identifier,
		Password:        password,
		RememberMe:      false,
	})
	if err != nil {
		return nil, err
	}

	result, err := normalizeObject[models.LoginResult](body)
	if err != nil {
		return nil, err
	}
	if result == nil || result.AccessToken == "" {
		return nil, errors.New(errors.ErrCodeDecode, "Login response did not include an access token")
	}
	return result, nil
}

// SignIn logs in and records the session: tokens to storage, user in memory.
// The user comes from the response, else from the token claims, else it is
// just the identifier typed into the form.
func (a *API) SignIn(ctx context.Context, store SessionWriter, identifier, password string) (*models.CurrentUser, error) {
	result, err := a.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	if err := store.SetToken(ctx, result.AccessToken); err != nil {
		return nil, err
	}
	if err := store.SetRefreshToken(ctx, result.RefreshToken); err != nil {
		return nil, err
	}

	user := result.User
	if user == nil {
		user = session.ProfileFromToken(result.AccessToken)
	}
	if user == nil {
		user = &models.CurrentUser{Email: strings.TrimSpace(identifier)}
	}
	store.SetUser(user)

	a.logger.WithField("admin", user.Email).Info(ctx, "Admin signed in")
	return user, nil
}
