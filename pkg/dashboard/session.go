package dashboard

import (
	"context"

	"github.com/facuhernandez99/shario-admin/pkg/auth"
	"github.com/facuhernandez99/shario-admin/pkg/errors"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardPath is where a successful sign-in sends the admin
const DashboardPath = "/dashboard"

func (s *Server) login(c *gin.Context) {
	ctx := c.Request.Context()

	// Bound without BindAndValidate so the password is sent exactly as typed.
	var form LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		httpclient.RespondWithValidationErrors(c, map[string]string{"request": "Invalid JSON format"})
		return
	}
	form.UsernameOrEmail = httpclient.SanitizeString(form.UsernameOrEmail)
	if verrs := httpclient.ValidateStruct(form); verrs.HasErrors() {
		validationFailed(c, verrs)
		return
	}

	user, err := s.api.SignIn(ctx, s.store, form.UsernameOrEmail, form.Password)
	if err != nil {
		s.log.WithField("identifier", form.UsernameOrEmail).WarnErr(ctx, "Sign in failed", err)
		// A rejected sign-in must not be mistaken for an expired session.
		if errors.Is(err, errors.ErrCodeUnauthorized) {
			httpclient.RespondWithUnauthorized(c, errors.UserMessage(err, "Invalid credentials"), s.config.LoginPath)
			return
		}
		httpclient.RespondWithAppError(c, err, "Sign in failed")
		return
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		s.log.Error(ctx, "Failed to start dashboard session", err)
		httpclient.RespondWithAppError(c, err, "Sign in failed")
		return
	}
	auth.SetCookie(c, token, s.config.SecureCookie)

	s.log.WithField("admin", user.Email).Info(ctx, "Admin signed in")
	httpclient.RespondWithMessage(c, "Signed in", gin.H{
		"user":      user,
		"redirect":  DashboardPath,
		"token":     token.Value,
		"expiresAt": token.ExpiresAt,
	})
}

// startSession records a fresh dashboard session id and signs a credential
// for it. Only the latest sign-in is honored; earlier credentials stop working.
func (s *Server) startSession(ctx context.Context, user *models.CurrentUser) (*auth.Token, error) {
	sessionID := uuid.NewString()
	if err := s.store.Storage().Set(ctx, session.DashboardSessionKey, sessionID); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "Failed to start dashboard session")
	}

	token, err := auth.GenerateToken(user, sessionID, s.secret, s.config.SessionTTL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to issue session credential")
	}
	return token, nil
}

func (s *Server) logout(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.store.Logout(ctx); err != nil {
		s.log.Error(ctx, "Failed to clear session", err)
		httpclient.RespondWithAppError(c, err, "Sign out failed")
		return
	}

	auth.ClearCookie(c, s.config.SecureCookie)

	s.mu.Lock()
	s.users = nil
	s.mu.Unlock()

	httpclient.RespondWithMessage(c, "Signed out", gin.H{"redirect": s.config.LoginPath})
}

// currentSession tells the page whether this caller is signed in. A caller
// without a valid credential sees no user even while another is signed in.
func (s *Server) currentSession(c *gin.Context) {
	httpclient.AddNoCacheHeaders(c)
	if _, err := s.authenticate(c); err != nil {
		httpclient.RespondWithSuccess(c, gin.H{"authenticated": false, "user": nil})
		return
	}
	httpclient.RespondWithSuccess(c, gin.H{
		"authenticated": true,
		"user":          s.store.User(),
	})
}
