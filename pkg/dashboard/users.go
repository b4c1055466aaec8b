package dashboard

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/facuhernandez99/shario-admin/pkg/admin"
	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/export"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// listUsers fetches one backend page and keeps it as the current page. The
// optional q narrows the rendered rows without another request.
func (s *Server) listUsers(c *gin.Context) {
	page, err := s.api.GetAllUsers(c.Request.Context(), httpclient.GetPageFromQuery(c), s.config.UserPageSize)
	if err != nil {
		s.fail(c, err, "Failed to load users")
		return
	}

	s.mu.Lock()
	s.users = page
	s.mu.Unlock()

	httpclient.RespondWithSuccess(c, searchUsers(*page, c.Query("q")))
}

func searchUsers(page models.Page[models.User], query string) models.Page[models.User] {
	page.Items = pagination.Filter(page.Items, func(u models.User) bool {
		return pagination.MatchesQuery(query, u.Username, u.Email, u.FirstName)
	})
	return page
}

// deleteUser deletes on the backend, then drops exactly that row from the
// current page. A user the backend no longer knows counts as already deleted.
func (s *Server) deleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := models.ID(c.Param("id"))
	if err := s.api.DeleteUser(ctx, id); err != nil {
		if !errors.Is(err, errors.ErrCodeNotFound) {
			s.fail(c, err, "Failed to delete user")
			return
		}
		s.log.WithField("user_id", id.String()).Info(ctx, "User already deleted on the backend")
	}

	s.mu.Lock()
	var remaining models.Page[models.User]
	if s.users != nil {
		before := len(s.users.Items)
		s.users.Items = pagination.Remove(s.users.Items, func(u models.User) bool { return u.UserID == id })
		s.users.TotalItems -= before - len(s.users.Items)
		remaining = *s.users
	}
	s.mu.Unlock()

	httpclient.RespondWithMessage(c, "User deleted", remaining)
}

// addPoints grants points, notifies the user, then re-fetches the current page
// so trust scores come from the backend.
func (s *Server) addPoints(c *gin.Context) {
	ctx := c.Request.Context()
	id := models.ID(c.Param("id"))

	var form PointsForm
	if verrs := httpclient.BindAndValidate(c, &form); verrs.HasErrors() {
		validationFailed(c, verrs)
		return
	}

	reason := strings.TrimSpace(form.Reason)
	if reason == "" {
		reason = admin.DefaultPointsReason
	}

	if err := s.api.AddPoints(ctx, models.PointGrant{UserID: id, Points: form.Points, Reason: reason}); err != nil {
		s.fail(c, err, "Failed to add points")
		return
	}

	logger := s.log.WithFields(map[string]interface{}{"user_id": id.String(), "points": form.Points})
	logger.Info(ctx, "Points granted")

	// The grant has landed; a failed notification is reported, not undone.
	notified := true
	body := fmt.Sprintf("You received %d points for: %s", form.Points, reason)
	if err := s.api.SendNotification(ctx, id, NotificationTitle, body); err != nil {
		if isUnauthorized(err) {
			s.fail(c, err, "")
			return
		}
		logger.WarnErr(ctx, "Points notification failed", err)
		notified = false
	}

	current := 1
	s.mu.Lock()
	if s.users != nil {
		current = s.users.Page
	}
	s.mu.Unlock()

	page, err := s.api.GetAllUsers(ctx, current, s.config.UserPageSize)
	if err != nil {
		s.fail(c, err, "Points added but the users list could not be refreshed")
		return
	}

	s.mu.Lock()
	s.users = page
	s.mu.Unlock()

	httpclient.RespondWithMessage(c, "Points added", gin.H{
		"users":    page,
		"notified": notified,
	})
}

func (s *Server) notifyUser(c *gin.Context) {
	var form NotificationForm
	if verrs := httpclient.BindAndValidate(c, &form); verrs.HasErrors() {
		validationFailed(c, verrs)
		return
	}

	if err := s.api.SendNotification(c.Request.Context(), models.ID(c.Param("id")), form.Title, form.Body); err != nil {
		s.fail(c, err, "Failed to send notification")
		return
	}
	httpclient.RespondWithMessage(c, "Notification sent", nil)
}

// exportUsers downloads one users page as a spreadsheet
func (s *Server) exportUsers(c *gin.Context) {
	ctx := c.Request.Context()
	pageNumber := httpclient.GetPageFromQuery(c)

	page, err := s.api.GetAllUsers(ctx, pageNumber, s.config.UserPageSize)
	if err != nil {
		s.fail(c, err, "Failed to load users")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteUsers(&buf, page.Items); err != nil {
		s.log.Error(ctx, "Failed to build users workbook", err)
		httpclient.RespondWithInternalError(c, "Failed to export users")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="users-page-%d.xlsx"`, page.Page))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
