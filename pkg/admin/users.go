package admin

import (
	"context"
	"net/url"
	"strings"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
)

// DefaultPointsReason is sent when a point grant has no reason
const DefaultPointsReason = "Platform activity"

// GetAllUsers returns one page of users. page is 1-based; size <= 0 uses the
// default page length.
func (a *API) GetAllUsers(ctx context.Context, page, size int) (*models.Page[models.User], error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = models.DefaultUserPageSize
	}

	body, err := a.get(ctx, a.endpoints.api("/users"), a.endpoints.pageQuery(page, size))
	if err != nil {
		return nil, err
	}
	return normalizeUserPage(body, page, size)
}

// DeleteUser deletes a user
func (a *API) DeleteUser(ctx context.Context, userID models.ID) error {
	if err := requireID(userID.String(), "user"); err != nil {
		return err
	}
	return a.delete(ctx, a.endpoints.api("/users/"+url.PathEscape(userID.String())))
}

// AddPoints grants (or, when negative, removes) points. A blank reason is
// replaced with DefaultPointsReason and the source defaults to ADMIN.
func (a *API) AddPoints(ctx context.Context, grant models.PointGrant) error {
	if err := requireID(grant.UserID.String(), "user"); err != nil {
		return err
	}
	if grant.Points == 0 {
		return errors.New(errors.ErrCodeValidation, "Points must not be zero")
	}

	grant.Reason = strings.TrimSpace(grant.Reason)
	if grant.Reason == "" {
		grant.Reason = DefaultPointsReason
	}
	if grant.SourceType == "" {
		grant.SourceType = models.PointSourceAdmin
	}

	_, err := a.post(ctx, a.endpoints.api("/gamification/points/add"), grant)
	return err
}

// SendNotification pushes a system notification to one user. Failures are
// returned, never retried.
func (a *API) SendNotification(ctx context.Context, userID models.ID, title, body string) error {
	if err := requireID(userID.String(), "user"); err != nil {
		return err
	}

	_, err := a.post(ctx, a.endpoints.api("/notifications/send"), models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Type:   models.NotificationTypeSystem,
	})
	return err
}
