package admin

import (
	"context"
	"net/url"

	"github.com/facuhernandez99/shario-admin/pkg/models"
)

const badgesPath = "/admin/gamification/badges"

// GetAllBadges returns every badge; the endpoint is not paged
func (a *API) GetAllBadges(ctx context.Context) ([]models.Badge, error) {
	body, err := a.get(ctx, a.endpoints.api(badgesPath), nil)
	if err != nil {
		return nil, err
	}
	return normalizeList[models.Badge](body)
}

// GetBadgeByID fetches one badge
func (a *API) GetBadgeByID(ctx context.Context, id models.ID) (*models.Badge, error) {
	if err := requireID(id.String(), "badge"); err != nil {
		return nil, err
	}
	body, err := a.get(ctx, a.badgePath(id), nil)
	if err != nil {
		return nil, err
	}
	badge, err := normalizeObject[models.Badge](body)
	return orNotFound(badge, err, "Badge")
}

// CreateBadge creates a badge
func (a *API) CreateBadge(ctx context.Context, input models.BadgeInput) (*models.Badge, error) {
	body, err := a.post(ctx, a.endpoints.api(badgesPath), input)
	if err != nil {
		return nil, err
	}
	return badgeOrEcho(body, "", input)
}

// UpdateBadge replaces a badge
func (a *API) UpdateBadge(ctx context.Context, id models.ID, input models.BadgeInput) (*models.Badge, error) {
	if err := requireID(id.String(), "badge"); err != nil {
		return nil, err
	}
	body, err := a.put(ctx, a.badgePath(id), input)
	if err != nil {
		return nil, err
	}
	return badgeOrEcho(body, id, input)
}

// DeleteBadge deletes a badge
func (a *API) DeleteBadge(ctx context.Context, id models.ID) error {
	if err := requireID(id.String(), "badge"); err != nil {
		return err
	}
	return a.delete(ctx, a.badgePath(id))
}

func (a *API) badgePath(id models.ID) string {
	return a.endpoints.api(badgesPath + "/" + url.PathEscape(id.String()))
}

func badgeOrEcho(body []byte, id models.ID, input models.BadgeInput) (*models.Badge, error) {
	badge, err := normalizeObject[models.Badge](body)
	if err != nil || badge != nil {
		return badge, err
	}
	return &models.Badge{
		ID:             id,
		Name:           input.Name,
		Description:    input.Description,
		Rarity:         input.Rarity,
		PointsRequired: input.PointsRequired,
		Icon:           input.Icon,
	}, nil
}
