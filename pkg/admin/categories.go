package admin

import (
	"context"
	"net/url"

	"github.com/facuhernandez99/shario-admin/pkg/models"
)

// GetAllCategories returns every category; the endpoint is not paged
func (a *API) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	body, err := a.get(ctx, a.endpoints.api("/categories"), nil)
	if err != nil {
		return nil, err
	}
	return normalizeList[models.Category](body)
}

// GetCategoryByID fetches one category
func (a *API) GetCategoryByID(ctx context.Context, id models.ID) (*models.Category, error) {
	if err := requireID(id.String(), "category"); err != nil {
		return nil, err
	}
	body, err := a.get(ctx, a.categoryPath(id), nil)
	if err != nil {
		return nil, err
	}
	category, err := normalizeObject[models.Category](body)
	return orNotFound(category, err, "Category")
}

// CreateCategory creates a category and returns what the backend stored. When
// the backend answers without a body the input is returned as sent.
func (a *API) CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error) {
	body, err := a.post(ctx, a.endpoints.api("/categories"), input)
	if err != nil {
		return nil, err
	}
	return categoryOrEcho(body, "", input)
}

// UpdateCategory replaces a category
func (a *API) UpdateCategory(ctx context.Context, id models.ID, input models.CategoryInput) (*models.Category, error) {
	if err := requireID(id.String(), "category"); err != nil {
		return nil, err
	}
	body, err := a.put(ctx, a.categoryPath(id), input)
	if err != nil {
		return nil, err
	}
	return categoryOrEcho(body, id, input)
}

// DeleteCategory deletes a category
func (a *API) DeleteCategory(ctx context.Context, id models.ID) error {
	if err := requireID(id.String(), "category"); err != nil {
		return err
	}
	return a.delete(ctx, a.categoryPath(id))
}

func (a *API) categoryPath(id models.ID) string {
	return a.endpoints.api("/categories/" + url.PathEscape(id.String()))
}

func categoryOrEcho(body []byte, id models.ID, input models.CategoryInput) (*models.Category, error) {
	category, err := normalizeObject[models.Category](body)
	if err != nil || category != nil {
		return category, err
	}
	return &models.Category{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
	}, nil
}
