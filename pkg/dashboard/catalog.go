package dashboard

import (
	"strings"

	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// Categories and badges come back unpaged; search and paging happen here.

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.api.GetAllCategories(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to load categories")
		return
	}

	query := c.Query("q")
	matches := pagination.Filter(categories, func(cat models.Category) bool {
		return pagination.MatchesQuery(query, cat.Name, cat.Description)
	})
	httpclient.RespondWithSuccess(c, pagination.Paginate(matches, httpclient.GetPageFromQuery(c), s.config.ListPageSize))
}

func (s *Server) getCategory(c *gin.Context) {
	category, err := s.api.GetCategoryByID(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		s.fail(c, err, "Failed to load category")
		return
	}
	httpclient.RespondWithSuccess(c, category)
}

func (s *Server) createCategory(c *gin.Context) {
	var input models.CategoryInput
	if verrs := httpclient.BindAndValidate(c, &input); verrs.HasErrors() {
		validationFailed(c, verrs)
		return
	}

	category, err := s.api.CreateCategory(c.Request.Context(), input)
	if err != nil {
		s.fail(c, err, "Failed to create category")
		return
	}
	httpclient.RespondWithCreated(c, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	var input models.CategoryInput
	if verrs := httpclient.BindAndValidate(c, &input); verrs.HasErrors() {
		validationFailed(c, verrs)
		return
	}

	category, err := s.api.UpdateCategory(c.Request.Context(), models.ID(c.Param("id")), input)
	if err != nil {
		s.fail(c, err, "Failed to update category")
		return
	}
	httpclient.RespondWithMessage(c, "Category updated", category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	if err := s.api.DeleteCategory(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		s.fail(c, err, "Failed to delete category")
		return
	}
	httpclient.RespondWithMessage(c, "Category deleted", nil)
}

// listBadges also takes an optional rarity filter
func (s *Server) listBadges(c *gin.Context) {
	badges, err := s.api.GetAllBadges(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to load badges")
		return
	}

	query := c.Query("q")
	rarity := models.Rarity(strings.ToUpper(strings.TrimSpace(c.Query("rarity"))))
	matches := pagination.Filter(badges, func(b models.Badge) bool {
		if rarity != "" && b.Rarity != rarity {
			return false
		}
		return pagination.MatchesQuery(query, b.Name, b.Description, string(b.Rarity))
	})
	httpclient.RespondWithSuccess(c, pagination.Paginate(matches, httpclient.GetPageFromQuery(c), s.config.ListPageSize))
}

func (s *Server) getBadge(c *gin.Context) {
	badge, err := s.api.GetBadgeByID(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		s.fail(c, err, "Failed to load badge")
		return
	}
	httpclient.RespondWithSuccess(c, badge)
}

func (s *Server) createBadge(c *gin.Context) {
	var input models.BadgeInput
	if verrs := httpclient.BindAndValidate(c, &input); verrs.HasErrors() {
		validationFailed(c, verrs)
		return
	}

	badge, err := s.api.CreateBadge(c.Request.Context(), input)
	if err != nil {
		s.fail(c, err, "Failed to create badge")
		return
	}
	httpclient.RespondWithCreated(c, badge)
}

func (s *Server) updateBadge(c *gin.Context) {
	var input models.BadgeInput
	if verrs := httpclient.BindAndValidate(c, &input); verrs.HasErrors() {
		validationFailed(c, verrs)
		return
	}

	badge, err := s.api.UpdateBadge(c.Request.Context(), models.ID(c.Param("id")), input)
	if err != nil {
		s.fail(c, err, "Failed to update badge")
		return
	}
	httpclient.RespondWithMessage(c, "Badge updated", badge)
}

func (s *Server) deleteBadge(c *gin.Context) {
	if err := s.api.DeleteBadge(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		s.fail(c, err, "Failed to delete badge")
		return
	}
	httpclient.RespondWithMessage(c, "Badge deleted", nil)
}
