package dashboard

import (
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/gin-gonic/gin"
)

// listReports renders the moderation queue. A backend without the reports
// endpoints gets an empty, unsupported listing; any other failure except an
// expired session degrades to an empty list.
func (s *Server) listReports(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := s.api.ListReports(ctx)
	if err != nil {
		if isUnauthorized(err) {
			s.fail(c, err, "")
			return
		}
		s.log.WarnErr(ctx, "Failed to load reports", err)
		httpclient.RespondWithMessage(c, "Reports could not be loaded", gin.H{
			"supported": true,
			"reports":   []models.Report{},
			"pending":   0,
		})
		return
	}

	reports := result.ValueOr([]models.Report{})
	httpclient.RespondWithSuccess(c, gin.H{
		"supported": result.Supported,
		"reports":   reports,
		"pending":   countPending(reports),
	})
}

func countPending(reports []models.Report) int {
	pending := 0
	for _, r := range reports {
		if r.Status == models.ReportPending {
			pending++
		}
	}
	return pending
}

func (s *Server) approveReport(c *gin.Context) {
	if err := s.api.ApproveReport(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		s.fail(c, err, "Failed to approve report")
		return
	}
	httpclient.RespondWithMessage(c, "Report approved", nil)
}

func (s *Server) rejectReport(c *gin.Context) {
	if err := s.api.RejectReport(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		s.fail(c, err, "Failed to reject report")
		return
	}
	httpclient.RespondWithMessage(c, "Report rejected", nil)
}
