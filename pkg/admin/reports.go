package admin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
)

// Reports are optional on the backend. These statuses mean the endpoint is
// not there, as opposed to the call failing.
func endpointAbsent(err error) bool {
	if errors.Is(err, errors.ErrCodeNetwork) || errors.Is(err, errors.ErrCodeUnsupported) {
		return true
	}
	switch errors.StatusCode(err) {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return true
	}
	return false
}

// ListReports fetches reports and says whether the backend supports them at
// all. Only failures other than an absent endpoint are returned as errors.
func (a *API) ListReports(ctx context.Context) (Capability[[]models.Report], error) {
	body, err := a.get(ctx, a.endpoints.api("/admin/reports"), nil)
	if err != nil {
		if endpointAbsent(err) {
			a.reportSupport.Store(capabilityUnsupported)
			return Unsupported[[]models.Report](), nil
		}
		return Unsupported[[]models.Report](), err
	}

	reports, err := normalizeList[models.Report](body)
	if err != nil {
		return Unsupported[[]models.Report](), err
	}
	a.reportSupport.Store(capabilitySupported)
	return Supported(reports), nil
}

// GetAllReports degrades a failed listing to an empty list so the reports page
// shows "no reports". A rejected session and an undecodable success are still
// returned as errors.
func (a *API) GetAllReports(ctx context.Context) ([]models.Report, error) {
	result, err := a.ListReports(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrCodeUnauthorized) || errors.Is(err, errors.ErrCodeDecode) {
			return nil, err
		}
		a.logger.WithField("endpoint", "reports").WarnErr(ctx, "Reports unavailable, showing none", err)
		return []models.Report{}, nil
	}
	return result.ValueOr([]models.Report{}), nil
}

// ReportActions reports whether approve/reject can be used. The first call
// checks the listing endpoint; the answer is cached afterwards.
func (a *API) ReportActions(ctx context.Context) (bool, error) {
	switch a.reportSupport.Load() {
	case capabilitySupported:
		return true, nil
	case capabilityUnsupported:
		return false, nil
	}

	result, err := a.ListReports(ctx)
	if err != nil {
		return false, err
	}
	return result.Supported, nil
}

// ApproveReport marks a report as handled in the reporter's favour
func (a *API) ApproveReport(ctx context.Context, id models.ID) error {
	return a.reportAction(ctx, id, "approve")
}

// RejectReport dismisses a report
func (a *API) RejectReport(ctx context.Context, id models.ID) error {
	return a.reportAction(ctx, id, "reject")
}

func (a *API) reportAction(ctx context.Context, id models.ID, action string) error {
	if err := requireID(id.String(), "report"); err != nil {
		return err
	}

	supported, err := a.ReportActions(ctx)
	if err != nil {
		return err
	}
	if !supported {
		return errors.New(errors.ErrCodeUnsupported, "Reports are not available on this server")
	}

	_, err = a.put(ctx, a.endpoints.api("/admin/reports/"+url.PathEscape(id.String())+"/"+action), nil)
	if err != nil && endpointAbsent(err) && !errors.Is(err, errors.ErrCodeNetwork) &&
		errors.StatusCode(err) != http.StatusNotFound {
		// 405/501: the listing exists but moderation does not.
		a.reportSupport.Store(capabilityUnsupported)
		return errors.Wrap(err, errors.ErrCodeUnsupported, "Reports are not available on this server")
	}
	return err
}
