package performancehandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kpidash/internal/domain/auth"
	"kpidash/internal/domain/performance"
	"kpidash/internal/domain/reports"
	"kpidash/internal/domain/scoring"
	"kpidash/internal/transport/http/api"
	"kpidash/internal/transport/http/middleware"
	"kpidash/internal/transport/http/shared"
)

// Scorer is the part of performance.Service the handlers call.
type Scorer interface {
	Dashboard(ctx context.Context, req performance.DashboardRequest) (performance.Dashboard, error)
	SubjectScore(ctx context.Context, sel scoring.Selector, subjectID string) (performance.SubjectReport, error)
	TeamScore(ctx context.Context, sel scoring.Selector, directorID string, transitive bool) (performance.TeamReport, error)
	Organization(ctx context.Context, sel scoring.Selector) (performance.Organization, error)
	Location() *time.Location
}

type Handler struct {
	Service     Scorer
	Reports     *reports.Service
	Perms       middleware.PermissionStore
	ExportLimit int
	Now         func() time.Time
}

func NewHandler(service Scorer, reportSvc *reports.Service, perms middleware.PermissionStore, exportLimit int) *Handler {
	return &Handler{Service: service, Reports: reportSvc, Perms: perms, ExportLimit: exportLimit, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDashboardRead, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermScoresRead, h.Perms)).Get("/subjects/{subjectID}/score", h.handleSubjectScore)
		r.With(middleware.RequirePermission(auth.PermDashboardRead, h.Perms)).Get("/directors/{directorID}/team", h.handleTeamScore)
		r.With(middleware.RequirePermission(auth.PermOrganizationRead, h.Perms)).Get("/organization", h.handleOrganization)
		r.With(
			middleware.RequirePermission(auth.PermScorecardExport, h.Perms),
			middleware.RateLimit(h.ExportLimit, time.Minute, middleware.WithScope("export")),
		).Get("/export", h.handleExport)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.dashboardRequest(w, r)
	if !ok {
		return
	}
	dash, err := h.Service.Dashboard(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "dashboard_failed", "failed to build dashboard")
		return
	}
	api.Success(w, dash, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.dashboardRequest(w, r)
	if !ok {
		return
	}
	dash, err := h.Service.Dashboard(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "export_failed", "failed to build scorecard")
		return
	}
	body, filename, err := h.Reports.Render(dash)
	if err != nil {
		h.fail(w, r, err, "export_failed", "failed to render scorecard")
		return
	}
	api.WritePDF(w, filename, body)
}

func (h *Handler) handleSubjectScore(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	subjectID := chi.URLParam(r, "subjectID")
	if subjectID != user.ProfileID && !h.allowed(r, user, auth.PermDashboardAny) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another profile's score", requestID)
		return
	}

	v := shared.NewValidator()
	sel := h.period(v, r)
	if v.Reject(w, requestID) || !h.checkWindow(w, r, sel) {
		return
	}
	report, err := h.Service.SubjectScore(r.Context(), sel, subjectID)
	if err != nil {
		h.fail(w, r, err, "score_failed", "failed to score subject")
		return
	}
	api.Success(w, report, requestID)
}

func (h *Handler) handleTeamScore(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	directorID := chi.URLParam(r, "directorID")
	if !h.canViewDirector(r, user, directorID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "directors may only view their own team", requestID)
		return
	}

	v := shared.NewValidator()
	sel := h.period(v, r)
	transitive := v.Bool("transitive", r.URL.Query().Get("transitive"))
	if v.Reject(w, requestID) || !h.checkWindow(w, r, sel) {
		return
	}
	report, err := h.Service.TeamScore(r.Context(), sel, directorID, transitive)
	if err != nil {
		h.fail(w, r, err, "team_score_failed", "failed to score team")
		return
	}
	api.Success(w, report, requestID)
}

func (h *Handler) handleOrganization(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	sel := h.period(v, r)
	if v.Reject(w, requestID) || !h.checkWindow(w, r, sel) {
		return
	}
	org, err := h.Service.Organization(r.Context(), sel)
	if err != nil {
		h.fail(w, r, err, "organization_failed", "failed to score organization")
		return
	}

	page := shared.ParsePagination(r, 0, 500)
	start, end := page.Bounds(len(org.Rows))
	org.Rows = org.Rows[start:end]
	api.Success(w, map[string]any{
		"organization": org,
		"page":         page,
	}, requestID)
}

// dashboardRequest parses and authorizes the query shared by the dashboard
// and its export. directorId defaults to the caller's own profile.
func (h *Handler) dashboardRequest(w http.ResponseWriter, r *http.Request) (performance.DashboardRequest, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	directorID := q.Get("directorId")
	if directorID == "" {
		directorID = user.ProfileID
	}
	v.Required("directorId", directorID, "is required when the caller has no profile")
	sel := h.period(v, r)
	transitive := v.Bool("transitive", q.Get("transitive"))
	if v.Reject(w, requestID) {
		return performance.DashboardRequest{}, false
	}
	if !h.canViewDirector(r, user, directorID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "directors may only view their own dashboard", requestID)
		return performance.DashboardRequest{}, false
	}
	if !h.checkWindow(w, r, sel) {
		return performance.DashboardRequest{}, false
	}
	return performance.DashboardRequest{Selector: sel, DirectorID: directorID, Transitive: transitive}, true
}

func (h *Handler) period(v *shared.Validator, r *http.Request) scoring.Selector {
	return shared.ParsePeriod(v, r.URL.Query(), h.now(), h.Service.Location())
}

// checkWindow rejects periods that have not started yet.
func (h *Handler) checkWindow(w http.ResponseWriter, r *http.Request, sel scoring.Selector) bool {
	if scoring.After(sel, h.now(), h.Service.Location()) {
		api.Fail(w, http.StatusBadRequest, "invalid_window", "period "+sel.Label()+" is in the future", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) canViewDirector(r *http.Request, user auth.UserContext, directorID string) bool {
	if directorID != "" && directorID == user.ProfileID {
		return true
	}
	return h.allowed(r, user, auth.PermDashboardAny)
}

func (h *Handler) allowed(r *http.Request, user auth.UserContext, perm string) bool {
	ok, err := h.Perms.HasPermission(r.Context(), user.Role, perm)
	if err != nil {
		slog.Warn("permission lookup failed", "err", err, "permission", perm)
		return false
	}
	return ok
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, performance.ErrDirectorNotFound):
		api.Fail(w, http.StatusNotFound, "director_not_found", "director not found", requestID)
	case errors.Is(err, performance.ErrSubjectNotFound):
		api.Fail(w, http.StatusNotFound, "subject_not_found", "subject not found", requestID)
	case errors.Is(err, performance.ErrNotApproved):
		api.Fail(w, http.StatusNotFound, "not_approved", "profile is not approved", requestID)
	case errors.Is(err, performance.ErrNotDirector):
		api.Fail(w, http.StatusBadRequest, "not_director", "profile is not a director", requestID)
	case errors.Is(err, context.Canceled):
		slog.Info("request canceled", "path", r.URL.Path, "requestId", requestID)
	case errors.Is(err, scoring.ErrInvalidInput):
		slog.Error("stored data failed validation", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "invalid_data", "stored performance data is malformed", requestID)
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
