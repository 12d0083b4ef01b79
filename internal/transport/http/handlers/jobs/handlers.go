package jobshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpidash/internal/domain/auth"
	"kpidash/internal/platform/jobs"
	"kpidash/internal/transport/http/api"
	"kpidash/internal/transport/http/middleware"
)

// Handler lets admins trigger registered background jobs and read the
// outcome of their last run.
type Handler struct {
	Jobs     *jobs.Service
	Perms    middleware.PermissionStore
	Registry map[string]jobs.Func
}

func NewHandler(jobsSvc *jobs.Service, perms middleware.PermissionStore, registry map[string]jobs.Func) *Handler {
	return &Handler{Jobs: jobsSvc, Perms: perms, Registry: registry}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermJobsRun, h.Perms))
		r.Get("/{jobType}", h.handleLastRun)
		r.Post("/{jobType}/run", h.handleRun)
	})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	jobType := chi.URLParam(r, "jobType")
	run, ok := h.Registry[jobType]
	if !ok {
		api.Fail(w, http.StatusNotFound, "unknown_job", "unknown job type", requestID)
		return
	}

	details, err := h.Jobs.RunNow(r.Context(), jobType, run)
	if err != nil {
		slog.Error("job run failed", "jobType", jobType, "err", err, "requestId", requestID)
		api.FailWithDetails(w, http.StatusInternalServerError, "job_failed", "job finished with errors", map[string]any{"result": details}, requestID)
		return
	}
	api.Success(w, map[string]any{"jobType": jobType, "result": details}, requestID)
}

func (h *Handler) handleLastRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	jobType := chi.URLParam(r, "jobType")
	if _, ok := h.Registry[jobType]; !ok {
		api.Fail(w, http.StatusNotFound, "unknown_job", "unknown job type", requestID)
		return
	}
	last, ok := h.Jobs.Last(jobType)
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_run", "job has not run yet", requestID)
		return
	}
	api.Success(w, last, requestID)
}
