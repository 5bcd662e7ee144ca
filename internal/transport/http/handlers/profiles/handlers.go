package profileshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrapp/internal/domain/audit"
	"hrapp/internal/domain/auth"
	"hrapp/internal/domain/dimension"
	"hrapp/internal/domain/profile"
	"hrapp/internal/platform/metrics"
	"hrapp/internal/transport/http/api"
	"hrapp/internal/transport/http/middleware"
	"hrapp/internal/transport/http/shared"
)

type Handler struct {
	Service    *profile.Service
	Perms      middleware.PermissionStore
	Audit      *audit.Service
	Metrics    *metrics.Collector
	ReportsDir string
}

func NewHandler(service *profile.Service, perms middleware.PermissionStore, auditSvc *audit.Service, collector *metrics.Collector, reportsDir string) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Metrics: collector, ReportsDir: reportsDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProfilesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermProfilesRead, h.Perms)).Get("/{profileID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Put("/{profileID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Delete("/{profileID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Post("/{profileID}/deactivate", h.handleDeactivate)
		r.With(middleware.RequirePermission(auth.PermProfilesRead, h.Perms)).Get("/{profileID}/dimensions", h.handleBindings)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Post("/{profileID}/dimensions/{dimensionID}", h.handleBind)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Put("/{profileID}/dimensions/{dimensionID}", h.handleUpdateBinding)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Delete("/{profileID}/dimensions/{dimensionID}", h.handleUnbind)
		r.With(middleware.RequirePermission(auth.PermProfilesEvaluate, h.Perms)).Post("/{profileID}/evaluate", h.handleEvaluate)
		r.With(middleware.RequirePermission(auth.PermProfilesEvaluate, h.Perms)).Post("/{profileID}/report", h.handleReport)
	})
}

type profileRequest struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	ScopeType          string  `json:"scopeType"`
	PositionID         string  `json:"positionId"`
	DepartmentID       string  `json:"departmentId"`
	MinSuccessScore    float64 `json:"minSuccessScore"`
	TargetSuccessScore float64 `json:"targetSuccessScore"`
}

type bindingRequest struct {
	Weight      float64  `json:"weight"`
	MinScore    *float64 `json:"minScore"`
	TargetScore *float64 `json:"targetScore"`
	Critical    bool     `json:"critical"`
	Notes       string   `json:"notes"`
}

type evaluateRequest struct {
	Subject      string             `json:"subject"`
	Observations map[string]float64 `json:"observations"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	profiles, err := h.Service.List(r.Context(), user.TenantID, r.URL.Query().Get("active") == "true")
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_list_failed", "failed to list profiles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profiles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload profileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.ScopeType != "" && !profile.ScopeType(payload.ScopeType).Valid() {
		v.Add("scopeType", "unknown scope type")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), user.TenantID, profile.CreateParams{
		Name:               payload.Name,
		Description:        payload.Description,
		ScopeType:          profile.ScopeType(payload.ScopeType),
		PositionID:         payload.PositionID,
		DepartmentID:       payload.DepartmentID,
		MinSuccessScore:    payload.MinSuccessScore,
		TargetSuccessScore: payload.TargetSuccessScore,
	})
	if err != nil {
		failProfile(w, r, err, "profile_create_failed", "failed to create profile")
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	p, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "profileID"))
	if err != nil {
		failProfile(w, r, err, "profile_get_failed", "failed to load profile")
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload profileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Update(r.Context(), user.TenantID, chi.URLParam(r, "profileID"), profile.CreateParams{
		Name:               payload.Name,
		Description:        payload.Description,
		ScopeType:          profile.ScopeType(payload.ScopeType),
		PositionID:         payload.PositionID,
		DepartmentID:       payload.DepartmentID,
		MinSuccessScore:    payload.MinSuccessScore,
		TargetSuccessScore: payload.TargetSuccessScore,
	})
	if err != nil {
		failProfile(w, r, err, "profile_update_failed", "failed to update profile")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Delete(r.Context(), user.TenantID, chi.URLParam(r, "profileID")); err != nil {
		failProfile(w, r, err, "profile_delete_failed", "failed to delete profile")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Deactivate(r.Context(), user.TenantID, chi.URLParam(r, "profileID")); err != nil {
		failProfile(w, r, err, "profile_deactivate_failed", "failed to deactivate profile")
		return
	}
	api.Success(w, map[string]string{"status": "deactivated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBindings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	bindings, err := h.Service.Bindings(r.Context(), user.TenantID, chi.URLParam(r, "profileID"), r.URL.Query().Get("active") == "true")
	if err != nil {
		failProfile(w, r, err, "binding_list_failed", "failed to list profile dimensions")
		return
	}
	api.Success(w, bindings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBind(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	binding, err := h.Service.BindDimension(r.Context(), user.TenantID, chi.URLParam(r, "profileID"), chi.URLParam(r, "dimensionID"), profile.BindParams{
		Weight:      payload.Weight,
		MinScore:    payload.MinScore,
		TargetScore: payload.TargetScore,
		Critical:    payload.Critical,
		Notes:       payload.Notes,
	})
	if err != nil {
		failProfile(w, r, err, "binding_create_failed", "failed to bind dimension")
		return
	}
	api.Created(w, binding, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateBinding(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	binding, err := h.Service.UpdateBinding(r.Context(), user.TenantID, chi.URLParam(r, "profileID"), chi.URLParam(r, "dimensionID"), profile.BindParams{
		Weight:      payload.Weight,
		MinScore:    payload.MinScore,
		TargetScore: payload.TargetScore,
		Critical:    payload.Critical,
		Notes:       payload.Notes,
	})
	if err != nil {
		failProfile(w, r, err, "binding_update_failed", "failed to update binding")
		return
	}
	api.Success(w, binding, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnbind(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.UnbindDimension(r.Context(), user.TenantID, chi.URLParam(r, "profileID"), chi.URLParam(r, "dimensionID")); err != nil {
		failProfile(w, r, err, "binding_delete_failed", "failed to unbind dimension")
		return
	}
	api.Success(w, map[string]string{"status": "unbound"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	profileID := chi.URLParam(r, "profileID")
	eval, err := h.Service.EvaluateProfile(r.Context(), user.TenantID, profileID, payload.Observations)
	if err != nil {
		failProfile(w, r, err, "evaluation_failed", "failed to evaluate profile")
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordEvaluation()
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionProfileEvaluate, "profile", profileID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, eval); err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to record evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	profileID := chi.URLParam(r, "profileID")
	p, err := h.Service.Get(r.Context(), user.TenantID, profileID)
	if err != nil {
		failProfile(w, r, err, "profile_get_failed", "failed to load profile")
		return
	}
	eval, err := h.Service.EvaluateProfile(r.Context(), user.TenantID, profileID, payload.Observations)
	if err != nil {
		failProfile(w, r, err, "evaluation_failed", "failed to evaluate profile")
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordEvaluation()
	}

	path, err := profile.WriteEvaluationPDF(h.ReportsDir, p, payload.Subject, eval)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render evaluation report", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionProfileReport, "profile", profileID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"report": path}); err != nil {
		slog.Warn("audit report failed", "err", err)
	}
	api.Created(w, map[string]any{"report": path, "evaluation": eval}, middleware.GetRequestID(r.Context()))
}

func failProfile(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	requestID := middleware.GetRequestID(r.Context())
	var thresholdErr *profile.ThresholdError
	switch {
	case errors.Is(err, profile.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "profile_not_found", "profile not found", requestID)
	case errors.Is(err, profile.ErrBindingNotFound):
		api.Fail(w, http.StatusNotFound, "binding_not_found", "dimension is not bound to this profile", requestID)
	case errors.Is(err, profile.ErrDuplicateName):
		api.Fail(w, http.StatusConflict, "profile_duplicate", "a profile with this name already exists", requestID)
	case errors.Is(err, profile.ErrDuplicateBinding):
		api.Fail(w, http.StatusConflict, "binding_duplicate", "dimension is already bound to this profile", requestID)
	case errors.Is(err, profile.ErrSystemProfile):
		api.Fail(w, http.StatusForbidden, "system_profile", "system profiles cannot be modified", requestID)
	case errors.Is(err, profile.ErrProfileInactive):
		api.Fail(w, http.StatusConflict, "profile_inactive", "inactive profiles cannot be evaluated", requestID)
	case errors.Is(err, dimension.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "dimension_not_found", "dimension not found", requestID)
	case errors.As(err, &thresholdErr):
		api.FailWithDetails(w, http.StatusBadRequest, "invalid_thresholds", thresholdErr.Error(),
			map[string]string{"field": thresholdErr.Field}, requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, requestID)
	}
}
