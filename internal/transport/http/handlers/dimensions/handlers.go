package dimensionshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrapp/internal/domain/auth"
	"hrapp/internal/domain/dimension"
	"hrapp/internal/transport/http/api"
	"hrapp/internal/transport/http/middleware"
	"hrapp/internal/transport/http/shared"
)

type Handler struct {
	Service *dimension.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *dimension.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dimensions", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDimensionsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermDimensionsRead, h.Perms)).Get("/scale-defaults", h.handleScaleDefaults)
		r.With(middleware.RequirePermission(auth.PermDimensionsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermDimensionsRead, h.Perms)).Get("/{dimensionID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermDimensionsWrite, h.Perms)).Put("/{dimensionID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermDimensionsWrite, h.Perms)).Delete("/{dimensionID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermDimensionsWrite, h.Perms)).Post("/{dimensionID}/deactivate", h.handleDeactivate)
		r.With(middleware.RequirePermission(auth.PermDimensionsRead, h.Perms)).Get("/{dimensionID}/usage", h.handleUsage)
	})
}

type dimensionRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	ScaleFamily  string            `json:"scaleFamily"`
	MinValue     *float64          `json:"minValue"`
	MaxValue     *float64          `json:"maxValue"`
	ScaleLabels  map[string]string `json:"scaleLabels"`
	Weight       float64           `json:"weight"`
	DisplayOrder int               `json:"displayOrder"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	category := dimension.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		api.Fail(w, http.StatusBadRequest, "invalid_category", "unknown dimension category", middleware.GetRequestID(r.Context()))
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"

	dimensions, err := h.Service.List(r.Context(), user.TenantID, category, activeOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dimension_list_failed", "failed to list dimensions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dimensions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleScaleDefaults(w http.ResponseWriter, r *http.Request) {
	family := dimension.ScaleFamily(r.URL.Query().Get("family"))
	if family != "" && !family.Valid() {
		api.Fail(w, http.StatusBadRequest, "invalid_scale_family", "unknown scale family", middleware.GetRequestID(r.Context()))
		return
	}
	if family == "" {
		family = dimension.ScaleLikert5
	}
	api.Success(w, dimension.DefaultsFor(family), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload dimensionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.Category != "" && !dimension.Category(payload.Category).Valid() {
		v.Add("category", "unknown dimension category")
	}
	if payload.ScaleFamily != "" && !dimension.ScaleFamily(payload.ScaleFamily).Valid() {
		v.Add("scaleFamily", "unknown scale family")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), user.TenantID, dimension.CreateParams{
		Name:         payload.Name,
		Description:  payload.Description,
		Category:     dimension.Category(payload.Category),
		ScaleFamily:  dimension.ScaleFamily(payload.ScaleFamily),
		MinValue:     payload.MinValue,
		MaxValue:     payload.MaxValue,
		ScaleLabels:  payload.ScaleLabels,
		Weight:       payload.Weight,
		DisplayOrder: payload.DisplayOrder,
	})
	if err != nil {
		failDimension(w, r, err, "dimension_create_failed", "failed to create dimension")
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

	dim, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "dimensionID"))
	if err != nil {
		failDimension(w, r, err, "dimension_get_failed", "failed to load dimension")
		return
	}
	api.Success(w, dim, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload dimensionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Update(r.Context(), user.TenantID, chi.URLParam(r, "dimensionID"), dimension.UpdateParams{
		Name:         payload.Name,
		Description:  payload.Description,
		Category:     dimension.Category(payload.Category),
		Weight:       payload.Weight,
		MinValue:     payload.MinValue,
		MaxValue:     payload.MaxValue,
		DisplayOrder: payload.DisplayOrder,
	})
	if err != nil {
		failDimension(w, r, err, "dimension_update_failed", "failed to update dimension")
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

	if err := h.Service.Delete(r.Context(), user.TenantID, chi.URLParam(r, "dimensionID")); err != nil {
		failDimension(w, r, err, "dimension_delete_failed", "failed to delete dimension")
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

	if err := h.Service.Deactivate(r.Context(), user.TenantID, chi.URLParam(r, "dimensionID")); err != nil {
		failDimension(w, r, err, "dimension_deactivate_failed", "failed to deactivate dimension")
		return
	}
	api.Success(w, map[string]string{"status": "deactivated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	usage, err := h.Service.UsageAnalysis(r.Context(), user.TenantID, chi.URLParam(r, "dimensionID"))
	if err != nil {
		failDimension(w, r, err, "dimension_usage_failed", "failed to load dimension usage")
		return
	}
	api.Success(w, usage, middleware.GetRequestID(r.Context()))
}

func failDimension(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, dimension.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "dimension_not_found", "dimension not found", requestID)
	case errors.Is(err, dimension.ErrDuplicateName):
		api.Fail(w, http.StatusConflict, "dimension_duplicate", "a dimension with this name already exists", requestID)
	case errors.Is(err, dimension.ErrInvalidScaleBounds):
		api.Fail(w, http.StatusBadRequest, "invalid_scale", "scale minimum must be below maximum", requestID)
	case errors.Is(err, dimension.ErrSystemDimension):
		api.Fail(w, http.StatusForbidden, "system_dimension", "system dimensions cannot be modified", requestID)
	case errors.Is(err, dimension.ErrDimensionInUse):
		api.Fail(w, http.StatusConflict, "dimension_in_use", "dimension is bound to one or more profiles", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, requestID)
	}
}
