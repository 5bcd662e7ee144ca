package surveyshandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrapp/internal/domain/audit"
	"hrapp/internal/domain/auth"
	"hrapp/internal/domain/survey"
	"hrapp/internal/transport/http/api"
	"hrapp/internal/transport/http/middleware"
	"hrapp/internal/transport/http/shared"
)

type Handler struct {
	Service     *survey.Service
	Perms       middleware.PermissionStore
	Audit       *audit.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *survey.Service, perms middleware.PermissionStore, auditSvc *audit.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/surveys", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSurveysRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermSurveysWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermSurveysRead, h.Perms)).Get("/{surveyID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermSurveysWrite, h.Perms)).Put("/{surveyID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermSurveysWrite, h.Perms)).Delete("/{surveyID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermSurveysPublish, h.Perms)).Post("/{surveyID}/transition", h.handleTransition)
		r.With(middleware.RequirePermission(auth.PermSurveysRead, h.Perms)).Get("/{surveyID}/questions", h.handleListQuestions)
		r.With(middleware.RequirePermission(auth.PermSurveysWrite, h.Perms)).Post("/{surveyID}/questions", h.handleAddQuestion)
		r.With(middleware.RequirePermission(auth.PermSurveysWrite, h.Perms)).Delete("/{surveyID}/questions/{questionID}", h.handleRemoveQuestion)
		r.With(middleware.RequirePermission(auth.PermSurveysRead, h.Perms)).Get("/{surveyID}/responses", h.handleListResponses)
		r.With(middleware.RequirePermission(auth.PermSurveysRespond, h.Perms)).Post("/{surveyID}/responses", h.handleStartResponse)
		r.With(middleware.RequirePermission(auth.PermSurveysRespond, h.Perms)).Put("/{surveyID}/responses/{responseID}/progress", h.handleProgress)
		r.With(middleware.RequirePermission(auth.PermSurveysRespond, h.Perms)).Post("/{surveyID}/responses/{responseID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermSurveysRespond, h.Perms)).Post("/{surveyID}/responses/{responseID}/cancel", h.handleCancelResponse)
		r.With(middleware.RequirePermission(auth.PermSurveysRead, h.Perms)).Get("/{surveyID}/statistics", h.handleStatistics)
	})
}

type surveyRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Kind         string `json:"kind"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Anonymous    bool   `json:"anonymous"`
	Repeatable   bool   `json:"repeatable"`
	MaxResponses *int   `json:"maxResponses"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

type questionRequest struct {
	Text        string   `json:"text"`
	Type        string   `json:"type"`
	DimensionID string   `json:"dimensionId"`
	Options     []string `json:"options"`
	Required    bool     `json:"required"`
}

type progressRequest struct {
	CompletionPercentage float64 `json:"completionPercentage"`
}

type submitRequest struct {
	TotalScore    *float64 `json:"totalScore"`
	WeightedScore *float64 `json:"weightedScore"`
}

func (h *Handler) decodeSurvey(w http.ResponseWriter, r *http.Request) (survey.CreateParams, bool) {
	var payload surveyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return survey.CreateParams{}, false
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	if payload.Kind != "" && !survey.Kind(payload.Kind).Valid() {
		v.Add("kind", "unknown survey kind")
	}
	if payload.MaxResponses != nil && *payload.MaxResponses <= 0 {
		v.Add("maxResponses", "must be positive when set")
	}

	params := survey.CreateParams{
		Title:        payload.Title,
		Description:  payload.Description,
		Kind:         survey.Kind(payload.Kind),
		Anonymous:    payload.Anonymous,
		Repeatable:   payload.Repeatable,
		MaxResponses: payload.MaxResponses,
	}
	if params.Kind == "" {
		params.Kind = survey.KindCustom
	}
	if payload.StartDate != "" {
		if parsed, ok := v.Date("startDate", payload.StartDate); ok {
			params.StartDate = &parsed
		}
	}
	if payload.EndDate != "" {
		if parsed, ok := v.Date("endDate", payload.EndDate); ok {
			params.EndDate = &parsed
		}
	}
	if params.StartDate != nil && params.EndDate != nil {
		v.DateOrder("startDate", *params.StartDate, "endDate", *params.EndDate)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return survey.CreateParams{}, false
	}
	return params, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	status := survey.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown survey status", middleware.GetRequestID(r.Context()))
		return
	}

	surveys, err := h.Service.List(r.Context(), user.TenantID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "survey_list_failed", "failed to list surveys", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, surveys, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	params, ok := h.decodeSurvey(w, r)
	if !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), user.TenantID, params)
	if err != nil {
		failSurvey(w, r, err, "survey_create_failed", "failed to create survey")
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

	sv, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"))
	if err != nil {
		failSurvey(w, r, err, "survey_get_failed", "failed to load survey")
		return
	}
	api.Success(w, sv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	params, ok := h.decodeSurvey(w, r)
	if !ok {
		return
	}

	updated, err := h.Service.Update(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"), params)
	if err != nil {
		failSurvey(w, r, err, "survey_update_failed", "failed to update survey")
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

	if err := h.Service.Delete(r.Context(), user.TenantID, chi.URLParam(r, "surveyID")); err != nil {
		failSurvey(w, r, err, "survey_delete_failed", "failed to delete survey")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	to := survey.Status(payload.Status)
	if !to.Valid() {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown survey status", middleware.GetRequestID(r.Context()))
		return
	}

	surveyID := chi.URLParam(r, "surveyID")
	sv, err := h.Service.Transition(r.Context(), user.TenantID, surveyID, to)
	if err != nil {
		failSurvey(w, r, err, "transition_failed", "failed to transition survey")
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionSurveyTransition, "survey", surveyID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"status": string(to)}); err != nil {
		slog.Warn("audit surveys.transition failed", "err", err)
	}
	api.Success(w, sv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	questions, err := h.Service.Questions(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"))
	if err != nil {
		failSurvey(w, r, err, "question_list_failed", "failed to list questions")
		return
	}
	api.Success(w, questions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload questionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("text", payload.Text, "question text is required")
	if !survey.QuestionType(payload.Type).Valid() {
		v.Add("type", "unknown question type")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	question, err := h.Service.AddQuestion(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"), survey.QuestionParams{
		Text:        payload.Text,
		Type:        survey.QuestionType(payload.Type),
		DimensionID: payload.DimensionID,
		Options:     payload.Options,
		Required:    payload.Required,
	})
	if err != nil {
		failSurvey(w, r, err, "question_create_failed", "failed to add question")
		return
	}
	api.Created(w, question, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.RemoveQuestion(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"), chi.URLParam(r, "questionID")); err != nil {
		failSurvey(w, r, err, "question_delete_failed", "failed to remove question")
		return
	}
	api.Success(w, map[string]string{"status": "removed"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListResponses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	responses, err := h.Service.Responses(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"))
	if err != nil {
		failSurvey(w, r, err, "response_list_failed", "failed to list responses")
		return
	}
	api.Success(w, responses, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStartResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	response, err := h.Service.StartResponse(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"), user.UserID)
	if err != nil {
		failSurvey(w, r, err, "response_start_failed", "failed to start response")
		return
	}
	api.Created(w, response, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload progressRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	response, err := h.Service.RecordProgress(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"), chi.URLParam(r, "responseID"), payload.CompletionPercentage)
	if err != nil {
		failSurvey(w, r, err, "response_progress_failed", "failed to record progress")
		return
	}
	api.Success(w, response, middleware.GetRequestID(r.Context()))
}

// handleSubmit finalizes a response. An Idempotency-Key header makes retries
// safe: the stored response body is replayed instead of submitting twice.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload submitRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	surveyID := chi.URLParam(r, "surveyID")
	responseID := chi.URLParam(r, "responseID")
	endpoint := "surveys/responses/submit"

	idemKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(append(raw, []byte(surveyID+responseID)...))
	if idemKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.TenantID, user.UserID, endpoint, idemKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "idempotency_error", "idempotency check failed", middleware.GetRequestID(r.Context()))
			return
		}
		if found {
			var replay survey.Response
			if err := json.Unmarshal(stored, &replay); err == nil {
				api.Success(w, replay, middleware.GetRequestID(r.Context()))
				return
			}
		}
	}

	response, err := h.Service.SubmitResponse(r.Context(), user.TenantID, surveyID, responseID, payload.TotalScore, payload.WeightedScore)
	if err != nil {
		failSurvey(w, r, err, "response_submit_failed", "failed to submit response")
		return
	}

	if idemKey != "" {
		if stored, err := json.Marshal(response); err == nil {
			if err := h.Idempotency.Save(r.Context(), user.TenantID, user.UserID, endpoint, idemKey, requestHash, stored); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}
	api.Success(w, response, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.CancelResponse(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"), chi.URLParam(r, "responseID")); err != nil {
		failSurvey(w, r, err, "response_cancel_failed", "failed to cancel response")
		return
	}
	api.Success(w, map[string]string{"status": "cancelled"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	stats, err := h.Service.Statistics(r.Context(), user.TenantID, chi.URLParam(r, "surveyID"))
	if err != nil {
		failSurvey(w, r, err, "statistics_failed", "failed to load statistics")
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func failSurvey(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	requestID := middleware.GetRequestID(r.Context())
	var transitionErr *survey.TransitionError
	switch {
	case errors.Is(err, survey.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "survey_not_found", "survey not found", requestID)
	case errors.Is(err, survey.ErrResponseNotFound):
		api.Fail(w, http.StatusNotFound, "response_not_found", "survey response not found", requestID)
	case errors.Is(err, survey.ErrDuplicateTitle):
		api.Fail(w, http.StatusConflict, "survey_duplicate", "a survey with this title already exists", requestID)
	case errors.Is(err, survey.ErrSystemSurvey):
		api.Fail(w, http.StatusForbidden, "system_survey", "system surveys cannot be modified", requestID)
	case errors.Is(err, survey.ErrSurveyLocked):
		api.Fail(w, http.StatusConflict, "survey_locked", "questions can only change while a survey is draft or published", requestID)
	case errors.Is(err, survey.ErrSurveyNotCollecting):
		api.Fail(w, http.StatusConflict, "survey_closed", "survey is not currently accepting responses", requestID)
	case errors.Is(err, survey.ErrSurveyFull):
		api.Fail(w, http.StatusConflict, "survey_full", "survey has reached its maximum response count", requestID)
	case errors.Is(err, survey.ErrDuplicateResponse):
		api.Fail(w, http.StatusConflict, "response_duplicate", "a response already exists for this respondent", requestID)
	case errors.Is(err, survey.ErrActiveSurveyDelete):
		api.Fail(w, http.StatusConflict, "survey_active", "active surveys cannot be deleted", requestID)
	case errors.As(err, &transitionErr):
		api.FailWithDetails(w, http.StatusConflict, "illegal_transition", transitionErr.Error(),
			map[string]string{"from": string(transitionErr.From), "to": string(transitionErr.To)}, requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, requestID)
	}
}
