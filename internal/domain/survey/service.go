package survey

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateParams struct {
	Title        string
	Description  string
	Kind         Kind
	StartDate    *time.Time
	EndDate      *time.Time
	Anonymous    bool
	Repeatable   bool
	MaxResponses *int
}

func (s *Service) Create(ctx context.Context, tenantID string, params CreateParams) (Survey, error) {
	title := strings.TrimSpace(params.Title)
	taken, err := s.titleTaken(ctx, tenantID, title, "")
	if err != nil {
		return Survey{}, err
	}
	if taken {
		return Survey{}, ErrDuplicateTitle
	}

	var id string
	if err := s.store.DB.QueryRow(ctx, `
    INSERT INTO surveys (tenant_id, title, description, kind, status, start_date, end_date, anonymous, repeatable, max_responses, active, is_system)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,true,false)
    RETURNING id
  `, tenantID, title, params.Description, string(params.Kind), string(StatusDraft),
		params.StartDate, params.EndDate, params.Anonymous, params.Repeatable,
		params.MaxResponses).Scan(&id); err != nil {
		return Survey{}, err
	}
	return s.Get(ctx, tenantID, id)
}

func (s *Service) Update(ctx context.Context, tenantID, id string, params CreateParams) (Survey, error) {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return Survey{}, err
	}
	if current.System {
		return Survey{}, ErrSystemSurvey
	}

	title := strings.TrimSpace(params.Title)
	if title != current.Title {
		taken, err := s.titleTaken(ctx, tenantID, title, id)
		if err != nil {
			return Survey{}, err
		}
		if taken {
			return Survey{}, ErrDuplicateTitle
		}
	}

	if _, err := s.store.DB.Exec(ctx, `
    UPDATE surveys
    SET title = $1, description = $2, kind = $3, start_date = $4, end_date = $5,
        anonymous = $6, repeatable = $7, max_responses = $8
    WHERE tenant_id = $9 AND id = $10
  `, title, params.Description, string(params.Kind), params.StartDate, params.EndDate,
		params.Anonymous, params.Repeatable, params.MaxResponses, tenantID, id); err != nil {
		return Survey{}, err
	}
	return s.Get(ctx, tenantID, id)
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (Survey, error) {
	row := s.store.DB.QueryRow(ctx, surveySelect+` WHERE s.tenant_id = $1 AND s.id = $2`, tenantID, id)
	sv, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Survey{}, ErrNotFound
		}
		return Survey{}, err
	}
	return sv, nil
}

func (s *Service) List(ctx context.Context, tenantID string, status Status) ([]Survey, error) {
	query := surveySelect + ` WHERE s.tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		query += ` AND s.status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := s.store.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surveys := []Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, sv)
	}
	return surveys, rows.Err()
}

// Transition moves a survey along the lifecycle table. The UPDATE carries the
// expected current status in its WHERE clause, so of two concurrent callers
// only one can win; the loser's write matches zero rows and is retried against
// the fresh state, where the table check then rejects it.
func (s *Service) Transition(ctx context.Context, tenantID, id string, to Status) (Survey, error) {
	var current Survey
	for attempt := 0; attempt < 3; attempt++ {
		var err error
		current, err = s.Get(ctx, tenantID, id)
		if err != nil {
			return Survey{}, err
		}

		next, err := ApplyTransition(current, to, time.Now().UTC())
		if err != nil {
			return Survey{}, err
		}

		tag, err := s.store.DB.Exec(ctx, `
      UPDATE surveys
      SET status = $1, start_date = $2, end_date = $3, active = $4
      WHERE tenant_id = $5 AND id = $6 AND status = $7
    `, string(next.Status), next.StartDate, next.EndDate, next.Active,
			tenantID, id, string(current.Status))
		if err != nil {
			return Survey{}, err
		}
		if tag.RowsAffected() == 1 {
			return next, nil
		}
	}
	return Survey{}, &TransitionError{From: current.Status, To: to}
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current.System {
		return ErrSystemSurvey
	}
	if current.Status == StatusActive {
		return ErrActiveSurveyDelete
	}

	if _, err := s.store.DB.Exec(ctx,
		`DELETE FROM survey_responses WHERE survey_id = $1`, id); err != nil {
		return err
	}
	if _, err := s.store.DB.Exec(ctx,
		`DELETE FROM survey_questions WHERE survey_id = $1`, id); err != nil {
		return err
	}
	_, err = s.store.DB.Exec(ctx,
		`DELETE FROM surveys WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

type QuestionParams struct {
	Text        string
	Type        QuestionType
	DimensionID string
	Options     []string
	Required    bool
}

func (s *Service) AddQuestion(ctx context.Context, tenantID, surveyID string, params QuestionParams) (Question, error) {
	sv, err := s.Get(ctx, tenantID, surveyID)
	if err != nil {
		return Question{}, err
	}
	if !CanAddQuestion(sv) {
		return Question{}, ErrSurveyLocked
	}

	options := params.Options
	if len(options) == 0 {
		options = params.Type.DefaultOptions()
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return Question{}, err
	}

	var order int
	if err := s.store.DB.QueryRow(ctx,
		`SELECT COALESCE(MAX(display_order), 0) + 1 FROM survey_questions WHERE survey_id = $1`,
		surveyID).Scan(&order); err != nil {
		return Question{}, err
	}

	var id string
	if err := s.store.DB.QueryRow(ctx, `
    INSERT INTO survey_questions (survey_id, question_text, question_type, dimension_id, options, required, active, display_order)
    VALUES ($1,$2,$3,$4,$5,$6,true,$7)
    RETURNING id
  `, surveyID, strings.TrimSpace(params.Text), string(params.Type),
		nullIfEmpty(params.DimensionID), optionsJSON, params.Required, order).Scan(&id); err != nil {
		return Question{}, err
	}

	return Question{
		ID:           id,
		SurveyID:     surveyID,
		Text:         strings.TrimSpace(params.Text),
		Type:         params.Type,
		DimensionID:  params.DimensionID,
		Options:      options,
		Required:     params.Required,
		Active:       true,
		DisplayOrder: order,
	}, nil
}

func (s *Service) RemoveQuestion(ctx context.Context, tenantID, surveyID, questionID string) error {
	sv, err := s.Get(ctx, tenantID, surveyID)
	if err != nil {
		return err
	}
	if !CanAddQuestion(sv) {
		return ErrSurveyLocked
	}

	tag, err := s.store.DB.Exec(ctx,
		`DELETE FROM survey_questions WHERE survey_id = $1 AND id = $2`, surveyID, questionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Questions(ctx context.Context, tenantID, surveyID string) ([]Question, error) {
	if _, err := s.Get(ctx, tenantID, surveyID); err != nil {
		return nil, err
	}

	rows, err := s.store.DB.Query(ctx, `
    SELECT id, survey_id, question_text, question_type, COALESCE(dimension_id::text, ''),
           COALESCE(options, '[]'), required, active, display_order
    FROM survey_questions
    WHERE survey_id = $1
    ORDER BY display_order
  `, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		var q Question
		var optionsJSON []byte
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type, &q.DimensionID,
			&optionsJSON, &q.Required, &q.Active, &q.DisplayOrder); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// StartResponse admits a respondent into an open survey. For anonymous
// surveys the caller's identity is replaced with a random key, so repeat
// checks only apply to attributed responses.
func (s *Service) StartResponse(ctx context.Context, tenantID, surveyID, respondentID string) (Response, error) {
	sv, err := s.Get(ctx, tenantID, surveyID)
	if err != nil {
		return Response{}, err
	}
	now := time.Now().UTC()
	if err := CheckAdmission(sv, now); err != nil {
		return Response{}, err
	}

	anonymous := sv.Anonymous
	if anonymous {
		respondentID = uuid.NewString()
	} else if !sv.Repeatable {
		var count int
		if err := s.store.DB.QueryRow(ctx, `
      SELECT COUNT(*) FROM survey_responses
      WHERE survey_id = $1 AND respondent_id = $2 AND status NOT IN ($3, $4)
    `, surveyID, respondentID, string(ResponseCancelled), string(ResponseExpired)).Scan(&count); err != nil {
			return Response{}, err
		}
		if count > 0 {
			return Response{}, ErrDuplicateResponse
		}
	}

	var id string
	if err := s.store.DB.QueryRow(ctx, `
    INSERT INTO survey_responses (survey_id, respondent_id, status, completion_percentage, anonymous, started_at)
    VALUES ($1,$2,$3,0,$4,$5)
    RETURNING id
  `, surveyID, respondentID, string(ResponseStarted), anonymous, now).Scan(&id); err != nil {
		return Response{}, err
	}

	if _, err := s.store.DB.Exec(ctx,
		`UPDATE surveys SET response_count = response_count + 1 WHERE id = $1`, surveyID); err != nil {
		return Response{}, err
	}

	return Response{
		ID:           id,
		SurveyID:     surveyID,
		RespondentID: respondentID,
		Status:       ResponseStarted,
		Anonymous:    anonymous,
		StartedAt:    &now,
	}, nil
}

func (s *Service) RecordProgress(ctx context.Context, tenantID, surveyID, responseID string, percentage float64) (Response, error) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	status := ResponseInProgress
	if percentage >= 100 {
		status = ResponseCompleted
	}

	tag, err := s.store.DB.Exec(ctx, `
    UPDATE survey_responses
    SET completion_percentage = $1, status = $2
    WHERE survey_id = $3 AND id = $4 AND status IN ($5, $6, $7)
  `, percentage, string(status), surveyID, responseID,
		string(ResponseStarted), string(ResponseInProgress), string(ResponseCompleted))
	if err != nil {
		return Response{}, err
	}
	if tag.RowsAffected() == 0 {
		return Response{}, ErrResponseNotFound
	}
	return s.getResponse(ctx, surveyID, responseID)
}

// SubmitResponse finalizes a response and records its scores. Only fully
// completed responses can be submitted.
func (s *Service) SubmitResponse(ctx context.Context, tenantID, surveyID, responseID string, totalScore, weightedScore *float64) (Response, error) {
	now := time.Now().UTC()
	tag, err := s.store.DB.Exec(ctx, `
    UPDATE survey_responses
    SET status = $1, completion_percentage = 100, total_score = $2, weighted_score = $3, submitted_at = $4
    WHERE survey_id = $5 AND id = $6 AND status IN ($7, $8, $9)
  `, string(ResponseSubmitted), totalScore, weightedScore, now, surveyID, responseID,
		string(ResponseStarted), string(ResponseInProgress), string(ResponseCompleted))
	if err != nil {
		return Response{}, err
	}
	if tag.RowsAffected() == 0 {
		return Response{}, ErrResponseNotFound
	}
	return s.getResponse(ctx, surveyID, responseID)
}

func (s *Service) CancelResponse(ctx context.Context, tenantID, surveyID, responseID string) error {
	tag, err := s.store.DB.Exec(ctx, `
    UPDATE survey_responses
    SET status = $1
    WHERE survey_id = $2 AND id = $3 AND status IN ($4, $5, $6)
  `, string(ResponseCancelled), surveyID, responseID,
		string(ResponseStarted), string(ResponseInProgress), string(ResponseCompleted))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrResponseNotFound
	}
	_, err = s.store.DB.Exec(ctx,
		`UPDATE surveys SET response_count = GREATEST(response_count - 1, 0) WHERE id = $1`, surveyID)
	return err
}

func (s *Service) Responses(ctx context.Context, tenantID, surveyID string) ([]Response, error) {
	if _, err := s.Get(ctx, tenantID, surveyID); err != nil {
		return nil, err
	}

	rows, err := s.store.DB.Query(ctx, responseSelect+`
    WHERE survey_id = $1
    ORDER BY started_at DESC
  `, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

func (s *Service) Statistics(ctx context.Context, tenantID, surveyID string) (Statistics, error) {
	sv, err := s.Get(ctx, tenantID, surveyID)
	if err != nil {
		return Statistics{}, err
	}

	var stats Statistics
	if err := s.store.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM survey_questions WHERE survey_id = $1 AND active = true`,
		surveyID).Scan(&stats.TotalQuestions); err != nil {
		return Statistics{}, err
	}
	if err := s.store.DB.QueryRow(ctx, `
    SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
    FROM survey_responses WHERE survey_id = $1
  `, surveyID, string(ResponseSubmitted)).Scan(&stats.TotalResponses, &stats.SubmittedResponses); err != nil {
		return Statistics{}, err
	}

	now := time.Now().UTC()
	stats.CompletionRate = CompletionRate(sv)
	stats.CurrentlyActive = IsCurrentlyActive(sv, now)
	stats.Full = IsFull(sv)
	stats.RemainingDays = RemainingDays(sv, now)
	return stats, nil
}

// ExpireOverdue completes active surveys whose end date has passed and
// expires their unfinished responses. Run periodically by the job scheduler.
func (s *Service) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.store.DB.Query(ctx, `
    SELECT tenant_id, id FROM surveys
    WHERE status = $1 AND end_date IS NOT NULL AND end_date < $2
  `, string(StatusActive), now)
	if err != nil {
		return 0, err
	}

	type overdue struct{ tenantID, id string }
	var candidates []overdue
	for rows.Next() {
		var o overdue
		if err := rows.Scan(&o.tenantID, &o.id); err != nil {
			rows.Close()
			return 0, err
		}
		candidates = append(candidates, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	expired := 0
	for _, o := range candidates {
		if _, err := s.Transition(ctx, o.tenantID, o.id, StatusCompleted); err != nil {
			continue
		}
		if _, err := s.store.DB.Exec(ctx, `
      UPDATE survey_responses
      SET status = $1
      WHERE survey_id = $2 AND status IN ($3, $4, $5)
    `, string(ResponseExpired), o.id,
			string(ResponseStarted), string(ResponseInProgress), string(ResponseCompleted)); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

const surveySelect = `
    SELECT s.id, s.tenant_id, s.title, COALESCE(s.description, ''), s.kind, s.status,
           s.start_date, s.end_date, s.anonymous, s.repeatable, s.active, s.is_system,
           s.max_responses, s.response_count, s.created_at
    FROM surveys s`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (Survey, error) {
	var sv Survey
	err := row.Scan(&sv.ID, &sv.TenantID, &sv.Title, &sv.Description, &sv.Kind, &sv.Status,
		&sv.StartDate, &sv.EndDate, &sv.Anonymous, &sv.Repeatable, &sv.Active, &sv.System,
		&sv.MaxResponses, &sv.ResponseCount, &sv.CreatedAt)
	return sv, err
}

const responseSelect = `
    SELECT id, survey_id, COALESCE(respondent_id::text, ''), status, completion_percentage,
           total_score, weighted_score, anonymous, started_at, submitted_at
    FROM survey_responses`

func scanResponse(row rowScanner) (Response, error) {
	var r Response
	err := row.Scan(&r.ID, &r.SurveyID, &r.RespondentID, &r.Status, &r.CompletionPercentage,
		&r.TotalScore, &r.WeightedScore, &r.Anonymous, &r.StartedAt, &r.SubmittedAt)
	return r, err
}

func (s *Service) getResponse(ctx context.Context, surveyID, responseID string) (Response, error) {
	row := s.store.DB.QueryRow(ctx, responseSelect+` WHERE survey_id = $1 AND id = $2`, surveyID, responseID)
	r, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Response{}, ErrResponseNotFound
		}
		return Response{}, err
	}
	return r, nil
}

func (s *Service) titleTaken(ctx context.Context, tenantID, title, excludeID string) (bool, error) {
	var count int
	err := s.store.DB.QueryRow(ctx, `
    SELECT COUNT(*) FROM surveys
    WHERE tenant_id = $1 AND lower(title) = lower($2) AND id::text <> $3
  `, tenantID, title, excludeID).Scan(&count)
	return count > 0, err
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
