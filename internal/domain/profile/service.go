package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrapp/internal/domain/dimension"
)

type Service struct {
	store      *Store
	dimensions *dimension.Service
}

func NewService(store *Store, dimensions *dimension.Service) *Service {
	return &Service{store: store, dimensions: dimensions}
}

type CreateParams struct {
	Name               string
	Description        string
	ScopeType          ScopeType
	PositionID         string
	DepartmentID       string
	MinSuccessScore    float64
	TargetSuccessScore float64
}

func (s *Service) Create(ctx context.Context, tenantID string, params CreateParams) (Profile, error) {
	if err := validateSuccessScores(params.MinSuccessScore, params.TargetSuccessScore); err != nil {
		return Profile{}, err
	}

	name := strings.TrimSpace(params.Name)
	taken, err := s.nameTaken(ctx, tenantID, name, "")
	if err != nil {
		return Profile{}, err
	}
	if taken {
		return Profile{}, ErrDuplicateName
	}

	var id string
	if err := s.store.DB.QueryRow(ctx, `
    INSERT INTO success_profiles (tenant_id, name, description, scope_type, position_id, department_id, min_success_score, target_success_score, active, is_system)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true,false)
    RETURNING id
  `, tenantID, name, params.Description, string(params.ScopeType),
		nullIfEmpty(params.PositionID), nullIfEmpty(params.DepartmentID),
		params.MinSuccessScore, params.TargetSuccessScore).Scan(&id); err != nil {
		return Profile{}, err
	}
	return s.Get(ctx, tenantID, id)
}

func (s *Service) Update(ctx context.Context, tenantID, id string, params CreateParams) (Profile, error) {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return Profile{}, err
	}
	if current.System {
		return Profile{}, ErrSystemProfile
	}
	if err := validateSuccessScores(params.MinSuccessScore, params.TargetSuccessScore); err != nil {
		return Profile{}, err
	}

	name := strings.TrimSpace(params.Name)
	if name != current.Name {
		taken, err := s.nameTaken(ctx, tenantID, name, id)
		if err != nil {
			return Profile{}, err
		}
		if taken {
			return Profile{}, ErrDuplicateName
		}
	}

	if _, err := s.store.DB.Exec(ctx, `
    UPDATE success_profiles
    SET name = $1, description = $2, scope_type = $3, position_id = $4, department_id = $5,
        min_success_score = $6, target_success_score = $7
    WHERE tenant_id = $8 AND id = $9
  `, name, params.Description, string(params.ScopeType),
		nullIfEmpty(params.PositionID), nullIfEmpty(params.DepartmentID),
		params.MinSuccessScore, params.TargetSuccessScore, tenantID, id); err != nil {
		return Profile{}, err
	}
	return s.Get(ctx, tenantID, id)
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (Profile, error) {
	var p Profile
	err := s.store.DB.QueryRow(ctx, `
    SELECT id, tenant_id, name, COALESCE(description, ''), scope_type,
           COALESCE(position_id::text, ''), COALESCE(department_id::text, ''),
           min_success_score, target_success_score, active, is_system, created_at
    FROM success_profiles
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id).Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.ScopeType,
		&p.PositionID, &p.DepartmentID, &p.MinSuccessScore, &p.TargetSuccessScore,
		&p.Active, &p.System, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, tenantID string, activeOnly bool) ([]Profile, error) {
	query := `
    SELECT id, tenant_id, name, COALESCE(description, ''), scope_type,
           COALESCE(position_id::text, ''), COALESCE(department_id::text, ''),
           min_success_score, target_success_score, active, is_system, created_at
    FROM success_profiles
    WHERE tenant_id = $1
  `
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY name"

	rows, err := s.store.DB.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.ScopeType,
			&p.PositionID, &p.DepartmentID, &p.MinSuccessScore, &p.TargetSuccessScore,
			&p.Active, &p.System, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Service) Deactivate(ctx context.Context, tenantID, id string) error {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current.System {
		return ErrSystemProfile
	}
	_, err = s.store.DB.Exec(ctx,
		"UPDATE success_profiles SET active = false WHERE tenant_id = $1 AND id = $2", tenantID, id)
	return err
}

// Delete removes a profile and, through the FK cascade, its bindings.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current.System {
		return ErrSystemProfile
	}
	_, err = s.store.DB.Exec(ctx, "DELETE FROM success_profiles WHERE tenant_id = $1 AND id = $2", tenantID, id)
	return err
}

type BindParams struct {
	Weight      float64
	MinScore    *float64
	TargetScore *float64
	Critical    bool
	Notes       string
}

func (s *Service) BindDimension(ctx context.Context, tenantID, profileID, dimensionID string, params BindParams) (Binding, error) {
	if _, err := s.Get(ctx, tenantID, profileID); err != nil {
		return Binding{}, err
	}
	dim, err := s.dimensions.Get(ctx, tenantID, dimensionID)
	if err != nil {
		return Binding{}, err
	}

	var existing int
	if err := s.store.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM success_profile_dimensions
    WHERE success_profile_id = $1 AND dimension_id = $2
  `, profileID, dimensionID).Scan(&existing); err != nil {
		return Binding{}, err
	}
	if existing > 0 {
		return Binding{}, ErrDuplicateBinding
	}

	binding, err := NewBinding(profileID, dim, params.Weight, params.MinScore, params.TargetScore, params.Critical)
	if err != nil {
		return Binding{}, err
	}
	binding.Notes = params.Notes

	var order int
	if err := s.store.DB.QueryRow(ctx,
		"SELECT COUNT(1) + 1 FROM success_profile_dimensions WHERE success_profile_id = $1", profileID).Scan(&order); err != nil {
		return Binding{}, err
	}
	binding.DisplayOrder = order

	if err := s.store.DB.QueryRow(ctx, `
    INSERT INTO success_profile_dimensions (success_profile_id, dimension_id, weight, min_score, target_score, is_critical, active, notes, display_order)
    VALUES ($1,$2,$3,$4,$5,$6,true,$7,$8)
    RETURNING id
  `, profileID, dimensionID, binding.Weight, binding.MinScore, binding.TargetScore,
		binding.Critical, binding.Notes, binding.DisplayOrder).Scan(&binding.ID); err != nil {
		return Binding{}, err
	}
	return binding, nil
}

func (s *Service) UpdateBinding(ctx context.Context, tenantID, profileID, dimensionID string, params BindParams) (Binding, error) {
	current, err := s.getBinding(ctx, tenantID, profileID, dimensionID)
	if err != nil {
		return Binding{}, err
	}

	updated := current
	updated.Weight = params.Weight
	if params.MinScore != nil {
		updated.MinScore = *params.MinScore
	}
	if params.TargetScore != nil {
		updated.TargetScore = *params.TargetScore
	}
	updated.Critical = params.Critical
	if params.Notes != "" {
		updated.Notes = params.Notes
	}
	if err := updated.validateThresholds(); err != nil {
		return Binding{}, err
	}

	if _, err := s.store.DB.Exec(ctx, `
    UPDATE success_profile_dimensions
    SET weight = $1, min_score = $2, target_score = $3, is_critical = $4, notes = $5
    WHERE id = $6
  `, updated.Weight, updated.MinScore, updated.TargetScore, updated.Critical, updated.Notes, updated.ID); err != nil {
		return Binding{}, err
	}
	return updated, nil
}

func (s *Service) UnbindDimension(ctx context.Context, tenantID, profileID, dimensionID string) error {
	binding, err := s.getBinding(ctx, tenantID, profileID, dimensionID)
	if err != nil {
		return err
	}
	_, err = s.store.DB.Exec(ctx, "DELETE FROM success_profile_dimensions WHERE id = $1", binding.ID)
	return err
}

// Bindings loads a profile's bindings with their dimensions, display order
// preserved. Pass activeOnly for evaluation snapshots.
func (s *Service) Bindings(ctx context.Context, tenantID, profileID string, activeOnly bool) ([]Binding, error) {
	query := `
    SELECT spd.id, spd.success_profile_id, spd.weight, spd.min_score, spd.target_score,
           spd.is_critical, spd.active, COALESCE(spd.notes, ''), spd.display_order,
           d.id, d.tenant_id, d.name, COALESCE(d.description, ''), d.category, d.scale_family,
           d.min_value, d.max_value, d.weight, d.active, d.is_system, d.display_order, d.created_at
    FROM success_profile_dimensions spd
    JOIN dimensions d ON spd.dimension_id = d.id
    WHERE d.tenant_id = $1 AND spd.success_profile_id = $2
  `
	if activeOnly {
		query += " AND spd.active = true"
	}
	query += " ORDER BY spd.display_order"

	rows, err := s.store.DB.Query(ctx, query, tenantID, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Binding
	for rows.Next() {
		var b Binding
		if err := rows.Scan(&b.ID, &b.ProfileID, &b.Weight, &b.MinScore, &b.TargetScore,
			&b.Critical, &b.Active, &b.Notes, &b.DisplayOrder,
			&b.Dimension.ID, &b.Dimension.TenantID, &b.Dimension.Name, &b.Dimension.Description,
			&b.Dimension.Category, &b.Dimension.ScaleFamily, &b.Dimension.MinValue, &b.Dimension.MaxValue,
			&b.Dimension.Weight, &b.Dimension.Active, &b.Dimension.System, &b.Dimension.DisplayOrder,
			&b.Dimension.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// EvaluateProfile loads a consistent snapshot of the profile and its active
// bindings and runs the pure evaluator over the supplied observations.
func (s *Service) EvaluateProfile(ctx context.Context, tenantID, profileID string, observations Observations) (Evaluation, error) {
	p, err := s.Get(ctx, tenantID, profileID)
	if err != nil {
		return Evaluation{}, err
	}
	if !p.Active {
		return Evaluation{}, ErrProfileInactive
	}
	bindings, err := s.Bindings(ctx, tenantID, profileID, true)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluate(p, bindings, observations), nil
}

func (s *Service) getBinding(ctx context.Context, tenantID, profileID, dimensionID string) (Binding, error) {
	bindings, err := s.Bindings(ctx, tenantID, profileID, false)
	if err != nil {
		return Binding{}, err
	}
	for _, binding := range bindings {
		if binding.Dimension.ID == dimensionID {
			return binding, nil
		}
	}
	return Binding{}, ErrBindingNotFound
}

func (s *Service) nameTaken(ctx context.Context, tenantID, name, excludeID string) (bool, error) {
	var count int
	err := s.store.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM success_profiles
    WHERE tenant_id = $1 AND lower(name) = lower($2) AND id::text <> $3
  `, tenantID, name, excludeID).Scan(&count)
	return count > 0, err
}

func validateSuccessScores(minScore, targetScore float64) error {
	if minScore < 0 || minScore > 100 {
		return &ThresholdError{Field: "minSuccessScore", Reason: "must be between 0 and 100"}
	}
	if targetScore < 0 || targetScore > 100 {
		return &ThresholdError{Field: "targetSuccessScore", Reason: "must be between 0 and 100"}
	}
	if minScore > targetScore {
		return &ThresholdError{Field: "minSuccessScore", Reason: "must not exceed targetSuccessScore"}
	}
	return nil
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
