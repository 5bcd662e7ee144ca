package dimension

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateParams struct {
	Name         string
	Description  string
	Category     Category
	ScaleFamily  ScaleFamily
	MinValue     *float64
	MaxValue     *float64
	ScaleLabels  map[string]string
	Weight       float64
	DisplayOrder int
}

func (s *Service) Create(ctx context.Context, tenantID string, params CreateParams) (Dimension, error) {
	defaults := DefaultsFor(params.ScaleFamily)
	minValue := defaults.MinValue
	maxValue := defaults.MaxValue
	if params.MinValue != nil {
		minValue = *params.MinValue
	}
	if params.MaxValue != nil {
		maxValue = *params.MaxValue
	}
	if err := ValidateScale(minValue, maxValue); err != nil {
		return Dimension{}, err
	}

	labels := params.ScaleLabels
	if len(labels) == 0 {
		labels = defaults.Labels
	}

	name := strings.TrimSpace(params.Name)
	taken, err := s.nameTaken(ctx, tenantID, name, "")
	if err != nil {
		return Dimension{}, err
	}
	if taken {
		return Dimension{}, ErrDuplicateName
	}

	order := params.DisplayOrder
	if order == 0 {
		if err := s.store.DB.QueryRow(ctx,
			"SELECT COUNT(1) + 1 FROM dimensions WHERE tenant_id = $1", tenantID).Scan(&order); err != nil {
			return Dimension{}, err
		}
	}

	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return Dimension{}, err
	}

	var id string
	if err := s.store.DB.QueryRow(ctx, `
    INSERT INTO dimensions (tenant_id, name, description, category, scale_family, min_value, max_value, scale_labels, weight, active, is_system, display_order)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,true,false,$10)
    RETURNING id
  `, tenantID, name, params.Description, string(params.Category), string(params.ScaleFamily),
		minValue, maxValue, labelsJSON, params.Weight, order).Scan(&id); err != nil {
		return Dimension{}, err
	}
	return s.Get(ctx, tenantID, id)
}

type UpdateParams struct {
	Name         string
	Description  string
	Category     Category
	Weight       float64
	MinValue     *float64
	MaxValue     *float64
	DisplayOrder int
}

func (s *Service) Update(ctx context.Context, tenantID, id string, params UpdateParams) (Dimension, error) {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return Dimension{}, err
	}
	if current.System {
		return Dimension{}, ErrSystemDimension
	}

	name := strings.TrimSpace(params.Name)
	if name != current.Name {
		taken, err := s.nameTaken(ctx, tenantID, name, id)
		if err != nil {
			return Dimension{}, err
		}
		if taken {
			return Dimension{}, ErrDuplicateName
		}
	}

	minValue := current.MinValue
	maxValue := current.MaxValue
	if params.MinValue != nil {
		minValue = *params.MinValue
	}
	if params.MaxValue != nil {
		maxValue = *params.MaxValue
	}
	if err := ValidateScale(minValue, maxValue); err != nil {
		return Dimension{}, err
	}

	if _, err := s.store.DB.Exec(ctx, `
    UPDATE dimensions
    SET name = $1, description = $2, category = $3, weight = $4, min_value = $5, max_value = $6, display_order = $7
    WHERE tenant_id = $8 AND id = $9
  `, name, params.Description, string(params.Category), params.Weight, minValue, maxValue,
		params.DisplayOrder, tenantID, id); err != nil {
		return Dimension{}, err
	}
	return s.Get(ctx, tenantID, id)
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (Dimension, error) {
	row := s.store.DB.QueryRow(ctx, `
    SELECT id, tenant_id, name, COALESCE(description, ''), category, scale_family, min_value, max_value, scale_labels, weight, active, is_system, display_order, created_at
    FROM dimensions
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id)
	return scanDimension(row)
}

func (s *Service) List(ctx context.Context, tenantID string, category Category, activeOnly bool) ([]Dimension, error) {
	query := `
    SELECT id, tenant_id, name, COALESCE(description, ''), category, scale_family, min_value, max_value, scale_labels, weight, active, is_system, display_order, created_at
    FROM dimensions
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if category != "" {
		args = append(args, string(category))
		query += " AND category = $2"
	}
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY display_order, name"

	rows, err := s.store.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dimension
	for rows.Next() {
		dim, err := scanDimension(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dim)
	}
	return out, rows.Err()
}

// Deactivate soft-deletes a dimension. System dimensions and dimensions bound
// to a profile keep their rows either way; bound dimensions may still be
// deactivated to hide them from new profiles.
func (s *Service) Deactivate(ctx context.Context, tenantID, id string) error {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current.System {
		return ErrSystemDimension
	}
	_, err = s.store.DB.Exec(ctx,
		"UPDATE dimensions SET active = false WHERE tenant_id = $1 AND id = $2", tenantID, id)
	return err
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current.System {
		return ErrSystemDimension
	}

	var bindings int
	if err := s.store.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM success_profile_dimensions WHERE dimension_id = $1", id).Scan(&bindings); err != nil {
		return err
	}
	if bindings > 0 {
		return ErrDimensionInUse
	}

	_, err = s.store.DB.Exec(ctx, "DELETE FROM dimensions WHERE tenant_id = $1 AND id = $2", tenantID, id)
	return err
}

func (s *Service) UsageAnalysis(ctx context.Context, tenantID, id string) (UsageAnalysis, error) {
	var analysis UsageAnalysis
	err := s.store.DB.QueryRow(ctx, `
    SELECT COUNT(DISTINCT spd.success_profile_id),
           COUNT(1),
           COALESCE(AVG(spd.weight), 0),
           COALESCE(AVG(spd.min_score), 0)
    FROM success_profile_dimensions spd
    JOIN success_profiles sp ON spd.success_profile_id = sp.id
    WHERE sp.tenant_id = $1 AND spd.dimension_id = $2 AND spd.active = true
  `, tenantID, id).Scan(&analysis.ProfileCount, &analysis.BindingCount, &analysis.AverageWeight, &analysis.AverageMinScore)
	return analysis, err
}

func (s *Service) nameTaken(ctx context.Context, tenantID, name, excludeID string) (bool, error) {
	var count int
	err := s.store.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM dimensions
    WHERE tenant_id = $1 AND lower(name) = lower($2) AND id::text <> $3
  `, tenantID, name, excludeID).Scan(&count)
	return count > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDimension(row rowScanner) (Dimension, error) {
	var dim Dimension
	var labelsJSON []byte
	err := row.Scan(&dim.ID, &dim.TenantID, &dim.Name, &dim.Description, &dim.Category,
		&dim.ScaleFamily, &dim.MinValue, &dim.MaxValue, &labelsJSON, &dim.Weight,
		&dim.Active, &dim.System, &dim.DisplayOrder, &dim.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dimension{}, ErrNotFound
		}
		return Dimension{}, err
	}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &dim.ScaleLabels); err != nil {
			dim.ScaleLabels = nil
		}
	}
	return dim, nil
}
