package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrapp/internal/domain/auth"
	"hrapp/internal/domain/dimension"
	"hrapp/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}

	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool, tenantID)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if err := ensureAdminUser(ctx, pool, tenantID, roleIDs[auth.RoleHR], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	dimensionIDs, err := ensureSystemDimensions(ctx, pool, tenantID)
	if err != nil {
		return err
	}

	return ensureBaselineProfile(ctx, pool, tenantID, dimensionIDs)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool, tenantID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE tenant_id = $1 AND name = $2", tenantID, roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}

		err = pool.QueryRow(ctx, "INSERT INTO roles (tenant_id, name) VALUES ($1, $2) RETURNING id", tenantID, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return err
		}
		permMap[key] = id
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, tenantID, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx, "INSERT INTO users (tenant_id, email, password_hash, role_id) VALUES ($1, $2, $3, $4) RETURNING id", tenantID, email, hash, roleID).Scan(&id)
	if err != nil {
		return err
	}
	return nil
}

// seedDimensions are the built-in competency dimensions every tenant starts
// with, one per category, on the standard five point scale.
var seedDimensions = []struct {
	name     string
	category dimension.Category
}{
	{"Technical Proficiency", dimension.CategoryTechnical},
	{"Leadership", dimension.CategoryLeadership},
	{"Communication", dimension.CategoryCommunication},
	{"Teamwork", dimension.CategoryTeamwork},
	{"Problem Solving", dimension.CategoryProblemSolving},
	{"Adaptability", dimension.CategoryAdaptability},
}

func ensureSystemDimensions(ctx context.Context, pool *pgxpool.Pool, tenantID string) ([]string, error) {
	defaults := dimension.DefaultsFor(dimension.ScaleLikert5)
	ids := make([]string, 0, len(seedDimensions))
	for order, seed := range seedDimensions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM dimensions WHERE tenant_id = $1 AND name = $2", tenantID, seed.name).Scan(&id)
		if err == nil {
			ids = append(ids, id)
			continue
		}

		err = pool.QueryRow(ctx, `
      INSERT INTO dimensions (tenant_id, name, category, scale_family, min_value, max_value, weight, active, is_system, display_order)
      VALUES ($1,$2,$3,$4,$5,$6,10,true,true,$7)
      RETURNING id
    `, tenantID, seed.name, string(seed.category), string(dimension.ScaleLikert5),
			defaults.MinValue, defaults.MaxValue, order+1).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func ensureBaselineProfile(ctx context.Context, pool *pgxpool.Pool, tenantID string, dimensionIDs []string) error {
	const profileName = "Core Competency Baseline"

	var profileID string
	err := pool.QueryRow(ctx, "SELECT id FROM success_profiles WHERE tenant_id = $1 AND name = $2", tenantID, profileName).Scan(&profileID)
	if err == nil {
		return nil
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO success_profiles (tenant_id, name, description, scope_type, min_success_score, target_success_score, active, is_system)
    VALUES ($1,$2,'Organization-wide baseline expectations','company_wide',50,75,true,true)
    RETURNING id
  `, tenantID, profileName).Scan(&profileID)
	if err != nil {
		return err
	}

	for order, dimensionID := range dimensionIDs {
		if _, err := pool.Exec(ctx, `
      INSERT INTO success_profile_dimensions (success_profile_id, dimension_id, weight, min_score, target_score, is_critical, active, display_order)
      SELECT $1, d.id, 10, d.min_value, d.max_value * 0.8, false, true, $3
      FROM dimensions d
      WHERE d.id = $2
    `, profileID, dimensionID, order+1); err != nil {
			return err
		}
	}
	return nil
}
