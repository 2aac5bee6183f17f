// Package validation manages the per-instance duplicate-submission policy.
package validation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-signage/backend/internal/models"
)

// Repository persists validation config rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a validation config repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the instance's policy, or the default policy when no row exists.
func (r *Repository) Get(ctx context.Context, signageID string) (models.ValidationConfig, error) {
	const q = `SELECT signage_id, allow_multiple_submissions, max_submissions_per_email, max_submissions_per_phone, time_window_hours, created_at, updated_at
		FROM validation_config WHERE signage_id = $1`
	var vc models.ValidationConfig
	err := r.pool.QueryRow(ctx, q, signageID).Scan(&vc.SignageID, &vc.AllowMultipleSubmissions,
		&vc.MaxSubmissionsPerEmail, &vc.MaxSubmissionsPerPhone, &vc.TimeWindowHours,
		&vc.CreatedAt, &vc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultValidationConfig(signageID), nil
	}
	if err != nil {
		return models.ValidationConfig{}, err
	}
	return vc, nil
}

// UpdateParams holds optional policy updates; nil fields keep current values.
type UpdateParams struct {
	AllowMultipleSubmissions *bool
	MaxSubmissionsPerEmail   *int
	MaxSubmissionsPerPhone   *int
	TimeWindowHours          *int
}

// Upsert writes the policy, keeping existing values for fields left nil, and
// returns the fresh row.
func (r *Repository) Upsert(ctx context.Context, signageID string, p UpdateParams) (models.ValidationConfig, error) {
	const q = `INSERT INTO validation_config
			(signage_id, allow_multiple_submissions, max_submissions_per_email, max_submissions_per_phone, time_window_hours)
		VALUES ($1, COALESCE($2, FALSE), COALESCE($3, 1), COALESCE($4, 1), $5)
		ON CONFLICT (signage_id) DO UPDATE SET
			allow_multiple_submissions = COALESCE($2, validation_config.allow_multiple_submissions),
			max_submissions_per_email  = COALESCE($3, validation_config.max_submissions_per_email),
			max_submissions_per_phone  = COALESCE($4, validation_config.max_submissions_per_phone),
			time_window_hours          = COALESCE($5, validation_config.time_window_hours),
			updated_at                 = NOW()
		RETURNING signage_id, allow_multiple_submissions, max_submissions_per_email, max_submissions_per_phone, time_window_hours, created_at, updated_at`
	var vc models.ValidationConfig
	err := r.pool.QueryRow(ctx, q, signageID,
		p.AllowMultipleSubmissions, p.MaxSubmissionsPerEmail, p.MaxSubmissionsPerPhone, p.TimeWindowHours,
	).Scan(&vc.SignageID, &vc.AllowMultipleSubmissions,
		&vc.MaxSubmissionsPerEmail, &vc.MaxSubmissionsPerPhone, &vc.TimeWindowHours,
		&vc.CreatedAt, &vc.UpdatedAt)
	if err != nil {
		return models.ValidationConfig{}, err
	}
	return vc, nil
}
