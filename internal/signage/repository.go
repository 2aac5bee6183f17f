package signage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-signage/backend/internal/models"
)

// ErrNotFound is returned when no instance exists for the requested id.
var ErrNotFound = errors.New("signage instance not found")

const instanceColumns = `id, location_name, qr_code_url, is_active, background_config, timezone, logo_url, text_config, questionnaire_config, created_at`

// Repository handles signage instance persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a signage instance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping probes datastore availability.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanInstance(row pgx.Row) (*models.SignageInstance, error) {
	var inst models.SignageInstance
	err := row.Scan(&inst.ID, &inst.LocationName, &inst.QRCodeURL, &inst.IsActive,
		&inst.BackgroundConfig, &inst.Timezone, &inst.LogoURL, &inst.TextConfig,
		&inst.QuestionnaireConfig, &inst.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inst, nil
}

// GetInstance returns an instance by id.
func (r *Repository) GetInstance(ctx context.Context, id string) (*models.SignageInstance, error) {
	q := `SELECT ` + instanceColumns + ` FROM signage_instances WHERE id = $1`
	return scanInstance(r.pool.QueryRow(ctx, q, id))
}

// GetValidationConfig returns the instance's duplicate-submission policy,
// falling back to the default policy when no row exists.
func (r *Repository) GetValidationConfig(ctx context.Context, signageID string) (models.ValidationConfig, error) {
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

// List returns all instances, newest first.
func (r *Repository) List(ctx context.Context) ([]models.SignageInstance, error) {
	const q = `SELECT id, location_name, qr_code_url, is_active, background_config, timezone, logo_url, text_config, questionnaire_config, created_at
		FROM signage_instances ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SignageInstance
	for rows.Next() {
		var inst models.SignageInstance
		if err := rows.Scan(&inst.ID, &inst.LocationName, &inst.QRCodeURL, &inst.IsActive,
			&inst.BackgroundConfig, &inst.Timezone, &inst.LogoURL, &inst.TextConfig,
			&inst.QuestionnaireConfig, &inst.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, inst)
	}
	return list, rows.Err()
}

// Create inserts a new instance together with its default validation config.
func (r *Repository) Create(ctx context.Context, inst *models.SignageInstance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO signage_instances (id, location_name, timezone, is_active, background_config, questionnaire_config, text_config)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	err = tx.QueryRow(ctx, q, inst.ID, inst.LocationName, inst.Timezone, inst.IsActive,
		inst.BackgroundConfig, inst.QuestionnaireConfig, inst.TextConfig).Scan(&inst.CreatedAt)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO validation_config (signage_id, allow_multiple_submissions, max_submissions_per_email)
		VALUES ($1, FALSE, 1)`, inst.ID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateFields holds optional instance updates; nil fields are untouched.
// Restricted marks fields only a superadmin may change.
type UpdateFields struct {
	LocationName        *string
	IsActive            *bool
	Timezone            *string
	LogoURL             *string
	TextConfig          json.RawMessage
	QuestionnaireConfig json.RawMessage
}

// Update applies partial updates and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id string, f UpdateFields) (*models.SignageInstance, error) {
	var sets []string
	var args []interface{}
	n := 1
	add := func(col string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	if f.LocationName != nil {
		add("location_name", *f.LocationName)
	}
	if f.IsActive != nil {
		add("is_active", *f.IsActive)
	}
	if f.Timezone != nil {
		add("timezone", *f.Timezone)
	}
	if f.LogoURL != nil {
		add("logo_url", *f.LogoURL)
	}
	if f.TextConfig != nil {
		add("text_config", f.TextConfig)
	}
	if f.QuestionnaireConfig != nil {
		add("questionnaire_config", f.QuestionnaireConfig)
	}
	if len(sets) == 0 {
		return nil, errors.New("no fields to update")
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE signage_instances SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), n, instanceColumns)
	return scanInstance(r.pool.QueryRow(ctx, q, args...))
}

// UpdateBackground replaces the background config and returns the fresh row.
func (r *Repository) UpdateBackground(ctx context.Context, id string, cfg json.RawMessage) (*models.SignageInstance, error) {
	q := `UPDATE signage_instances SET background_config = $1 WHERE id = $2 RETURNING ` + instanceColumns
	return scanInstance(r.pool.QueryRow(ctx, q, cfg, id))
}

// UpdateLogoURL stores the uploaded logo's URL.
func (r *Repository) UpdateLogoURL(ctx context.Context, id, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE signage_instances SET logo_url = $1 WHERE id = $2`, url, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an instance; dependent rows cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM signage_instances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns total participants and sessions recorded for an instance.
func (r *Repository) Stats(ctx context.Context, id string) (totalUsers, totalSessions int, err error) {
	const q = `SELECT
			COUNT(DISTINCT u.id) AS total_users,
			COUNT(DISTINCT qs.id) AS total_sessions
		FROM signage_instances si
		LEFT JOIN users u ON u.signage_id = si.id
		LEFT JOIN questionnaire_sessions qs ON qs.signage_id = si.id
		WHERE si.id = $1`
	err = r.pool.QueryRow(ctx, q, id).Scan(&totalUsers, &totalSessions)
	return totalUsers, totalSessions, err
}
