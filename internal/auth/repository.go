package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoCredentials is returned when an instance has no admin password set.
var ErrNoCredentials = errors.New("no credentials configured for instance")

// Repository manages per-instance admin credentials.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetCredentials returns the stored admin email and password hash for an
// instance.
func (r *Repository) GetCredentials(ctx context.Context, signageID string) (email, hash string, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT email, password_hash FROM instance_admin_credentials WHERE signage_id = $1`,
		signageID).Scan(&email, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNoCredentials
	}
	if err != nil {
		return "", "", err
	}
	return email, hash, nil
}

// SetCredentials upserts an instance admin's email and password hash.
func (r *Repository) SetCredentials(ctx context.Context, signageID, email, hash string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO instance_admin_credentials (signage_id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (signage_id) DO UPDATE
			SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash, updated_at = NOW()`,
		signageID, email, hash)
	return err
}
