package session

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-signage/backend/internal/models"
)

// Repository persists finalized submissions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a submission repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping probes datastore availability so handlers can fail with 503 before
// accepting work they cannot persist.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// submissionLockKey derives a stable advisory-lock key from the identity
// fields the duplicate check compares, serializing concurrent submissions
// from the same participant on the same instance.
func submissionLockKey(signageID, emailNorm, phoneNorm string) int64 {
	h := fnv.New64a()
	h.Write([]byte(signageID))
	h.Write([]byte("|"))
	h.Write([]byte(emailNorm))
	h.Write([]byte("|"))
	h.Write([]byte(phoneNorm))
	return int64(h.Sum64())
}

// SaveSubmission writes the user row and its questionnaire session row in one
// transaction. Unless allowMultiple is set, it takes a transaction-scoped
// advisory lock on the participant identity and re-checks for an existing
// submission inside the transaction, so two concurrent submits cannot both
// land. Returns ErrDuplicateSubmission when a prior submission matches.
func (r *Repository) SaveSubmission(ctx context.Context, u *models.User, answers json.RawMessage, totalPoints int, allowMultiple bool) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	if !allowMultiple {
		key := submissionLockKey(u.SignageID, u.EmailNormalized, u.PhoneNormalized)
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
			return uuid.Nil, err
		}
		const dupQ = `SELECT 1
			FROM users u
			JOIN questionnaire_sessions qs ON qs.user_id = u.id
			WHERE (u.email_normalized = $1 OR u.phone_normalized = $2)
			  AND qs.signage_id = $3
			LIMIT 1`
		var one int
		err := tx.QueryRow(ctx, dupQ, u.EmailNormalized, u.PhoneNormalized, u.SignageID).Scan(&one)
		if err == nil {
			return uuid.Nil, ErrDuplicateSubmission
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, err
		}
	}

	const userQ = `INSERT INTO users
			(name, email, phone, branch, email_normalized, phone_normalized,
			 partner_name, partner_email, partner_phone, partner_branch, signage_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, userQ,
		u.Name, u.Email, u.Phone, u.Branch, u.EmailNormalized, u.PhoneNormalized,
		u.PartnerName, u.PartnerEmail, u.PartnerPhone, u.PartnerBranch, u.SignageID,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return uuid.Nil, mapInsertErr(err)
	}

	const sessionQ = `INSERT INTO questionnaire_sessions
			(user_id, signage_id, questionnaire_answers, total_points, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var sessionID uuid.UUID
	if err := tx.QueryRow(ctx, sessionQ, u.ID, u.SignageID, answers, totalPoints,
		models.SubmissionStatusSubmitted).Scan(&sessionID); err != nil {
		return uuid.Nil, mapInsertErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return sessionID, nil
}

// MarkSynced stamps a session as exported.
func (r *Repository) MarkSynced(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questionnaire_sessions SET synced_at = NOW() WHERE id = $1`, sessionID)
	return err
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSubmission
	}
	return err
}
