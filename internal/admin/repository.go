// Package admin exposes submission listing and export for instance admins.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRow is one finalized submission joined with its participant.
type SubmissionRow struct {
	SessionID     uuid.UUID       `json:"session_id"`
	SignageID     string          `json:"signage_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Branch        string          `json:"branch,omitempty"`
	PartnerName   *string         `json:"partner_name,omitempty"`
	PartnerEmail  *string         `json:"partner_email,omitempty"`
	PartnerPhone  *string         `json:"partner_phone,omitempty"`
	Answers       json.RawMessage `json:"questionnaire_answers"`
	TotalPoints   int             `json:"total_points"`
	Status        string          `json:"status"`
	SyncedAt      *time.Time      `json:"synced_at,omitempty"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

// ListFilter narrows a submission listing.
type ListFilter struct {
	SignageID string
	Status    string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

// Repository reads submissions for listing and export.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const submissionSelect = `SELECT qs.id, qs.signage_id, u.name, u.email, u.phone, u.branch,
		u.partner_name, u.partner_email, u.partner_phone,
		qs.questionnaire_answers, qs.total_points, qs.status, qs.synced_at, qs.created_at
	FROM questionnaire_sessions qs
	JOIN users u ON u.id = qs.user_id`

// ListSubmissions returns submissions for an instance, newest first.
func (r *Repository) ListSubmissions(ctx context.Context, f ListFilter) ([]SubmissionRow, error) {
	q := submissionSelect + ` WHERE qs.signage_id = $1`
	args := []interface{}{f.SignageID}
	n := 2
	if f.Status != "" {
		q += fmt.Sprintf(" AND qs.status = $%d", n)
		args = append(args, f.Status)
		n++
	}
	if f.Since != nil {
		q += fmt.Sprintf(" AND qs.created_at >= $%d", n)
		args = append(args, *f.Since)
		n++
	}
	if f.Until != nil {
		q += fmt.Sprintf(" AND qs.created_at <= $%d", n)
		args = append(args, *f.Until)
		n++
	}
	q += " ORDER BY qs.created_at DESC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, f.Limit)
		n++
	}
	if f.Offset > 0 {
		q += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, f.Offset)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []SubmissionRow
	for rows.Next() {
		var s SubmissionRow
		if err := rows.Scan(&s.SessionID, &s.SignageID, &s.Name, &s.Email, &s.Phone, &s.Branch,
			&s.PartnerName, &s.PartnerEmail, &s.PartnerPhone,
			&s.Answers, &s.TotalPoints, &s.Status, &s.SyncedAt, &s.SubmittedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CountSubmissions returns the submission total for an instance.
func (r *Repository) CountSubmissions(ctx context.Context, signageID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questionnaire_sessions WHERE signage_id = $1`, signageID).Scan(&count)
	return count, err
}
