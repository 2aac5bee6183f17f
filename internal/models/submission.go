package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Participant is the identity block collected on the phone before submission.
type Participant struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Branch string `json:"branch,omitempty"`
}

// User is a persisted participant row, optionally carrying partner fields
// when the submission was made in couple mode.
type User struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Branch          string    `json:"branch,omitempty"`
	EmailNormalized string    `json:"-"`
	PhoneNormalized string    `json:"-"`
	PartnerName     *string   `json:"partner_name,omitempty"`
	PartnerEmail    *string   `json:"partner_email,omitempty"`
	PartnerPhone    *string   `json:"partner_phone,omitempty"`
	PartnerBranch   *string   `json:"partner_branch,omitempty"`
	SignageID       string    `json:"signage_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubmissionStatusSubmitted is the status stamped on every newly persisted
// session. The admin listing filter and the stored-row default use the same
// value.
const SubmissionStatusSubmitted = "submitted"

// QuestionnaireSession is one finalized submission: the raw answer map plus
// the score recomputed from config at submit time.
type QuestionnaireSession struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	SignageID   string          `json:"signage_id"`
	Answers     json.RawMessage `json:"questionnaire_answers"`
	TotalPoints int             `json:"total_points"`
	Status      string          `json:"status"`
	SyncedAt    *time.Time      `json:"synced_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
