package models

import "time"

// ValidationConfig holds an instance's duplicate-submission policy.
type ValidationConfig struct {
	SignageID                string    `json:"signage_id"`
	AllowMultipleSubmissions bool      `json:"allow_multiple_submissions"`
	MaxSubmissionsPerEmail   int       `json:"max_submissions_per_email"`
	MaxSubmissionsPerPhone   int       `json:"max_submissions_per_phone"`
	TimeWindowHours          *int      `json:"time_window_hours,omitempty"`
	CreatedAt                time.Time `json:"created_at,omitempty"`
	UpdatedAt                time.Time `json:"updated_at,omitempty"`
}

// DefaultValidationConfig is the policy applied when an instance has no
// stored row: one submission per person.
func DefaultValidationConfig(signageID string) ValidationConfig {
	return ValidationConfig{
		SignageID:                signageID,
		AllowMultipleSubmissions: false,
		MaxSubmissionsPerEmail:   1,
		MaxSubmissionsPerPhone:   1,
	}
}
