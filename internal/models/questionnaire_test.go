package models

import (
	"encoding/json"
	"testing"
)

func testConfig() *QuestionnaireConfig {
	return &QuestionnaireConfig{
		InitialOptions: []InitialOption{
			{ID: "yes", Label: "Yes"},
			{ID: "ready", Label: "Ready"},
		},
		QuestionsByBranch: map[string][]Question{
			"yes":   {{ID: "q1_yes", Label: "Q?"}},
			"ready": {{ID: "q1_ready", Label: "Q?"}},
		},
	}
}

func TestBranchFor(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		name   string
		choice string
		want   string
	}{
		{"known branch kept", "ready", "ready"},
		{"absent falls to first option", "", "yes"},
		// An unknown declared branch also falls to the first option, so the
		// participant always scores against a branch that has questions.
		{"unknown falls to first option", "maybe", "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.BranchFor(tt.choice); got != tt.want {
				t.Errorf("BranchFor(%q) = %q, want %q", tt.choice, got, tt.want)
			}
		})
	}
}

func TestResultBandMissingMaxScoreIsOpenEnded(t *testing.T) {
	raw := `[
		{"min_score": 0, "max_score": 4, "mobile": {"heading": "Low"}},
		{"min_score": 5, "mobile": {"heading": "High"}}
	]`
	var bands []ResultBand
	if err := json.Unmarshal([]byte(raw), &bands); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if bands[0].MaxScore != 4 {
		t.Errorf("explicit max_score = %d, want 4", bands[0].MaxScore)
	}
	if bands[1].MaxScore != 999 {
		t.Errorf("omitted max_score = %d, want open-ended 999", bands[1].MaxScore)
	}
	if bands[1].MinScore != 5 || bands[1].Mobile.Heading != "High" {
		t.Errorf("band fields lost on decode: %+v", bands[1])
	}
}

func TestSubmissionStatusValue(t *testing.T) {
	// The insert path and the admin status filter share this constant; it must
	// stay aligned with the stored-row default.
	if SubmissionStatusSubmitted != "submitted" {
		t.Errorf("SubmissionStatusSubmitted = %q, want %q", SubmissionStatusSubmitted, "submitted")
	}
}
