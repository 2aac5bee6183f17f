package scoring

import (
	"testing"

	"github.com/lumina-signage/backend/internal/models"
)

func twoQuestions() []models.Question {
	return []models.Question{
		{
			ID:    "q1",
			Label: "Question 1?",
			Options: []models.QuestionOption{
				{Label: "Option A", Points: 1},
				{Label: "Option B", Points: 2},
				{Label: "Option C", Points: 3},
			},
			TimerSeconds: 10,
		},
		{
			ID:    "q2",
			Label: "Question 2?",
			Options: []models.QuestionOption{
				{Label: "Option A", Points: 1},
				{Label: "Option B", Points: 4},
			},
			TimerSeconds: 10,
		},
	}
}

func TestScore(t *testing.T) {
	questions := twoQuestions()

	tests := []struct {
		name    string
		answers map[string]string
		want    int
	}{
		{"all answered", map[string]string{"q1": "Option C", "q2": "Option B"}, 7},
		{"one unanswered gets minimum", map[string]string{"q1": "Option B"}, 3},
		{"none answered", map[string]string{}, 2},
		{"nil answers", nil, 2},
		{"stale label gets minimum", map[string]string{"q1": "Removed Option", "q2": "Option B"}, 5},
		{"exact match only", map[string]string{"q1": "option c", "q2": "Option B"}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.answers, questions); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
			// Purity: same inputs, same total.
			if again := Score(tt.answers, questions); again != tt.want {
				t.Errorf("Score() second call = %d, want %d", again, tt.want)
			}
		})
	}
}

func TestScoreClampsConfiguredPoints(t *testing.T) {
	questions := []models.Question{
		{
			ID: "q1",
			Options: []models.QuestionOption{
				{Label: "Zero", Points: 0},
				{Label: "Huge", Points: 99},
			},
		},
	}
	if got := Score(map[string]string{"q1": "Zero"}, questions); got != models.MinPoints {
		t.Errorf("zero-point option = %d, want clamp to %d", got, models.MinPoints)
	}
	if got := Score(map[string]string{"q1": "Huge"}, questions); got != models.MaxPoints {
		t.Errorf("oversized option = %d, want clamp to %d", got, models.MaxPoints)
	}
}

func TestResolveBand(t *testing.T) {
	bands := []models.ResultBand{
		{MinScore: 0, MaxScore: 4, Mobile: models.BandMobileText{Heading: "Keep trying!", Message: "Just beginning"}},
		{Branch: "ready", MinScore: 5, MaxScore: 8, Mobile: models.BandMobileText{Heading: "Sweet!", Message: "A nice match"}},
		{MinScore: 5, MaxScore: 999, Mobile: models.BandMobileText{Heading: "Great!", Message: "Well done"}},
	}
	fallback := DefaultBand(models.TextConfig{})

	tests := []struct {
		name        string
		total       int
		branch      string
		wantHeading string
	}{
		{"first range match", 3, "yes", "Keep trying!"},
		{"branch filter match", 6, "ready", "Sweet!"},
		{"branch filter skipped", 6, "yes", "Great!"},
		{"no range match falls back to first band", -1, "yes", "Keep trying!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBand(tt.total, tt.branch, bands, fallback)
			if got.Mobile.Heading != tt.wantHeading {
				t.Errorf("heading = %q, want %q", got.Mobile.Heading, tt.wantHeading)
			}
		})
	}
}

func TestResolveBandEmptyList(t *testing.T) {
	fallback := DefaultBand(models.TextConfig{
		ResultMobileHeading: "Thanks for playing",
		ResultMobileMessage: "See you soon",
	})
	got := ResolveBand(10, "yes", nil, fallback)
	if got.Mobile.Heading != "Thanks for playing" {
		t.Errorf("heading = %q, want fallback heading", got.Mobile.Heading)
	}
	if got.Mobile.Message != "See you soon" {
		t.Errorf("message = %q, want fallback message", got.Mobile.Message)
	}
}

func TestResolveBandDedupsHeadingAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		heading string
		message string
		wantMsg string
	}{
		{"identical text", "Thank you!", "Thank you!", ""},
		{"case and punctuation variants", "Thank You!", "thank you", ""},
		{"distinct text kept", "Thank you!", "Your response has been submitted.", "Your response has been submitted."},
		{"empty heading compared to default", "", "Thank you", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bands := []models.ResultBand{{
				MinScore: 0, MaxScore: 999,
				Mobile: models.BandMobileText{Heading: tt.heading, Message: tt.message},
			}}
			got := ResolveBand(1, "yes", bands, DefaultBand(models.TextConfig{}))
			if got.Mobile.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", got.Mobile.Message, tt.wantMsg)
			}
		})
	}
}
