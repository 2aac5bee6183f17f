package signage

import (
	"encoding/json"

	"github.com/lumina-signage/backend/internal/models"
)

// DefaultBackgroundConfig is the theme applied to new instances.
func DefaultBackgroundConfig() models.BackgroundConfig {
	return models.BackgroundConfig{
		Type:   "gradient",
		Colors: []string{"#be185d", "#831843", "#500724"},
	}
}

// DefaultTextConfig is the display copy applied to new instances.
func DefaultTextConfig() models.TextConfig {
	return models.TextConfig{
		IdleHeading:          "Are you ready to play?",
		IdleSubtitle:         "Scan to begin",
		SessionActiveMessage: "Session in progress — use your phone",
		FooterText:           "Use your phone camera to scan",
		ResultMobileHeading:  "Thank You!",
		ResultMobileMessage:  "Your response has been submitted.",
		ResultMobileEmoji:    "🎉",
	}
}

// DefaultQuestionnaireConfig is the questionnaire served when an instance has
// none configured, so a freshly created kiosk is immediately playable.
func DefaultQuestionnaireConfig() models.QuestionnaireConfig {
	question := func(id string) models.Question {
		return models.Question{
			ID:    id,
			Label: "Question 1?",
			Type:  "mcq",
			Options: []models.QuestionOption{
				{Label: "Option A", Points: 1},
				{Label: "Option B", Points: 2},
				{Label: "Option C", Points: 3},
			},
			TimerSeconds: 10,
		}
	}
	return models.QuestionnaireConfig{
		InitialOptions: []models.InitialOption{
			{ID: "yes", Label: "Yes!"},
			{ID: "ready", Label: "Let's go!"},
		},
		QuestionsByBranch: map[string][]models.Question{
			"yes":   {question("q1_yes")},
			"ready": {question("q1_ready")},
		},
		ResultBands: []models.ResultBand{
			{
				MinScore: 0, MaxScore: 4,
				Signage: models.BandSignageText{Emoji: "😊", Message: "Thanks!"},
				Mobile:  models.BandMobileText{Heading: "Thank you!", Message: "Your response has been submitted."},
			},
			{
				MinScore: 5, MaxScore: 999,
				Signage: models.BandSignageText{Emoji: "🎉", Message: "Great!"},
				Mobile:  models.BandMobileText{Heading: "Thank you!", Message: "Your response has been submitted."},
			},
		},
	}
}

// ParseQuestionnaireConfig decodes a stored config, substituting the default
// when the stored value is missing, malformed, or carries no questionnaire.
func ParseQuestionnaireConfig(raw json.RawMessage) models.QuestionnaireConfig {
	var cfg models.QuestionnaireConfig
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err == nil && !cfg.Empty() {
			return cfg
		}
	}
	return DefaultQuestionnaireConfig()
}
