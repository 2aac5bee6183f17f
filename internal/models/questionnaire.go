package models

import "encoding/json"

// Questionnaire point values are administrator-configured; the scoring engine
// clamps them into [MinPoints, MaxPoints] on every submission rather than
// trusting stored config verbatim.
const (
	MinPoints = 1
	MaxPoints = 4
)

// openEndedMaxScore caps a band whose config omits max_score.
const openEndedMaxScore = 999

// InitialOption is one choice on the questionnaire's opening screen; its ID
// selects the branch whose question list applies.
type InitialOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// QuestionOption is one answer choice with its point value.
type QuestionOption struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Question is a timed multiple-choice question within one branch.
type Question struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Type         string           `json:"type,omitempty"`
	Options      []QuestionOption `json:"options"`
	TimerSeconds int              `json:"timer_seconds"`
}

// BandSignageText is the signage-facing message of a result band.
type BandSignageText struct {
	Emoji   string `json:"emoji,omitempty"`
	Message string `json:"message,omitempty"`
	Subtext string `json:"subtext,omitempty"`
}

// BandMobileText is the participant-facing message of a result band.
type BandMobileText struct {
	Emoji   string `json:"emoji,omitempty"`
	Heading string `json:"heading,omitempty"`
	Message string `json:"message,omitempty"`
}

// ResultBand maps an inclusive score range (optionally per-branch) to display
// text. Bands are evaluated in configured order, first match wins.
type ResultBand struct {
	Branch   string          `json:"branch,omitempty"`
	MinScore int             `json:"min_score"`
	MaxScore int             `json:"max_score"`
	Signage  BandSignageText `json:"signage"`
	Mobile   BandMobileText  `json:"mobile"`
}

// UnmarshalJSON decodes a band, treating a missing max_score as open-ended so
// admin-authored configs that only set a floor still match high totals.
func (b *ResultBand) UnmarshalJSON(data []byte) error {
	type plain ResultBand
	aux := struct {
		MaxScore *int `json:"max_score"`
		*plain
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.MaxScore != nil {
		b.MaxScore = *aux.MaxScore
	} else {
		b.MaxScore = openEndedMaxScore
	}
	return nil
}

// QuestionnaireConfig is an instance's full questionnaire: opening options,
// per-branch question lists, and result bands.
type QuestionnaireConfig struct {
	InitialOptions    []InitialOption       `json:"initial_options"`
	QuestionsByBranch map[string][]Question `json:"questions_by_branch"`
	ResultBands       []ResultBand          `json:"result_bands"`
}

// Empty reports whether the config carries no usable questionnaire, in which
// case the built-in default applies.
func (c *QuestionnaireConfig) Empty() bool {
	return c == nil || (len(c.InitialOptions) == 0 && len(c.QuestionsByBranch) == 0)
}

// BranchFor resolves the participant's declared initial choice to a branch id,
// defaulting to the first configured option when absent or unknown.
func (c *QuestionnaireConfig) BranchFor(choice string) string {
	if choice != "" {
		if _, ok := c.QuestionsByBranch[choice]; ok {
			return choice
		}
	}
	if len(c.InitialOptions) > 0 {
		return c.InitialOptions[0].ID
	}
	return choice
}
