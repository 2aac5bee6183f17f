// Package scoring computes questionnaire totals and resolves result bands.
// Everything here is pure: same inputs, same outputs, no errors.
package scoring

import (
	"strings"

	"github.com/lumina-signage/backend/internal/models"
)

// Score totals the participant's points over the branch's question list.
// A question with no recorded answer (timer ran out) or whose answer label no
// longer matches any configured option (admin edited options mid-event)
// contributes the minimum point value.
func Score(answers map[string]string, questions []models.Question) int {
	total := 0
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if !ok {
			total += models.MinPoints
			continue
		}
		matched := false
		for _, opt := range q.Options {
			if opt.Label == answer {
				total += clampPoints(opt.Points)
				matched = true
				break
			}
		}
		if !matched {
			total += models.MinPoints
		}
	}
	return total
}

// ResolveBand selects the first band, in configured order, whose branch filter
// matches (empty filter is a wildcard) and whose inclusive score range contains
// total. Falls back to the first configured band, then to fallback when no
// bands are configured at all. The returned band has the redundant
// heading/message dedup applied.
func ResolveBand(total int, branch string, bands []models.ResultBand, fallback models.ResultBand) models.ResultBand {
	selected := fallback
	found := false
	for _, b := range bands {
		if b.Branch != "" && b.Branch != branch {
			continue
		}
		if total >= b.MinScore && total <= b.MaxScore {
			selected = b
			found = true
			break
		}
	}
	if !found && len(bands) > 0 {
		selected = bands[0]
	}
	return dedupMobileText(selected)
}

// DefaultBand builds the built-in neutral band from the instance's generic
// text configuration, used when no bands are configured.
func DefaultBand(tc models.TextConfig) models.ResultBand {
	emoji := tc.ResultMobileEmoji
	if emoji == "" {
		emoji = "🎉"
	}
	heading := tc.ResultMobileHeading
	if heading == "" {
		heading = "Thank You!"
	}
	message := tc.ResultMobileMessage
	if message == "" {
		message = "Your response has been submitted."
	}
	return models.ResultBand{
		Signage: models.BandSignageText{Emoji: emoji, Message: "Thank you!"},
		Mobile:  models.BandMobileText{Emoji: emoji, Heading: heading, Message: message},
	}
}

// dedupMobileText suppresses the participant-facing message when it
// normalizes to the same text as the heading, avoiding an on-screen
// "Thank you! / Thank you!" double.
func dedupMobileText(b models.ResultBand) models.ResultBand {
	heading := b.Mobile.Heading
	if heading == "" {
		heading = "Thank You!"
	}
	if b.Mobile.Message != "" && normalize(b.Mobile.Message) == normalize(heading) {
		b.Mobile.Message = ""
	}
	return b
}

// normalize lowercases and strips trailing punctuation for the dedup check.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, "!?. ")
	return strings.TrimSpace(s)
}

func clampPoints(p int) int {
	if p < models.MinPoints {
		return models.MinPoints
	}
	if p > models.MaxPoints {
		return models.MaxPoints
	}
	return p
}
