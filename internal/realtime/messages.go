package realtime

import (
	"encoding/json"

	"github.com/lumina-signage/backend/internal/models"
)

// Message types broadcast to signage viewers. One "type" field discriminates.
const (
	TypeConnected              = "connected"
	TypeSessionStarted         = "session_started"
	TypeQuestionDisplay        = "question_display"
	TypeQuestionClear          = "question_clear"
	TypeQuestionnaireSubmitted = "questionnaire_submitted"
	TypeBackgroundUpdate       = "background_update"
	TypePing                   = "ping"
	TypePong                   = "pong"
)

// ConnectedMessage is sent once, directly to a newly registered connection.
type ConnectedMessage struct {
	Type      string `json:"type"`
	SignageID string `json:"signageId"`
}

// SessionStartedMessage tells the display a participant began a session.
type SessionStartedMessage struct {
	Type string `json:"type"`
}

// QuestionDisplayMessage mirrors the phone's current question on the display.
// StartedAt is server-stamped epoch milliseconds so every viewer computes the
// same countdown regardless of its own request latency.
type QuestionDisplayMessage struct {
	Type          string   `json:"type"`
	QuestionIndex int      `json:"questionIndex"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	TimerSeconds  int      `json:"timerSeconds"`
	StartedAt     int64    `json:"startedAt"`
}

// QuestionClearMessage blanks the display's question area.
type QuestionClearMessage struct {
	Type string `json:"type"`
}

// QuestionnaireSubmittedMessage moves the display to the thank-you screen.
type QuestionnaireSubmittedMessage struct {
	Type        string            `json:"type"`
	UserName    string            `json:"userName"`
	IsCouple    bool              `json:"isCouple"`
	TotalPoints int               `json:"totalPoints"`
	ResultBand  models.ResultBand `json:"resultBand"`
}

// BackgroundUpdateMessage pushes an admin theme change to live displays.
type BackgroundUpdateMessage struct {
	Type             string          `json:"type"`
	BackgroundConfig json.RawMessage `json:"background_config"`
}

// NewSessionStarted builds a session_started message.
func NewSessionStarted() SessionStartedMessage {
	return SessionStartedMessage{Type: TypeSessionStarted}
}

// NewQuestionDisplay builds a question_display message.
func NewQuestionDisplay(index int, question string, options []string, timerSeconds int, startedAt int64) QuestionDisplayMessage {
	if options == nil {
		options = []string{}
	}
	return QuestionDisplayMessage{
		Type:          TypeQuestionDisplay,
		QuestionIndex: index,
		Question:      question,
		Options:       options,
		TimerSeconds:  timerSeconds,
		StartedAt:     startedAt,
	}
}

// NewQuestionClear builds a question_clear message.
func NewQuestionClear() QuestionClearMessage {
	return QuestionClearMessage{Type: TypeQuestionClear}
}

// NewQuestionnaireSubmitted builds a questionnaire_submitted message.
func NewQuestionnaireSubmitted(userName string, isCouple bool, totalPoints int, band models.ResultBand) QuestionnaireSubmittedMessage {
	return QuestionnaireSubmittedMessage{
		Type:        TypeQuestionnaireSubmitted,
		UserName:    userName,
		IsCouple:    isCouple,
		TotalPoints: totalPoints,
		ResultBand:  band,
	}
}

// NewBackgroundUpdate builds a background_update message.
func NewBackgroundUpdate(cfg json.RawMessage) BackgroundUpdateMessage {
	return BackgroundUpdateMessage{Type: TypeBackgroundUpdate, BackgroundConfig: cfg}
}
