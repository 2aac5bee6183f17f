// Package session orchestrates the interactive questionnaire flow: it
// validates participant tokens, relays phone-side progress to the signage
// display, and finalizes scored submissions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumina-signage/backend/internal/models"
	"github.com/lumina-signage/backend/internal/realtime"
	"github.com/lumina-signage/backend/internal/scoring"
	"github.com/lumina-signage/backend/internal/signage"
	"github.com/lumina-signage/backend/internal/tokens"
	"github.com/lumina-signage/backend/pkg/queue"
	"github.com/lumina-signage/backend/pkg/utils"
)

// Timer bounds for mirrored question countdowns.
const (
	minTimerSeconds = 1
	maxTimerSeconds = 60
)

// Sentinel errors the HTTP layer maps to status codes.
var (
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInstanceNotFound    = errors.New("signage instance not found")
	ErrInstanceInactive    = errors.New("signage instance is not active")
	ErrDuplicateSubmission = errors.New("already submitted")
	ErrStoreUnavailable    = errors.New("datastore unavailable")
)

// ValidationError is a participant-field rejection with a user-facing message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }

// InstanceStore loads instance configuration for finalization.
type InstanceStore interface {
	GetInstance(ctx context.Context, id string) (*models.SignageInstance, error)
	GetValidationConfig(ctx context.Context, signageID string) (models.ValidationConfig, error)
}

// SubmissionStore persists finalized submissions.
type SubmissionStore interface {
	Ping(ctx context.Context) error
	// SaveSubmission writes the participant row and its session row as one
	// transaction, enforcing the duplicate policy inside it. Returns
	// ErrDuplicateSubmission when a prior submission matches.
	SaveSubmission(ctx context.Context, u *models.User, answers json.RawMessage, totalPoints int, allowMultiple bool) (sessionID uuid.UUID, err error)
}

// Broadcaster fans a message out to an instance's signage viewers.
type Broadcaster interface {
	Broadcast(signageID string, message interface{})
}

// ExportQueue enqueues post-submission export snapshot jobs.
type ExportQueue interface {
	EnqueueSubmissionExport(ctx context.Context, payload queue.SubmissionExportPayload) error
}

// SubmitRequest is the finalize input collected on the phone.
type SubmitRequest struct {
	SignageID string
	Token     string
	Mode      string // "single" or "couple"
	Person1   *models.Participant
	Person2   *models.Participant
	Answers   map[string]string
}

// Result is returned to the participant for the on-phone thank-you screen.
type Result struct {
	TotalPoints int               `json:"totalPoints"`
	ResultBand  models.ResultBand `json:"resultBand"`
}

// Coordinator binds the token store, the broadcast hub, and the configuration
// store into one consistent interactive session flow. It keeps no per-session
// state of its own: every transition is an independent request re-validated
// against the token.
type Coordinator struct {
	tokens  *tokens.Store
	hub     Broadcaster
	config  InstanceStore
	store   SubmissionStore
	exports ExportQueue
	logger  *zap.Logger
	now     func() time.Time
}

// NewCoordinator creates a session coordinator. exports may be nil when no
// queue is configured.
func NewCoordinator(tok *tokens.Store, hub Broadcaster, config InstanceStore, store SubmissionStore, exports ExportQueue, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		tokens:  tok,
		hub:     hub,
		config:  config,
		store:   store,
		exports: exports,
		logger:  logger,
		now:     time.Now,
	}
}

// RelaySessionStarted tells the signage display to leave the idle QR screen.
func (co *Coordinator) RelaySessionStarted(token, signageID string) error {
	if !co.tokens.Validate(token, signageID) {
		return ErrInvalidToken
	}
	co.hub.Broadcast(signageID, realtime.NewSessionStarted())
	return nil
}

// RelayQuestion mirrors the phone's current question on the signage display.
// timerSeconds is clamped into [1,60]; startedAt is stamped server-side so
// every viewer computes the same countdown.
func (co *Coordinator) RelayQuestion(token, signageID string, index int, question string, options []string, timerSeconds int) error {
	if !co.tokens.Validate(token, signageID) {
		return ErrInvalidToken
	}
	timer := clampTimer(timerSeconds)
	co.hub.Broadcast(signageID, realtime.NewQuestionDisplay(index, question, options, timer, co.now().UnixMilli()))
	return nil
}

// RelayClear blanks the signage question area when the participant reaches
// the contact-collection step.
func (co *Coordinator) RelayClear(token, signageID string) error {
	if !co.tokens.Validate(token, signageID) {
		return ErrInvalidToken
	}
	co.hub.Broadcast(signageID, realtime.NewQuestionClear())
	return nil
}

// FinalizeSubmission validates, scores, persists, and broadcasts one
// questionnaire submission, returning the participant's personalized result.
func (co *Coordinator) FinalizeSubmission(ctx context.Context, req SubmitRequest) (*Result, error) {
	// Fail closed before touching the datastore.
	if !co.tokens.Validate(req.Token, req.SignageID) {
		return nil, ErrInvalidToken
	}

	if req.SignageID == "" || req.Person1 == nil {
		return nil, validationErr("signageId and person1 (name, email, phone) are required")
	}
	if err := validateParticipant(req.Person1, ""); err != nil {
		return nil, err
	}
	isCouple := req.Mode == "couple" && req.Person2 != nil
	if isCouple {
		if err := validateParticipant(req.Person2, "Partner "); err != nil {
			return nil, err
		}
	}

	emailNorm := utils.NormalizeEmail(req.Person1.Email)
	phoneNorm := utils.NormalizePhone(req.Person1.Phone)
	if emailNorm == "" || phoneNorm == "" {
		return nil, validationErr("Invalid email or phone format")
	}

	if err := co.store.Ping(ctx); err != nil {
		return nil, ErrStoreUnavailable
	}

	inst, err := co.config.GetInstance(ctx, req.SignageID)
	if err != nil {
		if errors.Is(err, signage.ErrNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("load instance: %w", err)
	}
	if !inst.IsActive {
		return nil, ErrInstanceInactive
	}

	cfg := signage.ParseQuestionnaireConfig(inst.QuestionnaireConfig)
	branch := cfg.BranchFor(req.Person1.Branch)
	questions := cfg.QuestionsByBranch[branch]

	answers := req.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	total := scoring.Score(answers, questions)

	var tc models.TextConfig
	if len(inst.TextConfig) > 0 {
		_ = json.Unmarshal(inst.TextConfig, &tc)
	}
	band := scoring.ResolveBand(total, branch, cfg.ResultBands, scoring.DefaultBand(tc))

	vc, err := co.config.GetValidationConfig(ctx, req.SignageID)
	if err != nil {
		return nil, fmt.Errorf("load validation config: %w", err)
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	user := buildUser(req, emailNorm, phoneNorm, isCouple)
	sessionID, err := co.store.SaveSubmission(ctx, user, answersJSON, total, vc.AllowMultipleSubmissions)
	if err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	co.hub.Broadcast(req.SignageID, realtime.NewQuestionnaireSubmitted(user.Name, isCouple, total, band))

	if co.exports != nil {
		payload := queue.SubmissionExportPayload{SessionID: sessionID, SignageID: req.SignageID}
		if err := co.exports.EnqueueSubmissionExport(ctx, payload); err != nil {
			co.logger.Warn("enqueue submission export failed",
				zap.Error(err), zap.String("signage_id", req.SignageID))
		}
	}

	return &Result{TotalPoints: total, ResultBand: band}, nil
}

func validateParticipant(p *models.Participant, prefix string) error {
	if strings.TrimSpace(p.Name) == "" {
		return validationErr(prefix + "name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return validationErr(prefix + "email is required")
	}
	if !utils.ValidEmail(p.Email) {
		return validationErr("Invalid " + strings.ToLower(prefix) + "email")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return validationErr(prefix + "phone is required")
	}
	if utils.NormalizePhone(p.Phone) == "" {
		return validationErr(prefix + "phone must have at least 10 digits")
	}
	return nil
}

func buildUser(req SubmitRequest, emailNorm, phoneNorm string, isCouple bool) *models.User {
	u := &models.User{
		Name:            strings.TrimSpace(req.Person1.Name),
		Email:           strings.TrimSpace(req.Person1.Email),
		Phone:           strings.TrimSpace(req.Person1.Phone),
		Branch:          strings.TrimSpace(req.Person1.Branch),
		EmailNormalized: emailNorm,
		PhoneNormalized: phoneNorm,
		SignageID:       req.SignageID,
	}
	if isCouple {
		u.PartnerName = strPtr(strings.TrimSpace(req.Person2.Name))
		u.PartnerEmail = strPtr(strings.TrimSpace(req.Person2.Email))
		u.PartnerPhone = strPtr(strings.TrimSpace(req.Person2.Phone))
		if b := strings.TrimSpace(req.Person2.Branch); b != "" {
			u.PartnerBranch = strPtr(b)
		}
	}
	return u
}

func clampTimer(seconds int) int {
	if seconds < minTimerSeconds {
		return minTimerSeconds
	}
	if seconds > maxTimerSeconds {
		return maxTimerSeconds
	}
	return seconds
}

func strPtr(s string) *string { return &s }
