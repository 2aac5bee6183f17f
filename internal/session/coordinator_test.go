package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumina-signage/backend/internal/models"
	"github.com/lumina-signage/backend/internal/realtime"
	"github.com/lumina-signage/backend/internal/signage"
	"github.com/lumina-signage/backend/internal/tokens"
	"github.com/lumina-signage/backend/pkg/queue"
)

type fakeInstanceStore struct {
	inst *models.SignageInstance
	vc   models.ValidationConfig
	err  error
}

func (f *fakeInstanceStore) GetInstance(_ context.Context, id string) (*models.SignageInstance, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.inst == nil || f.inst.ID != id {
		return nil, signage.ErrNotFound
	}
	return f.inst, nil
}

func (f *fakeInstanceStore) GetValidationConfig(_ context.Context, id string) (models.ValidationConfig, error) {
	if f.vc.SignageID == "" {
		return models.DefaultValidationConfig(id), nil
	}
	return f.vc, nil
}

type savedSubmission struct {
	user          *models.User
	answers       json.RawMessage
	totalPoints   int
	allowMultiple bool
}

type fakeSubmissionStore struct {
	pingErr error
	saveErr error
	saved   []savedSubmission
}

func (f *fakeSubmissionStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeSubmissionStore) SaveSubmission(_ context.Context, u *models.User, answers json.RawMessage, totalPoints int, allowMultiple bool) (uuid.UUID, error) {
	if f.saveErr != nil {
		return uuid.Nil, f.saveErr
	}
	f.saved = append(f.saved, savedSubmission{user: u, answers: answers, totalPoints: totalPoints, allowMultiple: allowMultiple})
	return uuid.New(), nil
}

type broadcastCall struct {
	signageID string
	message   interface{}
}

type fakeBroadcaster struct {
	calls []broadcastCall
}

func (f *fakeBroadcaster) Broadcast(signageID string, message interface{}) {
	f.calls = append(f.calls, broadcastCall{signageID: signageID, message: message})
}

type fakeExportQueue struct {
	payloads []queue.SubmissionExportPayload
	err      error
}

func (f *fakeExportQueue) EnqueueSubmissionExport(_ context.Context, p queue.SubmissionExportPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func testInstance(t *testing.T, id string) *models.SignageInstance {
	t.Helper()
	cfg := models.QuestionnaireConfig{
		InitialOptions: []models.InitialOption{{ID: "yes", Label: "Yes"}},
		QuestionsByBranch: map[string][]models.Question{
			"yes": {
				{
					ID:    "q1",
					Label: "Pick one",
					Options: []models.QuestionOption{
						{Label: "Option A", Points: 1},
						{Label: "Option B", Points: 2},
					},
					TimerSeconds: 10,
				},
				{
					ID:    "q2",
					Label: "Pick another",
					Options: []models.QuestionOption{
						{Label: "Option A", Points: 1},
						{Label: "Option B", Points: 2},
					},
					TimerSeconds: 10,
				},
			},
		},
		ResultBands: []models.ResultBand{
			{
				MinScore: 0, MaxScore: 4,
				Signage: models.BandSignageText{Emoji: "😊", Message: "Nice!"},
				Mobile:  models.BandMobileText{Heading: "Thanks!", Message: "Done."},
			},
			{
				MinScore: 5, MaxScore: 999,
				Signage: models.BandSignageText{Emoji: "🎉", Message: "Amazing!"},
				Mobile:  models.BandMobileText{Heading: "Wow!", Message: "Done."},
			},
		},
	}
	return &models.SignageInstance{
		ID:                  id,
		IsActive:            true,
		QuestionnaireConfig: mustJSON(t, cfg),
	}
}

func validSubmit(signageID, token string) SubmitRequest {
	return SubmitRequest{
		SignageID: signageID,
		Token:     token,
		Mode:      "single",
		Person1: &models.Participant{
			Name:   "Ana",
			Email:  "ana@example.com",
			Phone:  "+1 (555) 123-4567",
			Branch: "yes",
		},
		Answers: map[string]string{"q1": "Option B"},
	}
}

func newTestCoordinator(store *fakeSubmissionStore, cfg *fakeInstanceStore, hub *fakeBroadcaster, exports ExportQueue) (*Coordinator, string) {
	tok := tokens.NewStore(5 * time.Minute)
	token, _, _ := tok.Issue("X")
	return NewCoordinator(tok, hub, cfg, store, exports, nil), token
}

func TestFinalizeSubmissionScoresAndBroadcasts(t *testing.T) {
	store := &fakeSubmissionStore{}
	hub := &fakeBroadcaster{}
	exports := &fakeExportQueue{}
	cfgStore := &fakeInstanceStore{inst: testInstance(t, "X")}
	co, token := newTestCoordinator(store, cfgStore, hub, exports)

	// q1 answered "Option B" (2 points), q2 unanswered (floor of 1).
	res, err := co.FinalizeSubmission(context.Background(), validSubmit("X", token))
	if err != nil {
		t.Fatalf("FinalizeSubmission: %v", err)
	}
	if res.TotalPoints != 3 {
		t.Errorf("TotalPoints = %d, want 3", res.TotalPoints)
	}
	if res.ResultBand.MaxScore != 4 {
		t.Errorf("resolved band %+v, want the 0-4 band", res.ResultBand)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d submissions, want 1", len(store.saved))
	}
	saved := store.saved[0]
	if saved.totalPoints != 3 || saved.user.EmailNormalized != "ana@example.com" || saved.user.PhoneNormalized != "15551234567" {
		t.Errorf("saved = points %d, email %q, phone %q", saved.totalPoints, saved.user.EmailNormalized, saved.user.PhoneNormalized)
	}

	if len(hub.calls) != 1 {
		t.Fatalf("broadcast %d messages, want 1", len(hub.calls))
	}
	msg, ok := hub.calls[0].message.(realtime.QuestionnaireSubmittedMessage)
	if !ok {
		t.Fatalf("broadcast message type %T", hub.calls[0].message)
	}
	if hub.calls[0].signageID != "X" || msg.UserName != "Ana" || msg.TotalPoints != 3 || msg.IsCouple {
		t.Errorf("broadcast = %+v on %q", msg, hub.calls[0].signageID)
	}

	if len(exports.payloads) != 1 || exports.payloads[0].SignageID != "X" {
		t.Errorf("export payloads = %+v, want one for X", exports.payloads)
	}
}

func TestFinalizeSubmissionExpiredTokenWritesNothing(t *testing.T) {
	store := &fakeSubmissionStore{}
	hub := &fakeBroadcaster{}
	cfgStore := &fakeInstanceStore{inst: testInstance(t, "X")}

	tok := tokens.NewStore(-time.Minute) // issued already expired
	token, _, _ := tok.Issue("X")
	co := NewCoordinator(tok, hub, cfgStore, store, nil, nil)

	_, err := co.FinalizeSubmission(context.Background(), validSubmit("X", token))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("expired token persisted %d submissions", len(store.saved))
	}
	if len(hub.calls) != 0 {
		t.Errorf("expired token broadcast %d messages", len(hub.calls))
	}
}

func TestFinalizeSubmissionTokenBoundToInstance(t *testing.T) {
	store := &fakeSubmissionStore{}
	cfgStore := &fakeInstanceStore{inst: testInstance(t, "Y")}
	tok := tokens.NewStore(5 * time.Minute)
	token, _, _ := tok.Issue("X")
	co := NewCoordinator(tok, &fakeBroadcaster{}, cfgStore, store, nil, nil)

	_, err := co.FinalizeSubmission(context.Background(), validSubmit("Y", token))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for cross-instance token", err)
	}
}

func TestFinalizeSubmissionNoBandsUsesDefault(t *testing.T) {
	inst := testInstance(t, "X")
	var cfg models.QuestionnaireConfig
	if err := json.Unmarshal(inst.QuestionnaireConfig, &cfg); err != nil {
		t.Fatal(err)
	}
	cfg.ResultBands = nil
	inst.QuestionnaireConfig = mustJSON(t, cfg)
	inst.TextConfig = mustJSON(t, models.TextConfig{
		ResultMobileHeading: "Cheers!",
		ResultMobileMessage: "See you soon.",
		ResultMobileEmoji:   "👋",
	})

	store := &fakeSubmissionStore{}
	co, token := newTestCoordinator(store, &fakeInstanceStore{inst: inst}, &fakeBroadcaster{}, nil)

	res, err := co.FinalizeSubmission(context.Background(), validSubmit("X", token))
	if err != nil {
		t.Fatalf("FinalizeSubmission: %v", err)
	}
	if res.ResultBand.Mobile.Heading != "Cheers!" {
		t.Errorf("band = %+v, want default band from text config", res.ResultBand)
	}
	if len(store.saved) != 1 {
		t.Errorf("submission should persist even without bands, saved %d", len(store.saved))
	}
}

func TestFinalizeSubmissionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"missing person1", func(r *SubmitRequest) { r.Person1 = nil }},
		{"blank name", func(r *SubmitRequest) { r.Person1.Name = "  " }},
		{"bad email", func(r *SubmitRequest) { r.Person1.Email = "not-an-email" }},
		{"short phone", func(r *SubmitRequest) { r.Person1.Phone = "12345" }},
		{"bad partner email", func(r *SubmitRequest) {
			r.Mode = "couple"
			r.Person2 = &models.Participant{Name: "Bo", Email: "nope", Phone: "5551234567"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSubmissionStore{}
			co, token := newTestCoordinator(store, &fakeInstanceStore{inst: testInstance(t, "X")}, &fakeBroadcaster{}, nil)

			req := validSubmit("X", token)
			tt.mutate(&req)
			_, err := co.FinalizeSubmission(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if len(store.saved) != 0 {
				t.Errorf("invalid request persisted a submission")
			}
		})
	}
}

func TestFinalizeSubmissionInactiveInstance(t *testing.T) {
	inst := testInstance(t, "X")
	inst.IsActive = false
	co, token := newTestCoordinator(&fakeSubmissionStore{}, &fakeInstanceStore{inst: inst}, &fakeBroadcaster{}, nil)

	_, err := co.FinalizeSubmission(context.Background(), validSubmit("X", token))
	if !errors.Is(err, ErrInstanceInactive) {
		t.Fatalf("err = %v, want ErrInstanceInactive", err)
	}
}

func TestFinalizeSubmissionUnknownInstance(t *testing.T) {
	co, token := newTestCoordinator(&fakeSubmissionStore{}, &fakeInstanceStore{}, &fakeBroadcaster{}, nil)

	_, err := co.FinalizeSubmission(context.Background(), validSubmit("X", token))
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("err = %v, want ErrInstanceNotFound", err)
	}
}

func TestFinalizeSubmissionStoreUnavailable(t *testing.T) {
	store := &fakeSubmissionStore{pingErr: errors.New("connection refused")}
	hub := &fakeBroadcaster{}
	co, token := newTestCoordinator(store, &fakeInstanceStore{inst: testInstance(t, "X")}, hub, nil)

	_, err := co.FinalizeSubmission(context.Background(), validSubmit("X", token))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if len(hub.calls) != 0 {
		t.Errorf("unavailable store still broadcast %d messages", len(hub.calls))
	}
}

func TestFinalizeSubmissionDuplicate(t *testing.T) {
	store := &fakeSubmissionStore{saveErr: ErrDuplicateSubmission}
	hub := &fakeBroadcaster{}
	co, token := newTestCoordinator(store, &fakeInstanceStore{inst: testInstance(t, "X")}, hub, nil)

	_, err := co.FinalizeSubmission(context.Background(), validSubmit("X", token))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("err = %v, want ErrDuplicateSubmission", err)
	}
	if len(hub.calls) != 0 {
		t.Errorf("duplicate submission still broadcast %d messages", len(hub.calls))
	}
}

func TestFinalizeSubmissionCoupleMode(t *testing.T) {
	store := &fakeSubmissionStore{}
	hub := &fakeBroadcaster{}
	co, token := newTestCoordinator(store, &fakeInstanceStore{inst: testInstance(t, "X")}, hub, nil)

	req := validSubmit("X", token)
	req.Mode = "couple"
	req.Person2 = &models.Participant{Name: "Bo", Email: "bo@example.com", Phone: "5559876543"}

	_, err := co.FinalizeSubmission(context.Background(), req)
	if err != nil {
		t.Fatalf("FinalizeSubmission: %v", err)
	}
	saved := store.saved[0]
	if saved.user.PartnerName == nil || *saved.user.PartnerName != "Bo" {
		t.Errorf("partner fields not persisted: %+v", saved.user)
	}
	msg := hub.calls[0].message.(realtime.QuestionnaireSubmittedMessage)
	if !msg.IsCouple {
		t.Error("broadcast should flag couple mode")
	}
}

func TestRelayQuestionClampsTimer(t *testing.T) {
	hub := &fakeBroadcaster{}
	tok := tokens.NewStore(5 * time.Minute)
	token, _, _ := tok.Issue("X")
	co := NewCoordinator(tok, hub, &fakeInstanceStore{}, &fakeSubmissionStore{}, nil, nil)

	tests := []struct {
		in, want int
	}{
		{0, 1}, {-5, 1}, {10, 10}, {60, 60}, {600, 60},
	}
	for _, tt := range tests {
		hub.calls = nil
		if err := co.RelayQuestion(token, "X", 0, "Q?", nil, tt.in); err != nil {
			t.Fatalf("RelayQuestion(%d): %v", tt.in, err)
		}
		msg := hub.calls[0].message.(realtime.QuestionDisplayMessage)
		if msg.TimerSeconds != tt.want {
			t.Errorf("timer %d clamped to %d, want %d", tt.in, msg.TimerSeconds, tt.want)
		}
		if msg.StartedAt == 0 {
			t.Error("startedAt should be server-stamped")
		}
	}
}

func TestRelayRejectsInvalidToken(t *testing.T) {
	hub := &fakeBroadcaster{}
	tok := tokens.NewStore(5 * time.Minute)
	co := NewCoordinator(tok, hub, &fakeInstanceStore{}, &fakeSubmissionStore{}, nil, nil)

	if err := co.RelaySessionStarted("bogus", "X"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("RelaySessionStarted err = %v, want ErrInvalidToken", err)
	}
	if err := co.RelayClear("bogus", "X"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("RelayClear err = %v, want ErrInvalidToken", err)
	}
	if len(hub.calls) != 0 {
		t.Errorf("invalid token broadcast %d messages", len(hub.calls))
	}
}
