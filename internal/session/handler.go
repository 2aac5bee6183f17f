package session

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumina-signage/backend/internal/models"
	"github.com/lumina-signage/backend/pkg/response"
)

// Handler exposes the phone-side session endpoints.
type Handler struct {
	coord  *Coordinator
	logger *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(coord *Coordinator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{coord: coord, logger: logger}
}

type broadcastQuestionRequest struct {
	SignageID      string   `json:"signageId"`
	Token          string   `json:"token"`
	SessionStarted bool     `json:"sessionStarted"`
	Clear          bool     `json:"clear"`
	QuestionIndex  int      `json:"questionIndex"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	TimerSeconds   *int     `json:"timerSeconds"`
}

// BroadcastQuestion handles POST /api/questionnaire/broadcast-question. One
// endpoint carries all phone-side progress events: session start, question
// display, and question clear.
func (h *Handler) BroadcastQuestion(c *gin.Context) {
	var req broadcastQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.SignageID == "" || req.Token == "" {
		response.BadRequest(c, "signageId and token are required")
		return
	}

	var err error
	switch {
	case req.SessionStarted:
		err = h.coord.RelaySessionStarted(req.Token, req.SignageID)
	case req.Clear:
		err = h.coord.RelayClear(req.Token, req.SignageID)
	default:
		timer := 10
		if req.TimerSeconds != nil {
			timer = *req.TimerSeconds
		}
		err = h.coord.RelayQuestion(req.Token, req.SignageID, req.QuestionIndex, req.Question, req.Options, timer)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

type submitRequest struct {
	SignageID string              `json:"signageId"`
	Token     string              `json:"token"`
	Mode      string              `json:"mode"`
	Person1   *models.Participant `json:"person1"`
	Person2   *models.Participant `json:"person2"`
	Answers   map[string]string   `json:"questionnaireAnswers"`
}

// Submit handles POST /api/submit-questionnaire: the single finalize call the
// phone makes after the contact step.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.coord.FinalizeSubmission(c.Request.Context(), SubmitRequest{
		SignageID: req.SignageID,
		Token:     req.Token,
		Mode:      req.Mode,
		Person1:   req.Person1,
		Person2:   req.Person2,
		Answers:   req.Answers,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, gin.H{
		"success":     true,
		"message":     "Thank you for your submission!",
		"totalPoints": result.TotalPoints,
		"resultBand":  result.ResultBand,
	})
}

// writeError maps coordinator sentinels to HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Msg)
	case errors.Is(err, ErrInvalidToken):
		response.Unauthorized(c, "Invalid or expired token")
	case errors.Is(err, ErrInstanceNotFound):
		response.NotFound(c, "Signage instance not found")
	case errors.Is(err, ErrInstanceInactive):
		response.BadRequest(c, "Signage instance is not active")
	case errors.Is(err, ErrDuplicateSubmission):
		response.Forbidden(c, "You have already submitted a response for this session")
	case errors.Is(err, ErrStoreUnavailable):
		response.ServiceUnavailable(c, "Service temporarily unavailable, please try again")
	default:
		h.logger.Error("session request failed", zap.Error(err))
		response.Internal(c, "Internal server error")
	}
}
