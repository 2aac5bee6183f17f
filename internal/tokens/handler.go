package tokens

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/lumina-signage/backend/pkg/response"
)

// Handler handles token HTTP endpoints. No auth: these are called by the
// public signage display; rate limiting is an operational concern upstream.
type Handler struct {
	store       *Store
	playBaseURL string
	logger      *zap.Logger
}

// NewHandler creates a tokens handler. playBaseURL is the phone questionnaire
// URL encoded into QR codes.
func NewHandler(store *Store, playBaseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, playBaseURL: playBaseURL, logger: logger}
}

// Generate handles GET /token/generate?signageId=. The signage display calls
// this on a fixed interval so a fresh QR code replaces the old one before the
// token lapses.
func (h *Handler) Generate(c *gin.Context) {
	signageID := c.Query("signageId")
	if signageID == "" {
		response.BadRequest(c, "signageId required")
		return
	}
	token, expiresAt, err := h.store.Issue(signageID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err), zap.String("signage_id", signageID))
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, gin.H{
		"token":      token,
		"expires_at": expiresAt.UnixMilli(),
		"play_url":   h.playURL(signageID, token),
	})
}

// Validate handles GET /token/validate?token=&signageId=.
func (h *Handler) Validate(c *gin.Context) {
	valid := h.store.Validate(c.Query("token"), c.Query("signageId"))
	response.OK(c, gin.H{"valid": valid})
}

// QR handles GET /token/qr?signageId=. Issues a fresh token and answers with
// a PNG QR code of the phone questionnaire URL, for displays that render the
// image server-side.
func (h *Handler) QR(c *gin.Context) {
	signageID := c.Query("signageId")
	if signageID == "" {
		response.BadRequest(c, "signageId required")
		return
	}
	token, _, err := h.store.Issue(signageID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err), zap.String("signage_id", signageID))
		response.Internal(c, "failed to generate token")
		return
	}
	png, err := qrcode.Encode(h.playURL(signageID, token), qrcode.Medium, 512)
	if err != nil {
		h.logger.Error("qr encode failed", zap.Error(err))
		response.Internal(c, "failed to render QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) playURL(signageID, token string) string {
	return h.playBaseURL + "?signageId=" + signageID + "&token=" + token
}
