package validation

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumina-signage/backend/pkg/response"
)

// Handler exposes validation policy endpoints (admin only).
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a validation handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /api/admin/signage/:signageId/validation.
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("signageId")
	vc, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("load validation config failed", zap.Error(err), zap.String("signage_id", id))
		response.Internal(c, "failed to load validation config")
		return
	}
	response.OK(c, vc)
}

type updateRequest struct {
	AllowMultipleSubmissions *bool `json:"allow_multiple_submissions"`
	MaxSubmissionsPerEmail   *int  `json:"max_submissions_per_email"`
	MaxSubmissionsPerPhone   *int  `json:"max_submissions_per_phone"`
	TimeWindowHours          *int  `json:"time_window_hours"`
}

// Update handles PUT /api/admin/signage/:signageId/validation.
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("signageId")
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if (req.MaxSubmissionsPerEmail != nil && *req.MaxSubmissionsPerEmail < 1) ||
		(req.MaxSubmissionsPerPhone != nil && *req.MaxSubmissionsPerPhone < 1) {
		response.BadRequest(c, "submission limits must be at least 1")
		return
	}

	vc, err := h.repo.Upsert(c.Request.Context(), id, UpdateParams{
		AllowMultipleSubmissions: req.AllowMultipleSubmissions,
		MaxSubmissionsPerEmail:   req.MaxSubmissionsPerEmail,
		MaxSubmissionsPerPhone:   req.MaxSubmissionsPerPhone,
		TimeWindowHours:          req.TimeWindowHours,
	})
	if err != nil {
		h.logger.Error("save validation config failed", zap.Error(err), zap.String("signage_id", id))
		response.Internal(c, "failed to save validation config")
		return
	}
	response.OK(c, vc)
}
