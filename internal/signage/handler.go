// Package signage manages kiosk instance configuration: the per-location
// record driving the display's theme, copy, and questionnaire.
package signage

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumina-signage/backend/internal/models"
	"github.com/lumina-signage/backend/internal/realtime"
	"github.com/lumina-signage/backend/pkg/response"
	"github.com/lumina-signage/backend/pkg/storage"
)

// Broadcaster pushes live config changes to connected signage displays.
type Broadcaster interface {
	Broadcast(signageID string, message interface{})
	ViewerCount(signageID string) int
}

// Handler exposes instance configuration endpoints. The public config fetch
// is unauthenticated; everything else sits behind admin middleware.
type Handler struct {
	repo   *Repository
	hub    Broadcaster
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a signage handler. s3 may be nil when object storage is
// not configured; logo upload then answers 503.
func NewHandler(repo *Repository, hub Broadcaster, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, hub: hub, s3: s3, logger: logger}
}

// GetConfig handles GET /api/signage/:signageId/config. Called by the display
// on boot and by the phone after scanning; missing config sections come back
// filled with defaults so clients never special-case an empty instance.
func (h *Handler) GetConfig(c *gin.Context) {
	id := c.Param("signageId")
	inst, err := h.repo.GetInstance(c.Request.Context(), id)
	if err != nil {
		h.writeRepoErr(c, err, id)
		return
	}

	bg := inst.BackgroundConfig
	if len(bg) == 0 {
		bg = mustMarshal(DefaultBackgroundConfig())
	}
	text := inst.TextConfig
	if len(text) == 0 {
		text = mustMarshal(DefaultTextConfig())
	}
	questionnaire := mustMarshal(ParseQuestionnaireConfig(inst.QuestionnaireConfig))

	response.OK(c, gin.H{
		"id":                   inst.ID,
		"location_name":        inst.LocationName,
		"is_active":            inst.IsActive,
		"timezone":             inst.Timezone,
		"logo_url":             inst.LogoURL,
		"background_config":    json.RawMessage(bg),
		"text_config":          json.RawMessage(text),
		"questionnaire_config": json.RawMessage(questionnaire),
	})
}

// List handles GET /api/admin/signage.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.writeRepoErr(c, err, "")
		return
	}
	if list == nil {
		list = []models.SignageInstance{}
	}
	response.OK(c, gin.H{"instances": list})
}

type createRequest struct {
	ID           string `json:"id"`
	LocationName string `json:"location_name"`
	Timezone     string `json:"timezone"`
}

// Create handles POST /api/admin/signage. New instances start active with the
// default theme, copy, and questionnaire.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || strings.TrimSpace(req.LocationName) == "" {
		response.BadRequest(c, "id and location_name are required")
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	inst := &models.SignageInstance{
		ID:                  req.ID,
		LocationName:        strings.TrimSpace(req.LocationName),
		Timezone:            req.Timezone,
		IsActive:            true,
		BackgroundConfig:    mustMarshal(DefaultBackgroundConfig()),
		TextConfig:          mustMarshal(DefaultTextConfig()),
		QuestionnaireConfig: mustMarshal(DefaultQuestionnaireConfig()),
	}
	if err := h.repo.Create(c.Request.Context(), inst); err != nil {
		h.logger.Error("create instance failed", zap.Error(err), zap.String("signage_id", req.ID))
		response.Internal(c, "failed to create instance")
		return
	}
	response.Created(c, inst)
}

type updateRequest struct {
	LocationName        *string         `json:"location_name"`
	IsActive            *bool           `json:"is_active"`
	Timezone            *string         `json:"timezone"`
	TextConfig          json.RawMessage `json:"text_config"`
	QuestionnaireConfig json.RawMessage `json:"questionnaire_config"`
}

// Update handles PUT /api/admin/signage/:signageId with partial updates.
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("signageId")
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.QuestionnaireConfig != nil && !json.Valid(req.QuestionnaireConfig) {
		response.BadRequest(c, "questionnaire_config is not valid JSON")
		return
	}
	inst, err := h.repo.Update(c.Request.Context(), id, UpdateFields{
		LocationName:        req.LocationName,
		IsActive:            req.IsActive,
		Timezone:            req.Timezone,
		TextConfig:          req.TextConfig,
		QuestionnaireConfig: req.QuestionnaireConfig,
	})
	if err != nil {
		h.writeRepoErr(c, err, id)
		return
	}
	response.OK(c, inst)
}

// Delete handles DELETE /api/admin/signage/:signageId. Participant and
// session rows cascade with the instance.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("signageId")
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.writeRepoErr(c, err, id)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// Stats handles GET /api/admin/signage/:signageId/stats.
func (h *Handler) Stats(c *gin.Context) {
	id := c.Param("signageId")
	if _, err := h.repo.GetInstance(c.Request.Context(), id); err != nil {
		h.writeRepoErr(c, err, id)
		return
	}
	users, sessions, err := h.repo.Stats(c.Request.Context(), id)
	if err != nil {
		h.writeRepoErr(c, err, id)
		return
	}
	viewers := 0
	if h.hub != nil {
		viewers = h.hub.ViewerCount(id)
	}
	response.OK(c, gin.H{
		"signage_id":        id,
		"total_users":       users,
		"total_sessions":    sessions,
		"connected_viewers": viewers,
	})
}

// GetBackground handles GET /api/admin/signage/:signageId/background.
func (h *Handler) GetBackground(c *gin.Context) {
	id := c.Param("signageId")
	inst, err := h.repo.GetInstance(c.Request.Context(), id)
	if err != nil {
		h.writeRepoErr(c, err, id)
		return
	}
	bg := inst.BackgroundConfig
	if len(bg) == 0 {
		bg = mustMarshal(DefaultBackgroundConfig())
	}
	response.OK(c, gin.H{"background_config": json.RawMessage(bg)})
}

// UpdateBackground handles PUT /api/admin/signage/:signageId/background.
// The new theme is persisted first, then pushed to every connected display
// so the change is visible without a reload.
func (h *Handler) UpdateBackground(c *gin.Context) {
	id := c.Param("signageId")
	var req struct {
		BackgroundConfig json.RawMessage `json:"background_config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.BackgroundConfig) == 0 {
		response.BadRequest(c, "background_config is required")
		return
	}
	var cfg models.BackgroundConfig
	if err := json.Unmarshal(req.BackgroundConfig, &cfg); err != nil || cfg.Type == "" {
		response.BadRequest(c, "background_config must include a type")
		return
	}

	inst, err := h.repo.UpdateBackground(c.Request.Context(), id, req.BackgroundConfig)
	if err != nil {
		h.writeRepoErr(c, err, id)
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(id, realtime.NewBackgroundUpdate(inst.BackgroundConfig))
	}
	response.OK(c, gin.H{"success": true, "background_config": json.RawMessage(inst.BackgroundConfig)})
}

// UploadLogo handles POST /api/admin/signage/:signageId/logo as multipart
// form data with a "logo" file field.
func (h *Handler) UploadLogo(c *gin.Context) {
	id := c.Param("signageId")
	if h.s3 == nil {
		response.ServiceUnavailable(c, "object storage is not configured")
		return
	}
	if _, err := h.repo.GetInstance(c.Request.Context(), id); err != nil {
		h.writeRepoErr(c, err, id)
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "logo file is required")
		return
	}
	if fileHeader.Size > storage.MaxLogoFileSize {
		response.BadRequest(c, "logo exceeds the 5MB limit")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateLogoFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "logo must be a jpg, png, webp, or svg image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer file.Close()

	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fileHeader.Filename)
	}
	key := storage.LogoKey(id, fileHeader.Filename)
	url, err := h.s3.Upload(c.Request.Context(), h.s3.AssetsBucket(), key, contentType, file, fileHeader.Size, true)
	if err != nil {
		h.logger.Error("logo upload failed", zap.Error(err), zap.String("signage_id", id))
		response.Internal(c, "failed to upload logo")
		return
	}
	if err := h.repo.UpdateLogoURL(c.Request.Context(), id, url); err != nil {
		h.writeRepoErr(c, err, id)
		return
	}
	response.OK(c, gin.H{"logo_url": url})
}

func (h *Handler) writeRepoErr(c *gin.Context, err error, id string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "Signage instance not found")
	case h.repo.Ping(c.Request.Context()) != nil:
		response.ServiceUnavailable(c, "Service temporarily unavailable")
	default:
		h.logger.Error("signage request failed", zap.Error(err), zap.String("signage_id", id))
		response.Internal(c, "Internal server error")
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}
