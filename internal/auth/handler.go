// Package auth issues and validates admin JWTs: the env-configured superadmin
// and per-instance admins stored in the database.
package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumina-signage/backend/config"
	"github.com/lumina-signage/backend/pkg/response"
	"github.com/lumina-signage/backend/pkg/utils"
)

// Handler handles admin auth HTTP endpoints.
type Handler struct {
	repo       *Repository
	jwt        *JWTService
	superAdmin config.SuperAdminConfig
	logger     *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, superAdmin config.SuperAdminConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, superAdmin: superAdmin, logger: logger}
}

// LoginRequest is the body for both login endpoints. SignageID is required
// only for instance admin login.
type LoginRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	SignageID string `json:"signage_id"`
}

// SuperAdminLogin handles POST /api/auth/superadmin/login against the
// env-configured credential.
func (h *Handler) SuperAdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}
	if h.superAdmin.Email == "" || h.superAdmin.Password == "" {
		response.ServiceUnavailable(c, "superadmin login is not configured")
		return
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), h.superAdmin.Email) ||
		!utils.CheckPassword(req.Password, h.superAdmin.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(h.superAdmin.Email, RoleSuperAdmin, "")
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, gin.H{"token": token, "role": RoleSuperAdmin})
}

// InstanceAdminLogin handles POST /api/auth/admin/login against the
// instance's stored credential; the issued token is scoped to that instance.
func (h *Handler) InstanceAdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SignageID == "" {
		response.BadRequest(c, "email, password, and signage_id are required")
		return
	}

	email, hash, err := h.repo.GetCredentials(c.Request.Context(), req.SignageID)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		h.logger.Error("load credentials failed", zap.Error(err), zap.String("signage_id", req.SignageID))
		response.Internal(c, "login failed")
		return
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), email) || !utils.CheckPassword(req.Password, hash) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(email, RoleAdmin, req.SignageID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, gin.H{"token": token, "role": RoleAdmin, "signage_id": req.SignageID})
}

// Verify handles GET /api/auth/verify: echoes the authenticated claims so
// admin UIs can restore a session.
func (h *Handler) Verify(c *gin.Context) {
	response.OK(c, gin.H{
		"email":      c.GetString("user_email"),
		"role":       c.GetString("user_role"),
		"signage_id": c.GetString("user_signage_id"),
	})
}

// SetCredentialsRequest is the body for setting an instance admin credential.
type SetCredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// SetInstanceCredentials handles PUT /api/admin/signage/:signageId/credentials
// (superadmin only).
func (h *Handler) SetInstanceCredentials(c *gin.Context) {
	signageID := c.Param("signageId")
	var req SetCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and a password of at least 6 characters are required")
		return
	}
	if !utils.ValidEmail(req.Email) {
		response.BadRequest(c, "invalid email")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.SetCredentials(c.Request.Context(), signageID, strings.TrimSpace(req.Email), hash); err != nil {
		h.logger.Error("set credentials failed", zap.Error(err), zap.String("signage_id", signageID))
		response.Internal(c, "failed to save credentials")
		return
	}
	response.OK(c, gin.H{"success": true})
}
