package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumina-signage/backend/pkg/response"
	"github.com/lumina-signage/backend/pkg/storage"
)

const maxPageSize = 500

// Handler exposes submission listing and export endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an admin handler. s3 may be nil; the snapshot download
// endpoint then answers 503.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

func parseFilter(c *gin.Context) ListFilter {
	f := ListFilter{SignageID: c.Param("signageId"), Status: c.Query("status"), Limit: 100}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}
	if v := c.Query("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Since = &t
		}
	}
	if v := c.Query("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Until = &t
		}
	}
	return f
}

// ListSubmissions handles GET /api/admin/signage/:signageId/submissions.
func (h *Handler) ListSubmissions(c *gin.Context) {
	f := parseFilter(c)
	list, err := h.repo.ListSubmissions(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list submissions failed", zap.Error(err), zap.String("signage_id", f.SignageID))
		response.Internal(c, "failed to list submissions")
		return
	}
	total, err := h.repo.CountSubmissions(c.Request.Context(), f.SignageID)
	if err != nil {
		h.logger.Error("count submissions failed", zap.Error(err), zap.String("signage_id", f.SignageID))
		response.Internal(c, "failed to list submissions")
		return
	}
	if list == nil {
		list = []SubmissionRow{}
	}
	response.OK(c, gin.H{"submissions": list, "total": total, "limit": f.Limit, "offset": f.Offset})
}

// Export handles GET /api/admin/signage/:signageId/export?format=csv|xlsx and
// streams the full submission list as a file download.
func (h *Handler) Export(c *gin.Context) {
	signageID := c.Param("signageId")
	f := parseFilter(c)
	f.Limit = 0
	f.Offset = 0

	rows, err := h.repo.ListSubmissions(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("export query failed", zap.Error(err), zap.String("signage_id", signageID))
		response.Internal(c, "failed to export submissions")
		return
	}

	format := c.DefaultQuery("format", "csv")
	filename := "submissions-" + signageID + "-" + time.Now().UTC().Format("20060102")

	switch format {
	case "csv":
		body, err := BuildCSV(rows)
		if err != nil {
			response.Internal(c, "failed to render CSV")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		c.Data(http.StatusOK, "text/csv", body)
	case "xlsx":
		body, err := BuildXLSX(rows)
		if err != nil {
			h.logger.Error("xlsx render failed", zap.Error(err), zap.String("signage_id", signageID))
			response.Internal(c, "failed to render workbook")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
	default:
		response.BadRequest(c, "format must be csv or xlsx")
	}
}

// SnapshotURL handles GET /api/admin/signage/:signageId/export/snapshot and
// returns a pre-signed download URL for the worker-maintained S3 snapshot.
func (h *Handler) SnapshotURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "object storage is not configured")
		return
	}
	signageID := c.Param("signageId")
	key := storage.ExportKey(signageID)
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.ExportsBucket(), key, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign snapshot failed", zap.Error(err), zap.String("signage_id", signageID))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"url": url, "expires_in_minutes": int(h.s3.PresignExpire().Minutes())})
}
