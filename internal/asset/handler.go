package asset

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amirulhaziq/inspectable-backend/internal/auditlog"
	"github.com/amirulhaziq/inspectable-backend/middleware"
	"github.com/amirulhaziq/inspectable-backend/utils"
)

type Handler struct {
	service Service
	audit   auditlog.Service
}

func NewHandler(s Service, audit auditlog.Service) *Handler {
	return &Handler{service: s, audit: audit}
}

// Ingest handles POST /assets/upload (multipart). Accepts one file under
// "file" or several under "files".
func (h *Handler) Ingest(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		uploads = form.File["file"]
	}

	notes := c.PostForm("notes")
	overwrite := utils.TruthyString(c.PostForm("overwrite"))

	result, err := h.service.Ingest(user.ID, uploads, notes, overwrite)

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &user.ID, auditlog.ActionAssetIngest, map[string]interface{}{
		"files":     len(uploads),
		"overwrite": overwrite,
	}, c.GetString("client_ip"), status)

	if err != nil {
		if errors.Is(err, ErrNotAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		// Size, parse and column failures all carry the offending filename.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"batch_id":      result.BatchID,
		"total_records": result.Inserted,
		"files":         result.Files,
		"message":       result.Message,
	})
}

// ListBatches handles GET /assets/batches.
func (h *Handler) ListBatches(c *gin.Context) {
	batches, err := h.service.ListBatches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list batches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

// DeleteBatch handles DELETE /assets/batches/:id.
func (h *Handler) DeleteBatch(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing batch id"})
		return
	}

	err = h.service.DeleteBatch(user.ID, uint(id))

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &user.ID, auditlog.ActionAssetBatchDelete, map[string]interface{}{
		"batch_id": id,
	}, c.GetString("client_ip"), status)

	if err != nil {
		switch {
		case errors.Is(err, ErrNotAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrBatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete batch"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSummary handles GET /assets/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	departmentID, ok := optionalUintQuery(c, "department_id")
	if !ok {
		return
	}

	result, err := h.service.GetSummary(departmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListRecords handles GET /assets.
func (h *Handler) ListRecords(c *gin.Context) {
	departmentID, ok := optionalUintQuery(c, "department_id")
	if !ok {
		return
	}
	batchID, ok := optionalUintQuery(c, "batch_id")
	if !ok {
		return
	}

	var inspected *bool
	if v := c.Query("inspected"); v != "" {
		b := utils.TruthyString(v)
		inspected = &b
	}

	records, err := h.service.ListRecords(RecordFilter{
		DepartmentID: departmentID,
		Inspected:    inspected,
		BatchID:      batchID,
		Search:       c.Query("search"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": records})
}

type markInspectedReq struct {
	IsInspected   *bool   `json:"is_inspected"`
	InspectedBy   *string `json:"inspected_by"`
	InspectedDate string  `json:"inspected_date"`
	Notes         *string `json:"notes"`
}

// MarkInspected handles PUT /assets/:id/inspect.
func (h *Handler) MarkInspected(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing asset id"})
		return
	}

	var req markInspectedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Default the inspector to the caller when absent.
	if req.InspectedBy == nil {
		if user, ok := middleware.CurrentUser(c); ok {
			req.InspectedBy = &user.ID
		}
	}

	err = h.service.MarkInspected(uint(id), MarkInspectedInput{
		IsInspected:   req.IsInspected,
		InspectedBy:   req.InspectedBy,
		InspectedDate: req.InspectedDate,
		Notes:         req.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportSummary handles GET /assets/summary/export?format=csv|xlsx|pdf.
func (h *Handler) ExportSummary(c *gin.Context) {
	departmentID, ok := optionalUintQuery(c, "department_id")
	if !ok {
		return
	}

	format := c.DefaultQuery("format", FormatCSV)
	data, filename, contentType, err := h.service.ExportSummary(departmentID, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// optionalUintQuery parses an optional numeric query parameter, writing a
// 400 itself when the value is malformed.
func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	parsed, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	id := uint(parsed)
	return &id, true
}
