package department

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

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ===============================
// CRUD
// ===============================

type departmentReq struct {
	Name        string `json:"name"`
	Acronym     string `json:"acronym"`
	TotalAssets *int64 `json:"totalAssets"`
}

func (h *Handler) Create(c *gin.Context) {
	var req departmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept, err := h.service.Create(req.Name, req.Acronym)
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create department"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": dept.ID, "data": dept})
}

func (h *Handler) List(c *gin.Context) {
	depts, err := h.service.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list departments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": depts})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dept, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch department"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dept})
}

type departmentUpdateReq struct {
	Name        *string `json:"name"`
	Acronym     *string `json:"acronym"`
	TotalAssets *int64  `json:"totalAssets"`
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req departmentUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept, err := h.service.Update(id, req.Name, req.Acronym, req.TotalAssets)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update department"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true, "data": dept})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete department"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ===============================
// Summary documents
// ===============================

func (h *Handler) UploadSummaryFiles(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		if single := form.File["file"]; len(single) > 0 {
			files = single
		}
	}

	saved, err := h.service.UploadSummaryFiles(id, files)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNoFiles):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store files"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": saved})
}

func (h *Handler) ListSummaryFiles(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	files, err := h.service.ListSummaryFiles(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": files})
}

func (h *Handler) DeleteSummaryFile(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	if err := h.service.DeleteSummaryFile(uint(fileID)); err != nil {
		if errors.Is(err, ErrSummaryFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ===============================
// Bulk import
// ===============================

// BulkImport handles POST /departments/bulk-import. Admin-gated by route
// middleware; the result carries per-row errors alongside partial success.
func (h *Handler) BulkImport(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["files"]
	overwrite := utils.TruthyString(c.PostForm("overwrite"))

	result, err := h.service.BulkImport(files, overwrite)

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	if user != nil {
		_ = h.audit.LogAction(c.Request.Context(), &user.ID, auditlog.ActionDepartmentImport, map[string]interface{}{
			"files":     len(files),
			"overwrite": overwrite,
		}, c.GetString("client_ip"), status)
	}

	if err != nil {
		if errors.Is(err, ErrNoFiles) || errors.Is(err, utils.ErrBatchTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"departments_created": result.DepartmentsCreated,
		"locations_created":   result.LocationsCreated,
		"total_rows":          result.TotalRows,
		"errors":              result.Errors,
	})
}
