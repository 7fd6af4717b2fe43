package crossaudit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amirulhaziq/inspectable-backend/internal/auditlog"
	"github.com/amirulhaziq/inspectable-backend/middleware"
)

type Handler struct {
	service Service
	audit   auditlog.Service
}

func NewHandler(s Service, audit auditlog.Service) *Handler {
	return &Handler{service: s, audit: audit}
}

// GetAllowedDepartments handles GET /cross-audits/allowed-departments.
// The scope is always the authenticated caller, never a client-supplied id.
func (h *Handler) GetAllowedDepartments(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	result, err := h.service.ListAllowedDepartments(user.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve allowed departments"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEligibleAuditors handles GET /cross-audits/eligible-auditors.
func (h *Handler) GetEligibleAuditors(c *gin.Context) {
	deptStr := c.Query("department_id")
	if deptStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing department_id parameter"})
		return
	}
	deptID, err := strconv.ParseUint(deptStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department_id"})
		return
	}

	auditors, err := h.service.ListEligibleAuditors(uint(deptID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list eligible auditors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"eligible_auditors": auditors,
		"count":             len(auditors),
	})
}

// ListAssignments handles GET /cross-audits.
func (h *Handler) ListAssignments(c *gin.Context) {
	var departmentID *uint
	if deptStr := c.Query("department_id"); deptStr != "" {
		id, err := strconv.ParseUint(deptStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department_id"})
			return
		}
		uid := uint(id)
		departmentID = &uid
	}

	assignments, err := h.service.ListAssignments(departmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

type createAssignmentReq struct {
	AuditorDepartmentID uint   `json:"auditorDepartmentId"`
	TargetDepartmentID  uint   `json:"targetDepartmentId"`
	Notes               string `json:"notes"`
}

func (h *Handler) CreateAssignment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createAssignmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.CreateAssignment(user.ID, req.AuditorDepartmentID, req.TargetDepartmentID, req.Notes)

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &user.ID, auditlog.ActionAssignmentCreate, map[string]interface{}{
		"auditor_department_id": req.AuditorDepartmentID,
		"target_department_id":  req.TargetDepartmentID,
	}, c.GetString("client_ip"), status)

	if err != nil {
		switch {
		case errors.Is(err, ErrNotAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrMissingDepartments), errors.Is(err, ErrSelfAudit):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrDuplicatePair):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create assignment"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Cross-audit assignment created",
		"assignment": view,
	})
}

type updateAssignmentReq struct {
	Active *bool   `json:"active"`
	Notes  *string `json:"notes"`
}

func (h *Handler) UpdateAssignment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateAssignmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.UpdateAssignment(user.ID, uint(id), req.Active, req.Notes)

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &user.ID, auditlog.ActionAssignmentUpdate, map[string]interface{}{
		"assignment_id": id,
	}, c.GetString("client_ip"), status)

	if err != nil {
		switch {
		case errors.Is(err, ErrNotAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNothingToUpdate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update assignment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Assignment updated"})
}

func (h *Handler) DeleteAssignment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	err = h.service.DeleteAssignment(user.ID, uint(id))

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &user.ID, auditlog.ActionAssignmentDelete, map[string]interface{}{
		"assignment_id": id,
	}, c.GetString("client_ip"), status)

	if err != nil {
		switch {
		case errors.Is(err, ErrNotAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete assignment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Assignment deleted"})
}
