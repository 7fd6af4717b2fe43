package user

import (
	"encoding/json"
	"errors"
	"net/http"

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

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser handles GET /users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type createUserReq struct {
	StaffID       string   `json:"staffId" binding:"required"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	PersonalEmail *string  `json:"personalEmail"`
	Phone         *string  `json:"phone"`
	DepartmentID  *uint    `json:"departmentId"`
	Password      string   `json:"password"`
	Roles         []string `json:"roles"`
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateUser(CreateInput{
		StaffID:       req.StaffID,
		Name:          req.Name,
		Email:         req.Email,
		PersonalEmail: req.PersonalEmail,
		Phone:         req.Phone,
		DepartmentID:  req.DepartmentID,
		Password:      req.Password,
		Roles:         req.Roles,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStaffID), errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrStaffIDTaken), errors.Is(err, ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":                 result.User.ID,
		"staff_id":           result.User.StaffID,
		"generated_password": result.GeneratedPassword,
		"email_sent":         result.EmailSent,
		"user":               result.User,
	})
}

type updateUserReq struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	PersonalEmail *string  `json:"personalEmail"`
	Phone         *string  `json:"phone"`
	DepartmentID  *uint    `json:"departmentId"`
	Status        string   `json:"status"`
	Password      string   `json:"password"`
	Roles         []string `json:"roles"`
}

// UpdateUser handles PUT /users/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.UpdateUser(c.Param("id"), UpdateInput{
		Name:          req.Name,
		Email:         req.Email,
		PersonalEmail: req.PersonalEmail,
		Phone:         req.Phone,
		DepartmentID:  req.DepartmentID,
		Status:        req.Status,
		Password:      req.Password,
		Roles:         req.Roles,
		ReplaceRoles:  req.Roles != nil,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// DeleteUser handles DELETE /users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type verifyUserReq struct {
	ID                 string   `json:"id"`
	StaffID            string   `json:"staff_id"`
	Verified           *bool    `json:"verified"`
	MustChangePassword *bool    `json:"must_change_password"`
	DepartmentID       *uint    `json:"department_id"`
	Roles              []string `json:"roles"`
}

// VerifyUser handles POST /users/verify. The target may be named by user
// id or staff number.
func (h *Handler) VerifyUser(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var req verifyUserReq
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identifier := req.ID
	if identifier == "" {
		identifier = req.StaffID
	}
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing id or staff_id"})
		return
	}

	// A department_id key in the body means "set it", even when null, so
	// presence is checked against the raw payload.
	var body map[string]json.RawMessage
	_ = json.Unmarshal(raw, &body)
	_, hasDepartment := body["department_id"]

	updated, err := h.service.VerifyUser(identifier, VerifyInput{
		Verified:           req.Verified,
		MustChangePassword: req.MustChangePassword,
		DepartmentID:       req.DepartmentID,
		HasDepartment:      hasDepartment,
		Roles:              req.Roles,
		ReplaceRoles:       req.Roles != nil,
	})

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &caller.ID, auditlog.ActionUserVerify, map[string]interface{}{
		"target": identifier,
	}, c.GetString("client_ip"), status)

	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true, "user": updated})
}

type transferStaffIDReq struct {
	OldStaffID string `json:"old_staff_id"`
	NewStaffID string `json:"new_staff_id"`
}

// TransferStaffID handles POST /users/transfer-staff-id.
func (h *Handler) TransferStaffID(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req transferStaffIDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.TransferStaffID(req.OldStaffID, req.NewStaffID)

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &caller.ID, auditlog.ActionStaffIDTransfer, map[string]interface{}{
		"old_staff_id": req.OldStaffID,
		"new_staff_id": req.NewStaffID,
	}, c.GetString("client_ip"), status)

	if err != nil {
		switch {
		case errors.Is(err, ErrMissingIDs), errors.Is(err, ErrInvalidStaffID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User with old staff ID not found"})
		case errors.Is(err, ErrStaffIDInUse):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to transfer staff ID"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Staff ID transferred from " + req.OldStaffID + " to " + req.NewStaffID,
		"user":    updated,
	})
}

// ImportUsers handles POST /users/import (multipart).
func (h *Handler) ImportUsers(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
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
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid files to upload"})
		return
	}

	if err := utils.ValidateBatchSize(uploads); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var files []NamedFile
	for _, fh := range uploads {
		data, err := utils.ValidateSpreadsheetUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error in '" + fh.Filename + "': " + err.Error()})
			return
		}
		rows, err := utils.ParseTabularFile(fh.Filename, data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error in '" + fh.Filename + "': " + err.Error()})
			return
		}
		files = append(files, NamedFile{Name: fh.Filename, Rows: rows})
	}

	result, err := h.service.ImportUsers(files)

	status := auditlog.StatusSuccess
	if err != nil {
		status = auditlog.StatusFailure
	}
	_ = h.audit.LogAction(c.Request.Context(), &caller.ID, auditlog.ActionUserImport, map[string]interface{}{
		"files": len(uploads),
	}, c.GetString("client_ip"), status)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"users_imported":  result.Imported,
		"users_skipped":   result.Skipped,
		"files_processed": result.FilesProcessed,
		"errors":          result.Errors,
		"credentials":     result.Credentials,
		"message":         result.Message,
	})
}
