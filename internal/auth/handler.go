package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirulhaziq/inspectable-backend/internal/auditlog"
)

type Handler struct {
	service Service
	audit   auditlog.Service
}

func NewHandler(s Service, audit auditlog.Service) *Handler {
	return &Handler{service: s, audit: audit}
}

// currentUser reads the user the auth middleware stored on the context.
// Defined locally because the middleware package imports this one.
func currentUser(c *gin.Context) (*User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok
}

// ===============================
// Login
// ===============================

type loginReq struct {
	StaffID  string `json:"staffId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.service.Login(LoginInput(req))

	status := auditlog.StatusSuccess
	var userID *string
	if err != nil {
		status = auditlog.StatusFailure
	}
	if user != nil {
		userID = &user.ID
	}
	_ = h.audit.LogAction(c.Request.Context(), userID, auditlog.ActionLogin, map[string]interface{}{
		"staffId": req.StaffID,
	}, c.GetString("client_ip"), status)

	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{
				"error":                 err.Error(),
				"requires_verification": true,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	roles := user.RoleNames()
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":           user.ID,
			"staffId":      user.StaffID,
			"name":         user.Name,
			"email":        user.Email,
			"departmentId": user.DepartmentID,
		},
		"roles":                roles,
		"mustChangePassword":   user.MustChangePassword,
		"permissions":          UserPermissions(roles),
		"departmentRestricted": IsDepartmentRestricted(roles),
	})
}

// ===============================
// Registration
// ===============================

type registerReq struct {
	StaffID       string `json:"staffId" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	PersonalEmail string `json:"personalEmail"`
	Phone         string `json:"phone"`
	Password      string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Register(RegisterInput(req)); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStaffID), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrStaffIDTaken), errors.Is(err, ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

// ===============================
// Email Verification
// ===============================

func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	alreadyVerified, err := h.service.VerifyEmail(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	if alreadyVerified {
		c.JSON(http.StatusOK, gin.H{"message": "Email is already verified"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully. You can now log in."})
}

type resendVerificationReq struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var req resendVerificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ResendVerification(req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resend verification email"})
		return
	}

	// Same response for unknown, unverified and already-verified emails.
	c.JSON(http.StatusOK, gin.H{
		"message": "If an unverified account exists with this email, a new verification link has been sent",
	})
}

// ===============================
// Forgot / Reset Password
// ===============================

type forgotPasswordReq struct {
	Identifier string `json:"identifier" binding:"required"`
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ForgotPassword(req.Identifier); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type resetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ResetPassword(req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidResetToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}

// ===============================
// Change Password
// ===============================

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ChangePassword(user.StaffID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidStaffID), errors.Is(err, ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ===============================
// Permissions
// ===============================

// GetPermissions serves the role matrix for the authenticated user so the
// frontend can guard navigation. It is informational only, privileged
// endpoints re-check roles server-side.
func (h *Handler) GetPermissions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	roles := user.RoleNames()
	c.JSON(http.StatusOK, gin.H{
		"userId":               user.ID,
		"roles":                roles,
		"primaryRole":          PrimaryRole(roles),
		"permissions":          UserPermissions(roles),
		"departmentRestricted": IsDepartmentRestricted(roles),
	})
}
