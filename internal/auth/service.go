package auth

import (
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/config"
	"github.com/amirulhaziq/inspectable-backend/utils"
)

var (
	// ErrInvalidCredentials covers both unknown staff ids and wrong
	// passwords so login cannot be used to probe for accounts.
	ErrInvalidCredentials = errors.New("invalid staff ID or password")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrInvalidStaffID     = errors.New("staff ID must be exactly 4 digits")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrStaffIDTaken       = errors.New("staff ID is already registered")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrTokenNotFound      = errors.New("verification token not found")
	ErrTokenExpired       = errors.New("verification token has expired")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

var (
	staffIDPattern = regexp.MustCompile(`^\d{4}$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidStaffID reports whether id is a 4-digit staff number.
func ValidStaffID(id string) bool {
	return staffIDPattern.MatchString(id)
}

// ValidEmail does a shape check only, deliverability is proven by the
// verification email.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type Service interface {
	Login(input LoginInput) (string, *User, error)
	Register(input RegisterInput) error
	VerifyEmail(token string) (alreadyVerified bool, err error)
	ResendVerification(email string) error
	ForgotPassword(identifier string) error
	ResetPassword(token, newPassword string) error
	ChangePassword(staffID, currentPassword, newPassword string) error
	GetUserByID(id string) (*User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewService(r Repository, cfg *config.Config) Service {
	return &service{
		repo:      r,
		jwtSecret: cfg.JWTSecret,
		jwtTTL:    time.Duration(cfg.JWTTTLHours) * time.Hour,
	}
}

// =============================
// Login
// =============================

type LoginInput struct {
	StaffID  string
	Password string
}

func (s *service) Login(in LoginInput) (string, *User, error) {
	user, err := s.repo.FindByStaffID(in.StaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return "", nil, ErrInvalidCredentials
	}

	if !user.EmailVerified || user.Status != StatusVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// generateToken signs a session token carrying only the user id. Roles are
// re-resolved from the database on every request, so a role change takes
// effect without waiting for token expiry.
func (s *service) generateToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.jwtTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// =============================
// Register
// =============================

type RegisterInput struct {
	StaffID       string
	Name          string
	Email         string
	PersonalEmail string
	Phone         string
	Password      string
}

func (s *service) Register(in RegisterInput) error {
	if !ValidStaffID(in.StaffID) {
		return ErrInvalidStaffID
	}
	if !ValidEmail(in.Email) {
		return ErrInvalidEmail
	}
	if len(in.Password) < 8 {
		return ErrWeakPassword
	}

	if _, err := s.repo.FindByStaffID(in.StaffID); err == nil {
		return ErrStaffIDTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := s.repo.FindByEmail(in.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return err
	}

	token := utils.GenerateToken()
	expiry := time.Now().Add(verificationTokenTTL)

	user := &User{
		ID:                       in.StaffID,
		StaffID:                  in.StaffID,
		Name:                     in.Name,
		Email:                    in.Email,
		PasswordHash:             hash,
		Status:                   StatusUnverified,
		VerificationToken:        &token,
		VerificationTokenExpires: &expiry,
	}
	if in.PersonalEmail != "" {
		user.PersonalEmail = &in.PersonalEmail
	}
	if in.Phone != "" {
		user.Phone = &in.Phone
	}

	if err := s.repo.Create(user, []Role{RoleViewer}); err != nil {
		return err
	}

	if err := utils.SendVerificationEmail(user.Email, user.Name, token); err != nil {
		log.Printf("⚠️ Failed to send verification email to %s: %v", user.Email, err)
	}

	return nil
}

// =============================
// Email Verification
// =============================

func (s *service) VerifyEmail(token string) (bool, error) {
	user, err := s.repo.FindByVerificationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTokenNotFound
		}
		return false, err
	}

	if user.EmailVerified {
		return true, nil
	}

	if user.VerificationTokenExpires == nil || time.Now().After(*user.VerificationTokenExpires) {
		return false, ErrTokenExpired
	}

	if err := s.repo.MarkVerified(user.ID); err != nil {
		return false, err
	}

	if err := utils.SendWelcomeEmail(user.Email, user.Name); err != nil {
		log.Printf("⚠️ Failed to send welcome email to %s: %v", user.Email, err)
	}

	return false, nil
}

// ResendVerification rotates the token for an unverified account. Unknown
// emails return nil so the endpoint stays enumeration safe. A verified
// account also returns nil, the handler reports it as already verified.
func (s *service) ResendVerification(email string) error {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if user.EmailVerified {
		return nil
	}

	token := utils.GenerateToken()
	if err := s.repo.SetVerificationToken(user.ID, token, time.Now().Add(verificationTokenTTL)); err != nil {
		return err
	}

	if err := utils.SendVerificationEmail(user.Email, user.Name, token); err != nil {
		log.Printf("⚠️ Failed to send verification email to %s: %v", user.Email, err)
	}

	return nil
}

// =============================
// Password Reset
// =============================

// ForgotPassword accepts either an email address or a staff id. It always
// succeeds from the caller's perspective.
func (s *service) ForgotPassword(identifier string) error {
	user, err := s.repo.FindByEmail(identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		user, err = s.repo.FindByStaffID(identifier)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
	}

	token := utils.GenerateToken()
	if err := s.repo.SetResetToken(user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	if err := utils.SendResetLink(user.Email, user.Name, token); err != nil {
		log.Printf("⚠️ Failed to send reset email to %s: %v", user.Email, err)
	}

	return nil
}

func (s *service) ResetPassword(token, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	user, err := s.repo.FindByResetToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	// Expired tokens are reported identically to unknown ones.
	if user.ResetTokenExpires == nil || time.Now().After(*user.ResetTokenExpires) {
		return ErrInvalidResetToken
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(user.ID, hash, false); err != nil {
		return err
	}

	return s.repo.ClearResetToken(user.ID)
}

// =============================
// Change Password
// =============================

func (s *service) ChangePassword(staffID, currentPassword, newPassword string) error {
	if !ValidStaffID(staffID) {
		return ErrInvalidStaffID
	}
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	user, err := s.repo.FindByStaffID(staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrWrongPassword
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(user.ID, hash, false)
}

// =============================
// Lookup
// =============================

func (s *service) GetUserByID(id string) (*User, error) {
	return s.repo.FindByID(id)
}
