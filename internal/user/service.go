package user

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/auth"
	"github.com/amirulhaziq/inspectable-backend/internal/department"
	"github.com/amirulhaziq/inspectable-backend/utils"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrInvalidStaffID = errors.New("invalid staff ID, must be 4 digits")
	ErrInvalidRole    = errors.New("invalid role, must be Admin, Asset Officer, Auditor or Viewer")
	ErrStaffIDTaken   = errors.New("staff ID already exists")
	ErrEmailTaken     = errors.New("email already exists")
	ErrStaffIDInUse   = errors.New("new staff ID is already in use")
	ErrMissingIDs     = errors.New("missing old or new staff ID")
)

type CreateInput struct {
	StaffID       string
	Name          string
	Email         string
	PersonalEmail *string
	Phone         *string
	DepartmentID  *uint
	Password      string
	Roles         []string
}

type CreateResult struct {
	User              *auth.User `json:"user"`
	GeneratedPassword string     `json:"generated_password,omitempty"`
	EmailSent         bool       `json:"email_sent"`
}

type UpdateInput struct {
	Name          string
	Email         string
	PersonalEmail *string
	Phone         *string
	DepartmentID  *uint
	Status        string
	Password      string
	Roles         []string
	ReplaceRoles  bool
}

type VerifyInput struct {
	Verified           *bool
	MustChangePassword *bool
	DepartmentID       *uint
	HasDepartment      bool
	Roles              []string
	ReplaceRoles       bool
}

type Service interface {
	ListUsers() ([]auth.User, error)
	GetUser(id string) (*auth.User, error)
	CreateUser(in CreateInput) (*CreateResult, error)
	UpdateUser(id string, in UpdateInput) error
	DeleteUser(id string) error
	VerifyUser(identifier string, in VerifyInput) (*auth.User, error)
	TransferStaffID(oldStaffID, newStaffID string) (*auth.User, error)
	ImportUsers(files []NamedFile) (*ImportResult, error)
}

type service struct {
	repo  Repository
	depts department.Repository
}

func NewService(repo Repository, depts department.Repository) Service {
	return &service{repo: repo, depts: depts}
}

func (s *service) ListUsers() ([]auth.User, error) {
	return s.repo.FindAll()
}

func (s *service) GetUser(id string) (*auth.User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser provisions an account on behalf of an admin. The staff number
// doubles as the primary id, the account is verified immediately and the
// first login forces a password change.
func (s *service) CreateUser(in CreateInput) (*CreateResult, error) {
	if !auth.ValidStaffID(in.StaffID) {
		return nil, ErrInvalidStaffID
	}

	taken, err := s.repo.StaffIDExists(in.StaffID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrStaffIDTaken
	}
	if in.Email != "" {
		taken, err = s.repo.EmailExists(in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	roles, err := parseRoles(in.Roles)
	if err != nil {
		return nil, err
	}

	password := in.Password
	generated := ""
	if password == "" {
		password, err = utils.GenerateTempPassword(10)
		if err != nil {
			return nil, err
		}
		generated = password
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		ID:                 in.StaffID,
		StaffID:            in.StaffID,
		Name:               in.Name,
		Email:              in.Email,
		PersonalEmail:      in.PersonalEmail,
		Phone:              in.Phone,
		DepartmentID:       in.DepartmentID,
		PasswordHash:       hash,
		MustChangePassword: true,
		EmailVerified:      true,
		Status:             auth.StatusVerified,
	}
	if err := s.repo.Create(user, roles); err != nil {
		return nil, err
	}

	emailSent := false
	if in.Email != "" {
		if err := utils.SendTemporaryPasswordEmail(in.Email, in.Name, in.StaffID, password); err != nil {
			log.Printf("⚠️ Failed to send credentials email to %s: %v", in.Email, err)
		} else {
			emailSent = true
		}
	}

	created, err := s.repo.FindByID(user.ID)
	if err != nil {
		created = user
	}
	return &CreateResult{User: created, GeneratedPassword: generated, EmailSent: emailSent}, nil
}

func (s *service) UpdateUser(id string, in UpdateInput) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}

	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return err
		}
		if err := s.repo.UpdatePassword(id, hash); err != nil {
			return err
		}
	}

	status := in.Status
	if status == "" {
		status = auth.StatusUnverified
	}
	updates := map[string]interface{}{
		"name":           in.Name,
		"email":          in.Email,
		"personal_email": in.PersonalEmail,
		"phone":          in.Phone,
		"department_id":  in.DepartmentID,
		"status":         status,
	}
	if err := s.repo.Update(id, updates); err != nil {
		return err
	}

	if in.ReplaceRoles {
		roles, err := parseRoles(in.Roles)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceRoles(id, roles); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) DeleteUser(id string) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// VerifyUser flips the verification state of an account and optionally
// reassigns its department and roles. Unlike the self-service flows this
// reports a 404 for unknown accounts, admins already see the user list.
func (s *service) VerifyUser(identifier string, in VerifyInput) (*auth.User, error) {
	user, err := s.repo.FindByStaffID(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	verified := true
	if in.Verified != nil {
		verified = *in.Verified
	}
	status := auth.StatusVerified
	if !verified {
		status = auth.StatusUnverified
	}
	mustChange := false
	if in.MustChangePassword != nil {
		mustChange = *in.MustChangePassword
	}
	departmentID := user.DepartmentID
	if in.HasDepartment {
		departmentID = in.DepartmentID
	}

	updates := map[string]interface{}{
		"status":               status,
		"email_verified":       verified,
		"must_change_password": mustChange,
		"department_id":        departmentID,
	}
	if err := s.repo.Update(user.ID, updates); err != nil {
		return nil, err
	}

	if in.ReplaceRoles {
		roles, err := parseRoles(in.Roles)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceRoles(user.ID, roles); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(user.ID)
}

// TransferStaffID moves an account to a new staff number, carrying the
// role rows and any inspections the auditor is assigned to.
func (s *service) TransferStaffID(oldStaffID, newStaffID string) (*auth.User, error) {
	if strings.TrimSpace(oldStaffID) == "" || strings.TrimSpace(newStaffID) == "" {
		return nil, ErrMissingIDs
	}
	if !auth.ValidStaffID(newStaffID) {
		return nil, ErrInvalidStaffID
	}

	user, err := s.repo.FindByStaffID(oldStaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	taken, err := s.repo.StaffIDExists(newStaffID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrStaffIDInUse
	}

	if err := s.repo.TransferStaffID(user.ID, newStaffID); err != nil {
		return nil, err
	}

	log.Printf("✅ Staff ID transferred from %s to %s", oldStaffID, newStaffID)
	return s.repo.FindByID(newStaffID)
}

func parseRoles(raw []string) ([]auth.Role, error) {
	roles := make([]auth.Role, 0, len(raw))
	for _, r := range raw {
		role, ok := auth.ParseRole(r)
		if !ok {
			return nil, ErrInvalidRole
		}
		roles = append(roles, role)
	}
	return roles, nil
}
