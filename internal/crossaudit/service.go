package crossaudit

import (
	"errors"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAdmin           = errors.New("only Admin can manage cross-audit assignments")
	ErrMissingDepartments = errors.New("auditor_department_id and target_department_id are required")
	ErrSelfAudit          = errors.New("a department cannot audit itself (conflict of interest)")
	ErrDuplicatePair      = errors.New("assignment already exists for this department pair")
	ErrNotFound           = errors.New("assignment not found")
	ErrNothingToUpdate    = errors.New("nothing to update")
)

type Service interface {
	ListAllowedDepartments(userID string) (*AllowedDepartmentsResult, error)
	ListEligibleAuditors(departmentID uint) ([]EligibleAuditor, error)
	CanAuditDepartment(userID string, departmentID uint) (bool, error)

	ListAssignments(departmentID *uint) ([]AssignmentView, error)
	CreateAssignment(adminID string, auditorDeptID, targetDeptID uint, notes string) (*AssignmentView, error)
	UpdateAssignment(adminID string, id uint, active *bool, notes *string) error
	DeleteAssignment(adminID string, id uint) error
}

type service struct {
	repo Repository
}

func NewService(r Repository) Service {
	return &service{repo: r}
}

// ListAllowedDepartments resolves which departments a user may audit.
// Admins see everything. Everyone else sees the targets of active grants
// held by their own department, never their own department itself.
func (s *service) ListAllowedDepartments(userID string) (*AllowedDepartmentsResult, error) {
	isAdmin, err := s.repo.UserHasRole(userID, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if isAdmin {
		depts, err := s.repo.ListAllDepartments()
		if err != nil {
			return nil, err
		}
		return &AllowedDepartmentsResult{
			IsAdmin:            true,
			AllowedDepartments: depts,
			Count:              len(depts),
		}, nil
	}

	deptID, found, err := s.repo.UserDepartment(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}

	result := &AllowedDepartmentsResult{
		IsAdmin:             false,
		AuditorDepartmentID: deptID,
		AllowedDepartments:  []AllowedDepartment{},
	}

	if deptID == nil {
		return result, nil
	}

	depts, err := s.repo.ListTargetDepartments(*deptID)
	if err != nil {
		return nil, err
	}
	result.AllowedDepartments = depts
	result.Count = len(depts)
	return result, nil
}

func (s *service) ListEligibleAuditors(departmentID uint) ([]EligibleAuditor, error) {
	return s.repo.ListEligibleAuditors(departmentID)
}

// CanAuditDepartment is the gate consulted before an inspection names an
// auditor. Admin always passes. A user auditing their own department never
// passes, regardless of any grants. Everyone else needs an active grant
// from their department over the target.
func (s *service) CanAuditDepartment(userID string, departmentID uint) (bool, error) {
	isAdmin, err := s.repo.UserHasRole(userID, auth.RoleAdmin)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	deptID, found, err := s.repo.UserDepartment(userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrUserNotFound
	}
	if deptID == nil {
		return false, nil
	}
	if *deptID == departmentID {
		return false, nil
	}

	return s.repo.ActiveAssignmentExists(*deptID, departmentID)
}

func (s *service) ListAssignments(departmentID *uint) ([]AssignmentView, error) {
	return s.repo.List(departmentID)
}

// requireAdmin re-checks the caller's role from the database. Route
// middleware already gates these endpoints but the role may have been
// revoked since the session token was issued.
func (s *service) requireAdmin(adminID string) error {
	isAdmin, err := s.repo.UserHasRole(adminID, auth.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotAdmin
	}
	return nil
}

// CreateAssignment rejects self-audit pairs and duplicates. The duplicate
// check is a pre-insert existence test with no unique constraint behind it,
// so two concurrent creates for the same pair can both pass. Known gap.
func (s *service) CreateAssignment(adminID string, auditorDeptID, targetDeptID uint, notes string) (*AssignmentView, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}

	if auditorDeptID == 0 || targetDeptID == 0 {
		return nil, ErrMissingDepartments
	}
	if auditorDeptID == targetDeptID {
		return nil, ErrSelfAudit
	}

	exists, err := s.repo.PairExists(auditorDeptID, targetDeptID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePair
	}

	a := &Assignment{
		AuditorDepartmentID: auditorDeptID,
		TargetDepartmentID:  targetDeptID,
		AssignedBy:          &adminID,
		Notes:               notes,
		Active:              true,
	}
	if err := s.repo.Create(a); err != nil {
		return nil, err
	}

	return s.repo.FindViewByID(a.ID)
}

func (s *service) UpdateAssignment(adminID string, id uint, active *bool, notes *string) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}

	if active == nil && notes == nil {
		return ErrNothingToUpdate
	}

	a, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if active != nil {
		a.Active = *active
	}
	if notes != nil {
		a.Notes = *notes
	}

	return s.repo.Update(a)
}

func (s *service) DeleteAssignment(adminID string, id uint) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}

	if _, err := s.repo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.repo.Delete(id)
}
