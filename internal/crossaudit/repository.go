package crossaudit

import (
	"errors"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/auth"
)

type Repository interface {
	UserHasRole(userID string, role auth.Role) (bool, error)
	// UserDepartment returns (departmentID, userExists, error). A user with
	// no department comes back as (nil, true, nil).
	UserDepartment(userID string) (*uint, bool, error)

	ListAllDepartments() ([]AllowedDepartment, error)
	ListTargetDepartments(auditorDeptID uint) ([]AllowedDepartment, error)
	ListEligibleAuditors(departmentID uint) ([]EligibleAuditor, error)
	ActiveAssignmentExists(auditorDeptID, targetDeptID uint) (bool, error)
	PairExists(auditorDeptID, targetDeptID uint) (bool, error)

	Create(a *Assignment) error
	FindByID(id uint) (*Assignment, error)
	FindViewByID(id uint) (*AssignmentView, error)
	Update(a *Assignment) error
	Delete(id uint) error
	List(departmentID *uint) ([]AssignmentView, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) UserHasRole(userID string, role auth.Role) (bool, error) {
	var count int64
	err := r.db.Table("user_roles").
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) UserDepartment(userID string) (*uint, bool, error) {
	var row struct{ DepartmentID *uint }
	err := r.db.Table("users").
		Select("department_id").
		Where("id = ?", userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row.DepartmentID, true, nil
}

func (r *repository) ListAllDepartments() ([]AllowedDepartment, error) {
	var depts []AllowedDepartment
	err := r.db.Table("departments").
		Select("id, name, acronym, total_assets").
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

// ListTargetDepartments returns the departments an auditor department holds
// an active grant over, excluding the auditor department itself.
func (r *repository) ListTargetDepartments(auditorDeptID uint) ([]AllowedDepartment, error) {
	var depts []AllowedDepartment
	err := r.db.
		Table("departments d").
		Select(`DISTINCT
			d.id, d.name, d.acronym, d.total_assets,
			caa.id as assignment_id, caa.notes
		`).
		Joins(`INNER JOIN cross_audit_assignments caa
			ON d.id = caa.target_department_id
			AND caa.auditor_department_id = ?
			AND caa.active = ?`, auditorDeptID, true).
		Where("d.id != ?", auditorDeptID).
		Order("d.name ASC").
		Find(&depts).Error
	return depts, err
}

// ListEligibleAuditors returns Auditor-role users who may be scheduled
// against the department: admins always, otherwise users whose own
// department holds an active grant over it and is not the department itself.
func (r *repository) ListEligibleAuditors(departmentID uint) ([]EligibleAuditor, error) {
	var auditors []EligibleAuditor
	err := r.db.
		Table("users u").
		Select(`DISTINCT
			u.id, u.staff_id, u.name, u.email, u.department_id,
			d.name as own_department_name
		`).
		Joins("INNER JOIN user_roles ur ON u.id = ur.user_id AND ur.role = ?", auth.RoleAuditor).
		Joins("LEFT JOIN departments d ON u.department_id = d.id").
		Where(`
			EXISTS (
				SELECT 1 FROM user_roles ar
				WHERE ar.user_id = u.id AND ar.role = ?
			)
			OR (
				u.department_id IS NOT NULL
				AND u.department_id != ?
				AND EXISTS (
					SELECT 1 FROM cross_audit_assignments caa
					WHERE caa.auditor_department_id = u.department_id
					AND caa.target_department_id = ?
					AND caa.active = ?
				)
			)`, auth.RoleAdmin, departmentID, departmentID, true).
		Order("u.name ASC").
		Find(&auditors).Error
	return auditors, err
}

func (r *repository) ActiveAssignmentExists(auditorDeptID, targetDeptID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Assignment{}).
		Where("auditor_department_id = ? AND target_department_id = ? AND active = ?",
			auditorDeptID, targetDeptID, true).
		Count(&count).Error
	return count > 0, err
}

// PairExists ignores the active flag: a deactivated pair still blocks a
// duplicate create.
func (r *repository) PairExists(auditorDeptID, targetDeptID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Assignment{}).
		Where("auditor_department_id = ? AND target_department_id = ?",
			auditorDeptID, targetDeptID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Create(a *Assignment) error {
	return r.db.Create(a).Error
}

func (r *repository) FindByID(id uint) (*Assignment, error) {
	var a Assignment
	err := r.db.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const assignmentViewSelect = `
	caa.id, caa.auditor_department_id, caa.target_department_id,
	caa.assigned_by, caa.notes, caa.active, caa.created_at, caa.updated_at,
	ad.name as auditor_department_name,
	td.name as target_department_name,
	admin.name as assigned_by_name
`

func (r *repository) FindViewByID(id uint) (*AssignmentView, error) {
	var view AssignmentView
	err := r.db.
		Table("cross_audit_assignments caa").
		Select(assignmentViewSelect).
		Joins("JOIN departments ad ON caa.auditor_department_id = ad.id").
		Joins("JOIN departments td ON caa.target_department_id = td.id").
		Joins("LEFT JOIN users admin ON caa.assigned_by = admin.id").
		Where("caa.id = ?", id).
		First(&view).Error
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *repository) Update(a *Assignment) error {
	return r.db.Save(a).Error
}

func (r *repository) Delete(id uint) error {
	return r.db.Delete(&Assignment{}, id).Error
}

func (r *repository) List(departmentID *uint) ([]AssignmentView, error) {
	var views []AssignmentView

	query := r.db.
		Table("cross_audit_assignments caa").
		Select(assignmentViewSelect).
		Joins("JOIN departments ad ON caa.auditor_department_id = ad.id").
		Joins("JOIN departments td ON caa.target_department_id = td.id").
		Joins("LEFT JOIN users admin ON caa.assigned_by = admin.id")

	if departmentID != nil {
		query = query.Where("caa.auditor_department_id = ? OR caa.target_department_id = ?",
			*departmentID, *departmentID)
	}

	err := query.Order("caa.created_at DESC").Find(&views).Error
	return views, err
}
