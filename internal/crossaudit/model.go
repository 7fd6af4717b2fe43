package crossaudit

import "time"

// Assignment grants every Auditor in one department the right to audit a
// target department. The grant is department-to-department, never tied to a
// named individual.
type Assignment struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AuditorDepartmentID uint      `json:"auditorDepartmentId"`
	TargetDepartmentID  uint      `json:"targetDepartmentId"`
	AssignedBy          *string   `json:"assignedBy"`
	Notes               string    `json:"notes"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (Assignment) TableName() string {
	return "cross_audit_assignments"
}

// AssignmentView is the listing shape with department and admin names
// joined in.
type AssignmentView struct {
	ID                    uint      `json:"id"`
	AuditorDepartmentID   uint      `json:"auditor_department_id"`
	TargetDepartmentID    uint      `json:"target_department_id"`
	AuditorDepartmentName string    `json:"auditor_department_name"`
	TargetDepartmentName  string    `json:"target_department_name"`
	AssignedBy            *string   `json:"assigned_by"`
	AssignedByName        *string   `json:"assigned_by_name"`
	Notes                 string    `json:"notes"`
	Active                bool      `json:"active"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// AllowedDepartment is one department a user may audit, with the grant that
// allows it.
type AllowedDepartment struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Acronym      *string `json:"acronym"`
	TotalAssets  int64   `json:"total_assets"`
	AssignmentID *uint   `json:"assignment_id,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// AllowedDepartmentsResult is the ListAllowedDepartments response. Admins
// see every department and carry no per-department grant rows.
type AllowedDepartmentsResult struct {
	IsAdmin             bool                `json:"is_admin"`
	AuditorDepartmentID *uint               `json:"auditor_department_id,omitempty"`
	AllowedDepartments  []AllowedDepartment `json:"allowed_departments"`
	Count               int                 `json:"count"`
}

// EligibleAuditor is one user allowed to be scheduled against a department.
type EligibleAuditor struct {
	ID                string  `json:"id"`
	StaffID           string  `json:"staff_id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	DepartmentID      *uint   `json:"department_id"`
	OwnDepartmentName *string `json:"own_department_name"`
}
