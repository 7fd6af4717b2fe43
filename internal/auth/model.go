package auth

import (
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold. Import validators and
// the permission matrix share this definition.
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleAssetOfficer Role = "Asset Officer"
	RoleAuditor      Role = "Auditor"
	RoleViewer       Role = "Viewer"
)

// AllRoles lists every valid role in priority order (highest first).
var AllRoles = []Role{RoleAdmin, RoleAuditor, RoleAssetOfficer, RoleViewer}

// ParseRole matches a raw string against the role set, ignoring case and
// surrounding whitespace. Spreadsheet imports rely on this.
func ParseRole(raw string) (Role, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, r := range AllRoles {
		if strings.EqualFold(cleaned, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Account statuses.
const (
	StatusUnverified = "Unverified"
	StatusVerified   = "Verified"
)

type User struct {
	ID                       string     `gorm:"primaryKey" json:"id"`
	StaffID                  string     `json:"staffId"`
	Name                     string     `json:"name"`
	Email                    string     `json:"email"`
	PersonalEmail            *string    `json:"personalEmail,omitempty"`
	Phone                    *string    `json:"phone,omitempty"`
	DepartmentID             *uint      `json:"departmentId"`
	PasswordHash             string     `json:"-"`
	MustChangePassword       bool       `json:"mustChangePassword"`
	EmailVerified            bool       `json:"emailVerified"`
	Status                   string     `json:"status"`
	VerificationToken        *string    `json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`
	ResetToken               *string    `json:"-"`
	ResetTokenExpires        *time.Time `json:"-"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`

	Roles []UserRole `gorm:"foreignKey:UserID" json:"roles"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames flattens the user's role rows.
func (u *User) RoleNames() []Role {
	roles := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Role)
	}
	return roles
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

type UserRole struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	UserID string `json:"-"`
	Role   Role   `json:"role"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
