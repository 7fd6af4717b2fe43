package auth

// Permission is the fixed capability matrix attached to a role. It is served
// to the frontend so navigation can be guarded client-side. It is advisory
// only. Every privileged handler re-checks the caller's roles against the
// database before mutating anything.
type Permission struct {
	CanViewDashboard          bool `json:"canViewDashboard"`
	CanViewInspectionStatus   bool `json:"canViewInspectionStatus"`
	CanToggleInspectionStatus bool `json:"canToggleInspectionStatus"`
	CanViewSchedule           bool `json:"canViewSchedule"`
	CanManageSchedule         bool `json:"canManageSchedule"`
	CanViewDepartments        bool `json:"canViewDepartments"`
	CanManageDepartments      bool `json:"canManageDepartments"`
	CanViewLocations          bool `json:"canViewLocations"`
	CanManageLocations        bool `json:"canManageLocations"`
	CanViewUsers              bool `json:"canViewUsers"`
	CanManageUsers            bool `json:"canManageUsers"`
	CanViewAssetInspection    bool `json:"canViewAssetInspection"`
	CanUploadAssets           bool `json:"canUploadAssets"`
	DepartmentRestricted      bool `json:"departmentRestricted"`
}

// PermissionsFor returns the matrix row for a single role. Unknown roles get
// dashboard-only access.
func PermissionsFor(role Role) Permission {
	switch role {
	case RoleAdmin:
		return Permission{
			CanViewDashboard:          true,
			CanViewInspectionStatus:   true,
			CanToggleInspectionStatus: true,
			CanViewSchedule:           true,
			CanManageSchedule:         true,
			CanViewDepartments:        true,
			CanManageDepartments:      true,
			CanViewLocations:          true,
			CanManageLocations:        true,
			CanViewUsers:              true,
			CanManageUsers:            true,
			CanViewAssetInspection:    true,
			CanUploadAssets:           true,
		}
	case RoleAuditor:
		return Permission{
			CanViewDashboard:  true,
			CanViewSchedule:   true,
			CanManageSchedule: true,
		}
	case RoleAssetOfficer:
		return Permission{
			CanViewDashboard:          true,
			CanViewInspectionStatus:   true,
			CanToggleInspectionStatus: true,
			CanViewLocations:          true,
			CanManageLocations:        true,
			DepartmentRestricted:      true,
		}
	case RoleViewer:
		return Permission{
			CanViewDashboard: true,
		}
	default:
		return Permission{
			CanViewDashboard: true,
		}
	}
}

// PermissionKey names a single Permission field for HasPermission lookups.
type PermissionKey string

const (
	PermViewDashboard          PermissionKey = "canViewDashboard"
	PermViewInspectionStatus   PermissionKey = "canViewInspectionStatus"
	PermToggleInspectionStatus PermissionKey = "canToggleInspectionStatus"
	PermViewSchedule           PermissionKey = "canViewSchedule"
	PermManageSchedule         PermissionKey = "canManageSchedule"
	PermViewDepartments        PermissionKey = "canViewDepartments"
	PermManageDepartments      PermissionKey = "canManageDepartments"
	PermViewLocations          PermissionKey = "canViewLocations"
	PermManageLocations        PermissionKey = "canManageLocations"
	PermViewUsers              PermissionKey = "canViewUsers"
	PermManageUsers            PermissionKey = "canManageUsers"
	PermViewAssetInspection    PermissionKey = "canViewAssetInspection"
	PermUploadAssets           PermissionKey = "canUploadAssets"
)

func (p Permission) has(key PermissionKey) bool {
	switch key {
	case PermViewDashboard:
		return p.CanViewDashboard
	case PermViewInspectionStatus:
		return p.CanViewInspectionStatus
	case PermToggleInspectionStatus:
		return p.CanToggleInspectionStatus
	case PermViewSchedule:
		return p.CanViewSchedule
	case PermManageSchedule:
		return p.CanManageSchedule
	case PermViewDepartments:
		return p.CanViewDepartments
	case PermManageDepartments:
		return p.CanManageDepartments
	case PermViewLocations:
		return p.CanViewLocations
	case PermManageLocations:
		return p.CanManageLocations
	case PermViewUsers:
		return p.CanViewUsers
	case PermManageUsers:
		return p.CanManageUsers
	case PermViewAssetInspection:
		return p.CanViewAssetInspection
	case PermUploadAssets:
		return p.CanUploadAssets
	default:
		return false
	}
}

// HasPermission reports whether any of the user's roles grants the key.
func HasPermission(roles []Role, key PermissionKey) bool {
	for _, role := range roles {
		if PermissionsFor(role).has(key) {
			return true
		}
	}
	return false
}

// PrimaryRole picks the highest-priority role (Admin > Auditor >
// Asset Officer > Viewer). Users with no roles default to Viewer.
func PrimaryRole(roles []Role) Role {
	for _, want := range AllRoles {
		for _, r := range roles {
			if r == want {
				return want
			}
		}
	}
	return RoleViewer
}

// IsDepartmentRestricted reports whether the user's visibility is limited to
// their own department. Admins never are. Asset Officers always are, even
// when the role is held in combination with others.
func IsDepartmentRestricted(roles []Role) bool {
	for _, r := range roles {
		if r == RoleAdmin {
			return false
		}
	}
	for _, r := range roles {
		if r == RoleAssetOfficer {
			return true
		}
	}
	return PermissionsFor(PrimaryRole(roles)).DepartmentRestricted
}

// UserPermissions flattens a role set into the primary role's matrix row.
func UserPermissions(roles []Role) Permission {
	return PermissionsFor(PrimaryRole(roles))
}
