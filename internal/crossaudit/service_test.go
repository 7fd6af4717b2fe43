package crossaudit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/auth"
)

// mockRepo is an in-memory Repository for service tests.
type mockRepo struct {
	roles       map[string][]auth.Role
	departments map[string]*uint // user id -> own department, missing key = unknown user
	allDepts    []AllowedDepartment
	assignments []*Assignment
	nextID      uint
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		roles:       map[string][]auth.Role{},
		departments: map[string]*uint{},
		nextID:      1,
	}
}

func (m *mockRepo) addUser(id string, dept *uint, roles ...auth.Role) {
	m.departments[id] = dept
	m.roles[id] = roles
}

func (m *mockRepo) addAssignment(auditorDept, targetDept uint, active bool) *Assignment {
	a := &Assignment{
		ID:                  m.nextID,
		AuditorDepartmentID: auditorDept,
		TargetDepartmentID:  targetDept,
		Active:              active,
	}
	m.nextID++
	m.assignments = append(m.assignments, a)
	return a
}

func (m *mockRepo) UserHasRole(userID string, role auth.Role) (bool, error) {
	for _, r := range m.roles[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) UserDepartment(userID string) (*uint, bool, error) {
	dept, ok := m.departments[userID]
	return dept, ok, nil
}

func (m *mockRepo) ListAllDepartments() ([]AllowedDepartment, error) {
	return m.allDepts, nil
}

func (m *mockRepo) ListTargetDepartments(auditorDeptID uint) ([]AllowedDepartment, error) {
	var out []AllowedDepartment
	for _, a := range m.assignments {
		if a.AuditorDepartmentID == auditorDeptID && a.Active && a.TargetDepartmentID != auditorDeptID {
			out = append(out, AllowedDepartment{ID: a.TargetDepartmentID})
		}
	}
	return out, nil
}

func (m *mockRepo) ListEligibleAuditors(departmentID uint) ([]EligibleAuditor, error) {
	return nil, nil
}

func (m *mockRepo) ActiveAssignmentExists(auditorDeptID, targetDeptID uint) (bool, error) {
	for _, a := range m.assignments {
		if a.AuditorDepartmentID == auditorDeptID && a.TargetDepartmentID == targetDeptID && a.Active {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) PairExists(auditorDeptID, targetDeptID uint) (bool, error) {
	for _, a := range m.assignments {
		if a.AuditorDepartmentID == auditorDeptID && a.TargetDepartmentID == targetDeptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Create(a *Assignment) error {
	a.ID = m.nextID
	m.nextID++
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *mockRepo) FindByID(id uint) (*Assignment, error) {
	for _, a := range m.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepo) FindViewByID(id uint) (*AssignmentView, error) {
	a, err := m.FindByID(id)
	if err != nil {
		return nil, err
	}
	return &AssignmentView{
		ID:                  a.ID,
		AuditorDepartmentID: a.AuditorDepartmentID,
		TargetDepartmentID:  a.TargetDepartmentID,
		Notes:               a.Notes,
		Active:              a.Active,
	}, nil
}

func (m *mockRepo) Update(a *Assignment) error {
	for i, existing := range m.assignments {
		if existing.ID == a.ID {
			m.assignments[i] = a
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockRepo) Delete(id uint) error {
	for i, a := range m.assignments {
		if a.ID == id {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRepo) List(departmentID *uint) ([]AssignmentView, error) {
	var out []AssignmentView
	for _, a := range m.assignments {
		if departmentID != nil &&
			a.AuditorDepartmentID != *departmentID && a.TargetDepartmentID != *departmentID {
			continue
		}
		out = append(out, AssignmentView{
			ID:                  a.ID,
			AuditorDepartmentID: a.AuditorDepartmentID,
			TargetDepartmentID:  a.TargetDepartmentID,
			Active:              a.Active,
		})
	}
	return out, nil
}

func deptPtr(id uint) *uint { return &id }

func TestCanAuditDepartment(t *testing.T) {
	repo := newMockRepo()
	repo.addUser("1001", nil, auth.RoleAdmin)
	repo.addUser("2002", deptPtr(1), auth.RoleAuditor)
	repo.addUser("3003", nil, auth.RoleAuditor)
	repo.addAssignment(1, 2, true)
	repo.addAssignment(1, 3, false)

	svc := NewService(repo)

	t.Run("admin always allowed", func(t *testing.T) {
		ok, err := svc.CanAuditDepartment("1001", 5)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("own department always denied", func(t *testing.T) {
		ok, err := svc.CanAuditDepartment("2002", 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("active grant allows", func(t *testing.T) {
		ok, err := svc.CanAuditDepartment("2002", 2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("inactive grant denies", func(t *testing.T) {
		ok, err := svc.CanAuditDepartment("2002", 3)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("no grant denies", func(t *testing.T) {
		ok, err := svc.CanAuditDepartment("2002", 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("user without department denied", func(t *testing.T) {
		ok, err := svc.CanAuditDepartment("3003", 2)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user errors", func(t *testing.T) {
		_, err := svc.CanAuditDepartment("9999", 2)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestListAllowedDepartments(t *testing.T) {
	repo := newMockRepo()
	repo.allDepts = []AllowedDepartment{{ID: 1}, {ID: 2}, {ID: 3}}
	repo.addUser("1001", deptPtr(1), auth.RoleAdmin)
	repo.addUser("2002", deptPtr(1), auth.RoleAuditor)
	repo.addUser("3003", nil, auth.RoleAuditor)
	repo.addAssignment(1, 2, true)
	repo.addAssignment(1, 3, false)

	svc := NewService(repo)

	t.Run("admin sees all departments", func(t *testing.T) {
		result, err := svc.ListAllowedDepartments("1001")
		require.NoError(t, err)
		assert.True(t, result.IsAdmin)
		assert.Len(t, result.AllowedDepartments, 3)
		assert.Equal(t, 3, result.Count)
	})

	t.Run("auditor sees active targets only", func(t *testing.T) {
		result, err := svc.ListAllowedDepartments("2002")
		require.NoError(t, err)
		assert.False(t, result.IsAdmin)
		require.Len(t, result.AllowedDepartments, 1)
		assert.Equal(t, uint(2), result.AllowedDepartments[0].ID)
	})

	t.Run("user without department sees nothing", func(t *testing.T) {
		result, err := svc.ListAllowedDepartments("3003")
		require.NoError(t, err)
		assert.Empty(t, result.AllowedDepartments)
	})

	t.Run("unknown user errors", func(t *testing.T) {
		_, err := svc.ListAllowedDepartments("9999")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestCreateAssignment(t *testing.T) {
	setup := func() (*mockRepo, Service) {
		repo := newMockRepo()
		repo.addUser("1001", nil, auth.RoleAdmin)
		repo.addUser("2002", deptPtr(1), auth.RoleAuditor)
		return repo, NewService(repo)
	}

	t.Run("success", func(t *testing.T) {
		_, svc := setup()
		view, err := svc.CreateAssignment("1001", 1, 2, "quarterly")
		require.NoError(t, err)
		assert.Equal(t, uint(1), view.AuditorDepartmentID)
		assert.Equal(t, uint(2), view.TargetDepartmentID)
		assert.True(t, view.Active)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		_, svc := setup()
		_, err := svc.CreateAssignment("2002", 1, 2, "")
		assert.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("missing departments rejected", func(t *testing.T) {
		_, svc := setup()
		_, err := svc.CreateAssignment("1001", 0, 2, "")
		assert.ErrorIs(t, err, ErrMissingDepartments)
	})

	t.Run("self audit rejected", func(t *testing.T) {
		_, svc := setup()
		_, err := svc.CreateAssignment("1001", 2, 2, "")
		assert.ErrorIs(t, err, ErrSelfAudit)
	})

	t.Run("duplicate pair rejected even when inactive", func(t *testing.T) {
		repo, svc := setup()
		repo.addAssignment(1, 2, false)
		_, err := svc.CreateAssignment("1001", 1, 2, "")
		assert.ErrorIs(t, err, ErrDuplicatePair)
	})

	t.Run("reverse pair allowed", func(t *testing.T) {
		repo, svc := setup()
		repo.addAssignment(1, 2, true)
		_, err := svc.CreateAssignment("1001", 2, 1, "")
		assert.NoError(t, err)
	})
}

func TestUpdateAssignment(t *testing.T) {
	repo := newMockRepo()
	repo.addUser("1001", nil, auth.RoleAdmin)
	repo.addUser("2002", deptPtr(1), auth.RoleAuditor)
	a := repo.addAssignment(1, 2, true)

	svc := NewService(repo)

	t.Run("nothing to update rejected", func(t *testing.T) {
		err := svc.UpdateAssignment("1001", a.ID, nil, nil)
		assert.ErrorIs(t, err, ErrNothingToUpdate)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		active := false
		err := svc.UpdateAssignment("2002", a.ID, &active, nil)
		assert.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("missing assignment not found", func(t *testing.T) {
		active := false
		err := svc.UpdateAssignment("1001", 999, &active, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("toggle active and replace notes", func(t *testing.T) {
		active := false
		notes := "rotated out"
		err := svc.UpdateAssignment("1001", a.ID, &active, &notes)
		require.NoError(t, err)

		updated, err := repo.FindByID(a.ID)
		require.NoError(t, err)
		assert.False(t, updated.Active)
		assert.Equal(t, "rotated out", updated.Notes)
	})
}

func TestDeleteAssignment(t *testing.T) {
	repo := newMockRepo()
	repo.addUser("1001", nil, auth.RoleAdmin)
	repo.addUser("2002", deptPtr(1), auth.RoleAuditor)
	a := repo.addAssignment(1, 2, true)

	svc := NewService(repo)

	t.Run("non-admin rejected", func(t *testing.T) {
		err := svc.DeleteAssignment("2002", a.ID)
		assert.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("missing assignment not found", func(t *testing.T) {
		err := svc.DeleteAssignment("1001", 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("hard delete", func(t *testing.T) {
		err := svc.DeleteAssignment("1001", a.ID)
		require.NoError(t, err)

		_, err = repo.FindByID(a.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
