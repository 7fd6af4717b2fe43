package inspection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/crossaudit"
)

type mockInspRepo struct {
	inspections map[uint]*Inspection
	// location id -> owning department (nil means no department)
	locations map[uint]*uint
	nextID    uint
}

func newMockInspRepo() *mockInspRepo {
	return &mockInspRepo{
		inspections: map[uint]*Inspection{},
		locations:   map[uint]*uint{},
	}
}

func (m *mockInspRepo) Create(i *Inspection) error {
	m.nextID++
	i.ID = m.nextID
	m.inspections[i.ID] = i
	return nil
}

func (m *mockInspRepo) FindAll() ([]InspectionView, error) { return nil, nil }

func (m *mockInspRepo) FindByID(id uint) (*Inspection, error) {
	if i, ok := m.inspections[id]; ok {
		copied := *i
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInspRepo) Update(i *Inspection) error {
	m.inspections[i.ID] = i
	return nil
}

func (m *mockInspRepo) Delete(id uint) error {
	delete(m.inspections, id)
	return nil
}

func (m *mockInspRepo) LocationDepartment(locationID uint) (*uint, bool, error) {
	deptID, ok := m.locations[locationID]
	return deptID, ok, nil
}

// gateStub answers CanAuditDepartment from a fixed allow list keyed by
// auditor id. The assignment management methods are never reached here.
type gateStub struct {
	allowed map[string][]uint
}

func (g *gateStub) ListAllowedDepartments(userID string) (*crossaudit.AllowedDepartmentsResult, error) {
	return nil, nil
}

func (g *gateStub) ListEligibleAuditors(departmentID uint) ([]crossaudit.EligibleAuditor, error) {
	return nil, nil
}

func (g *gateStub) CanAuditDepartment(userID string, departmentID uint) (bool, error) {
	for _, d := range g.allowed[userID] {
		if d == departmentID {
			return true, nil
		}
	}
	return false, nil
}

func (g *gateStub) ListAssignments(departmentID *uint) ([]crossaudit.AssignmentView, error) {
	return nil, nil
}

func (g *gateStub) CreateAssignment(adminID string, auditorDeptID, targetDeptID uint, notes string) (*crossaudit.AssignmentView, error) {
	return nil, nil
}

func (g *gateStub) UpdateAssignment(adminID string, id uint, active *bool, notes *string) error {
	return nil
}

func (g *gateStub) DeleteAssignment(adminID string, id uint) error { return nil }

func ptr[T any](v T) *T { return &v }

func newTestInspectionService(repo *mockInspRepo, allowed map[string][]uint) Service {
	return NewService(repo, &gateStub{allowed: allowed})
}

func TestCreateInspection(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("schedules an authorized auditor", func(t *testing.T) {
		repo := newMockInspRepo()
		repo.locations[1] = ptr(uint(7))
		svc := newTestInspectionService(repo, map[string][]uint{"ali_1234": {7}})

		i, err := svc.Create(CreateInput{
			LocationID:     ptr(uint(1)),
			InspectionDate: date,
			Auditor1ID:     ptr("ali_1234"),
		})
		require.NoError(t, err)

		assert.Equal(t, StatusPending, i.Status)
		assert.NotZero(t, i.ID)
	})

	t.Run("rejects an unauthorized auditor in either slot", func(t *testing.T) {
		repo := newMockInspRepo()
		repo.locations[1] = ptr(uint(7))
		svc := newTestInspectionService(repo, map[string][]uint{"ali_1234": {7}})

		_, err := svc.Create(CreateInput{
			LocationID:     ptr(uint(1)),
			InspectionDate: date,
			Auditor1ID:     ptr("ali_1234"),
			Auditor2ID:     ptr("siti_5678"),
		})
		require.ErrorIs(t, err, ErrAuditorNotAllowed)
		assert.Contains(t, err.Error(), "siti_5678")
	})

	t.Run("a location without a department accepts anyone", func(t *testing.T) {
		repo := newMockInspRepo()
		repo.locations[1] = nil
		svc := newTestInspectionService(repo, nil)

		_, err := svc.Create(CreateInput{
			LocationID:     ptr(uint(1)),
			InspectionDate: date,
			Auditor1ID:     ptr("anyone_0001"),
		})
		assert.NoError(t, err)
	})

	t.Run("required fields", func(t *testing.T) {
		svc := newTestInspectionService(newMockInspRepo(), nil)

		_, err := svc.Create(CreateInput{InspectionDate: date})
		assert.ErrorIs(t, err, ErrLocationRequired)

		_, err = svc.Create(CreateInput{LocationID: ptr(uint(1))})
		assert.ErrorIs(t, err, ErrDateRequired)
	})

	t.Run("unknown location and bad status", func(t *testing.T) {
		repo := newMockInspRepo()
		repo.locations[1] = nil
		svc := newTestInspectionService(repo, nil)

		_, err := svc.Create(CreateInput{LocationID: ptr(uint(99)), InspectionDate: date})
		assert.ErrorIs(t, err, ErrLocationNotFound)

		_, err = svc.Create(CreateInput{LocationID: ptr(uint(1)), InspectionDate: date, Status: "Done"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestUpdateInspection(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	seed := func(allowed map[string][]uint) (*mockInspRepo, Service, *Inspection) {
		repo := newMockInspRepo()
		repo.locations[1] = ptr(uint(7))
		repo.locations[2] = ptr(uint(8))
		svc := newTestInspectionService(repo, allowed)

		i, err := svc.Create(CreateInput{
			LocationID:     ptr(uint(1)),
			InspectionDate: date,
			Auditor1ID:     ptr("ali_1234"),
		})
		if err != nil {
			panic(err)
		}
		return repo, svc, i
	}

	t.Run("marks the inspection complete", func(t *testing.T) {
		_, svc, i := seed(map[string][]uint{"ali_1234": {7}})

		updated, err := svc.Update(i.ID, UpdateInput{Status: ptr(StatusComplete)})
		require.NoError(t, err)
		assert.Equal(t, StatusComplete, updated.Status)
	})

	t.Run("moving the location re-validates existing auditors", func(t *testing.T) {
		_, svc, i := seed(map[string][]uint{"ali_1234": {7}})

		_, err := svc.Update(i.ID, UpdateInput{LocationID: ptr(uint(2))})
		assert.ErrorIs(t, err, ErrAuditorNotAllowed)
	})

	t.Run("clearing an auditor slot", func(t *testing.T) {
		_, svc, i := seed(map[string][]uint{"ali_1234": {7}})

		updated, err := svc.Update(i.ID, UpdateInput{ClearAuditor1: true})
		require.NoError(t, err)
		assert.Nil(t, updated.Auditor1ID)
	})

	t.Run("unknown inspection", func(t *testing.T) {
		svc := newTestInspectionService(newMockInspRepo(), nil)
		_, err := svc.Update(99, UpdateInput{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteInspection(t *testing.T) {
	repo := newMockInspRepo()
	repo.locations[1] = nil
	svc := newTestInspectionService(repo, nil)

	i, err := svc.Create(CreateInput{
		LocationID:     ptr(uint(1)),
		InspectionDate: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(i.ID))
	assert.ErrorIs(t, svc.Delete(i.ID), ErrNotFound)
}
