package inspection

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/crossaudit"
)

var (
	ErrNotFound          = errors.New("inspection not found")
	ErrLocationNotFound  = errors.New("location not found")
	ErrLocationRequired  = errors.New("location_id is required")
	ErrDateRequired      = errors.New("inspection_date is required")
	ErrInvalidStatus     = errors.New("status must be Pending or Complete")
	ErrAuditorNotAllowed = errors.New("auditor is not authorized to audit this department")
)

type Service interface {
	Create(input CreateInput) (*Inspection, error)
	List() ([]InspectionView, error)
	Get(id uint) (*Inspection, error)
	Update(id uint, input UpdateInput) (*Inspection, error)
	Delete(id uint) error
}

type service struct {
	repo Repository
	gate crossaudit.Service
}

func NewService(repo Repository, gate crossaudit.Service) Service {
	return &service{repo: repo, gate: gate}
}

type CreateInput struct {
	LocationID     *uint
	InspectionDate time.Time
	Status         string
	Auditor1ID     *string
	Auditor2ID     *string
}

// checkAuditors gates every non-null auditor slot through the cross-audit
// authorization against the department owning the location. A location
// without a department accepts any auditor.
func (s *service) checkAuditors(locationID uint, auditorIDs ...*string) error {
	deptID, found, err := s.repo.LocationDepartment(locationID)
	if err != nil {
		return err
	}
	if !found {
		return ErrLocationNotFound
	}
	if deptID == nil {
		return nil
	}

	for _, auditorID := range auditorIDs {
		if auditorID == nil || *auditorID == "" {
			continue
		}
		allowed, err := s.gate.CanAuditDepartment(*auditorID, *deptID)
		if err != nil {
			if errors.Is(err, crossaudit.ErrUserNotFound) {
				return fmt.Errorf("%w: auditor %s", ErrAuditorNotAllowed, *auditorID)
			}
			return err
		}
		if !allowed {
			return fmt.Errorf("%w: auditor %s", ErrAuditorNotAllowed, *auditorID)
		}
	}
	return nil
}

func (s *service) Create(in CreateInput) (*Inspection, error) {
	if in.LocationID == nil {
		return nil, ErrLocationRequired
	}
	if in.InspectionDate.IsZero() {
		return nil, ErrDateRequired
	}

	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	if err := s.checkAuditors(*in.LocationID, in.Auditor1ID, in.Auditor2ID); err != nil {
		return nil, err
	}

	i := &Inspection{
		LocationID:     in.LocationID,
		InspectionDate: in.InspectionDate,
		Status:         status,
		Auditor1ID:     in.Auditor1ID,
		Auditor2ID:     in.Auditor2ID,
	}
	if err := s.repo.Create(i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) List() ([]InspectionView, error) {
	return s.repo.FindAll()
}

func (s *service) Get(id uint) (*Inspection, error) {
	i, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

type UpdateInput struct {
	LocationID     *uint
	InspectionDate *time.Time
	Status         *string
	Auditor1ID     *string
	Auditor2ID     *string
	ClearAuditor1  bool
	ClearAuditor2  bool
}

func (s *service) Update(id uint, in UpdateInput) (*Inspection, error) {
	i, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if in.LocationID != nil {
		i.LocationID = in.LocationID
	}
	if in.InspectionDate != nil {
		i.InspectionDate = *in.InspectionDate
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		i.Status = *in.Status
	}
	if in.ClearAuditor1 {
		i.Auditor1ID = nil
	} else if in.Auditor1ID != nil {
		i.Auditor1ID = in.Auditor1ID
	}
	if in.ClearAuditor2 {
		i.Auditor2ID = nil
	} else if in.Auditor2ID != nil {
		i.Auditor2ID = in.Auditor2ID
	}

	// The gate runs against the final state, so swapping the location
	// re-validates auditors that were already on the record.
	if i.LocationID != nil {
		if err := s.checkAuditors(*i.LocationID, i.Auditor1ID, i.Auditor2ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
