package location

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("location not found")
	ErrNameRequired = errors.New("location name is required")
)

type Service interface {
	Create(input CreateInput) (*Location, error)
	List(departmentID *uint) ([]LocationView, error)
	Get(id uint) (*Location, error)
	Update(id uint, input UpdateInput) (*Location, error)
	Delete(id uint) error
}

type service struct{ repo Repository }

func NewService(r Repository) Service {
	return &service{repo: r}
}

type CreateInput struct {
	Name          string
	DepartmentID  *uint
	Supervisor    string
	ContactNumber string
}

func (s *service) Create(in CreateInput) (*Location, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}

	loc := &Location{
		Name:         in.Name,
		DepartmentID: in.DepartmentID,
	}
	if in.Supervisor != "" {
		loc.Supervisor = &in.Supervisor
	}
	if in.ContactNumber != "" {
		loc.ContactNumber = &in.ContactNumber
	}

	if err := s.repo.Create(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *service) List(departmentID *uint) ([]LocationView, error) {
	return s.repo.FindAll(departmentID)
}

func (s *service) Get(id uint) (*Location, error) {
	loc, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return loc, nil
}

type UpdateInput struct {
	Name          *string
	DepartmentID  *uint
	Supervisor    *string
	ContactNumber *string
}

func (s *service) Update(id uint, in UpdateInput) (*Location, error) {
	loc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, ErrNameRequired
		}
		loc.Name = *in.Name
	}
	if in.DepartmentID != nil {
		loc.DepartmentID = in.DepartmentID
	}
	if in.Supervisor != nil {
		loc.Supervisor = in.Supervisor
	}
	if in.ContactNumber != nil {
		loc.ContactNumber = in.ContactNumber
	}

	if err := s.repo.Update(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *service) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
