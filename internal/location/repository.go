package location

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(loc *Location) error
	FindAll(departmentID *uint) ([]LocationView, error)
	FindByID(id uint) (*Location, error)
	Update(loc *Location) error
	Delete(id uint) error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(loc *Location) error {
	return r.db.Create(loc).Error
}

// FindAll lists locations, optionally scoped to one department. The
// supervisor join only matches when the stored value is a user id;
// free-text supervisors come back with a null supervisor_name.
func (r *repository) FindAll(departmentID *uint) ([]LocationView, error) {
	var views []LocationView

	query := r.db.
		Table("locations l").
		Select(`
			l.id, l.name, l.department_id, l.supervisor, l.contact_number,
			d.name as department_name,
			u.name as supervisor_name
		`).
		Joins("LEFT JOIN departments d ON l.department_id = d.id").
		Joins("LEFT JOIN users u ON l.supervisor = u.id")

	if departmentID != nil {
		query = query.Where("l.department_id = ?", *departmentID)
	}

	err := query.Order("l.name ASC").Find(&views).Error
	return views, err
}

func (r *repository) FindByID(id uint) (*Location, error) {
	var l Location
	err := r.db.First(&l, id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) Update(loc *Location) error {
	return r.db.Save(loc).Error
}

func (r *repository) Delete(id uint) error {
	return r.db.Delete(&Location{}, id).Error
}
