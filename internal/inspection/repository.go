package inspection

import (
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(i *Inspection) error
	FindAll() ([]InspectionView, error)
	FindByID(id uint) (*Inspection, error)
	Update(i *Inspection) error
	Delete(id uint) error

	// LocationDepartment resolves the department owning a location.
	// (nil, true, nil) means the location exists but has no department.
	LocationDepartment(locationID uint) (*uint, bool, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(i *Inspection) error {
	return r.db.Create(i).Error
}

func (r *repository) FindAll() ([]InspectionView, error) {
	var views []InspectionView
	err := r.db.
		Table("inspections i").
		Select(`
			i.id, i.location_id, i.inspection_date, i.status,
			i.auditor1_id, i.auditor2_id,
			l.name as location_name,
			l.department_id,
			d.name as department_name,
			a1.name as auditor1_name,
			a2.name as auditor2_name
		`).
		Joins("LEFT JOIN locations l ON i.location_id = l.id").
		Joins("LEFT JOIN departments d ON l.department_id = d.id").
		Joins("LEFT JOIN users a1 ON i.auditor1_id = a1.id").
		Joins("LEFT JOIN users a2 ON i.auditor2_id = a2.id").
		Order("i.inspection_date DESC").
		Find(&views).Error
	return views, err
}

func (r *repository) FindByID(id uint) (*Inspection, error) {
	var i Inspection
	err := r.db.First(&i, id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repository) Update(i *Inspection) error {
	return r.db.Save(i).Error
}

func (r *repository) Delete(id uint) error {
	return r.db.Delete(&Inspection{}, id).Error
}

func (r *repository) LocationDepartment(locationID uint) (*uint, bool, error) {
	var row struct{ DepartmentID *uint }
	err := r.db.Table("locations").
		Select("department_id").
		Where("id = ?", locationID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row.DepartmentID, true, nil
}
