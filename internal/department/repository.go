package department

import (
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(dept *Department) error
	FindAll() ([]Department, error)
	FindByID(id uint) (*Department, error)
	FindByNameOrAcronym(value string) (*Department, error)
	FindByNameLike(value string) (*Department, error)
	Update(dept *Department) error
	Delete(id uint) error

	CreateSummaryFile(file *SummaryFile) error
	FindSummaryFiles(departmentID uint) ([]SummaryFile, error)
	FindSummaryFileByID(id uint) (*SummaryFile, error)
	DeleteSummaryFile(id uint) error

	// WipeAll removes every imported row in FK order inside one
	// transaction, clearing inspections, assignments and the users'
	// department link before locations and departments.
	WipeAll() error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(dept *Department) error {
	return r.db.Create(dept).Error
}

func (r *repository) FindAll() ([]Department, error) {
	var depts []Department
	err := r.db.Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *repository) FindByID(id uint) (*Department, error) {
	var d Department
	err := r.db.First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByNameOrAcronym does an exact case-insensitive match against the name
// or the acronym.
func (r *repository) FindByNameOrAcronym(value string) (*Department, error) {
	var d Department
	cleaned := strings.TrimSpace(value)
	err := r.db.
		Where("LOWER(name) = LOWER(?) OR LOWER(acronym) = LOWER(?)", cleaned, cleaned).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByNameLike is the fallback substring match used when no exact match
// exists. First hit by id order wins.
func (r *repository) FindByNameLike(value string) (*Department, error) {
	var d Department
	pattern := "%" + strings.TrimSpace(value) + "%"
	err := r.db.
		Where("name ILIKE ? OR acronym ILIKE ?", pattern, pattern).
		Order("id ASC").
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) Update(dept *Department) error {
	return r.db.Save(dept).Error
}

func (r *repository) Delete(id uint) error {
	return r.db.Delete(&Department{}, id).Error
}

func (r *repository) CreateSummaryFile(file *SummaryFile) error {
	return r.db.Create(file).Error
}

func (r *repository) FindSummaryFiles(departmentID uint) ([]SummaryFile, error) {
	var files []SummaryFile
	err := r.db.
		Where("department_id = ?", departmentID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

func (r *repository) FindSummaryFileByID(id uint) (*SummaryFile, error) {
	var f SummaryFile
	err := r.db.First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) DeleteSummaryFile(id uint) error {
	return r.db.Delete(&SummaryFile{}, id).Error
}

func (r *repository) WipeAll() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range wipeStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
