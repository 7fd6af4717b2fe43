package user

import (
	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/auth"
)

type Repository interface {
	FindAll() ([]auth.User, error)
	FindByID(id string) (*auth.User, error)
	FindByStaffID(staffID string) (*auth.User, error)
	StaffIDExists(staffID string) (bool, error)
	EmailExists(email string) (bool, error)
	Create(user *auth.User, roles []auth.Role) error
	Update(id string, updates map[string]interface{}) error
	UpdatePassword(id, passwordHash string) error
	ReplaceRoles(userID string, roles []auth.Role) error
	Delete(id string) error
	TransferStaffID(oldUserID, newStaffID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll() ([]auth.User, error) {
	var users []auth.User
	err := r.db.Preload("Roles").Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *repository) FindByID(id string) (*auth.User, error) {
	var user auth.User
	err := r.db.Preload("Roles").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByStaffID accepts either the user id or the staff number. The two
// usually coincide for admin-created accounts but not for imported ones.
func (r *repository) FindByStaffID(staffID string) (*auth.User, error) {
	var user auth.User
	err := r.db.Preload("Roles").
		Where("id = ? OR staff_id = ?", staffID, staffID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) StaffIDExists(staffID string) (bool, error) {
	var count int64
	err := r.db.Model(&auth.User{}).Where("staff_id = ?", staffID).Count(&count).Error
	return count > 0, err
}

func (r *repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&auth.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *repository) Create(user *auth.User, roles []auth.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		for _, role := range roles {
			ur := auth.UserRole{UserID: user.ID, Role: role}
			if err := tx.Create(&ur).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&auth.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) UpdatePassword(id, passwordHash string) error {
	return r.db.Model(&auth.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash":        passwordHash,
		"must_change_password": false,
	}).Error
}

func (r *repository) ReplaceRoles(userID string, roles []auth.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&auth.UserRole{}).Error; err != nil {
			return err
		}
		for _, role := range roles {
			ur := auth.UserRole{UserID: userID, Role: role}
			if err := tx.Create(&ur).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&auth.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&auth.User{}).Error
	})
}

// TransferStaffID rewrites every table carrying the old user id. The user id
// and staff number move together so schedule history stays attached.
func (r *repository) TransferStaffID(oldUserID, newStaffID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Table("users").Where("id = ?", oldUserID).Updates(map[string]interface{}{
			"id":       newStaffID,
			"staff_id": newStaffID,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Table("user_roles").Where("user_id = ?", oldUserID).
			Update("user_id", newStaffID).Error; err != nil {
			return err
		}
		if err := tx.Table("inspections").Where("auditor1_id = ?", oldUserID).
			Update("auditor1_id", newStaffID).Error; err != nil {
			return err
		}
		return tx.Table("inspections").Where("auditor2_id = ?", oldUserID).
			Update("auditor2_id", newStaffID).Error
	})
}
