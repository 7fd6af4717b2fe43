package auth

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User, roles []Role) error
	FindByID(id string) (*User, error)
	FindByStaffID(staffID string) (*User, error)
	FindByEmail(email string) (*User, error)
	FindByVerificationToken(token string) (*User, error)
	FindByResetToken(token string) (*User, error)
	Update(user *User) error

	SetVerificationToken(userID, token string, expiry time.Time) error
	MarkVerified(userID string) error
	SetResetToken(userID, token string, expiry time.Time) error
	UpdatePassword(userID, hash string, mustChange bool) error
	ClearResetToken(userID string) error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

// Create inserts the user and its role rows in one transaction.
func (r *repository) Create(user *User, roles []Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		for _, role := range roles {
			if err := tx.Create(&UserRole{UserID: user.ID, Role: role}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) FindByID(id string) (*User, error) {
	var u User
	err := r.db.Preload("Roles").Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByStaffID(staffID string) (*User, error) {
	var u User
	err := r.db.Preload("Roles").Where("staff_id = ?", staffID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	err := r.db.Preload("Roles").Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Token lookups intentionally ignore expiry so callers can tell an expired
// token apart from an unknown one.
func (r *repository) FindByVerificationToken(token string) (*User, error) {
	var u User
	err := r.db.Where("verification_token = ?", token).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByResetToken(token string) (*User, error) {
	var u User
	err := r.db.Where("reset_token = ?", token).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

func (r *repository) SetVerificationToken(userID, token string, expiry time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"verification_token":         token,
		"verification_token_expires": expiry,
	}).Error
}

func (r *repository) MarkVerified(userID string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email_verified":             true,
		"status":                     StatusVerified,
		"verification_token":         nil,
		"verification_token_expires": nil,
	}).Error
}

func (r *repository) SetResetToken(userID, token string, expiry time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_token":         token,
		"reset_token_expires": expiry,
	}).Error
}

func (r *repository) UpdatePassword(userID, hash string, mustChange bool) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash":        hash,
		"must_change_password": mustChange,
	}).Error
}

func (r *repository) ClearResetToken(userID string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_token":         nil,
		"reset_token_expires": nil,
	}).Error
}
