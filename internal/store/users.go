package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// CreateUser inserts a new account. A duplicate email is a conflict, checked
// inside the insert transaction so two concurrent registrations cannot both
// pass the lookup.
func (s *gormStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.User
		err := tx.Where("email = ?", user.Email).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email %s: %w", user.Email, err)
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// UserByEmail loads an account by its unique email.
func (s *gormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", email, err)
	}
	return &user, nil
}

// UserByID loads an account by id.
func (s *gormStore) UserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

// EnsureAdmin creates the default administrator account when no admin exists
// yet. Called once at startup.
func (s *gormStore) EnsureAdmin(ctx context.Context, email, passwordHash, name string) error {
	var admin model.User
	err := s.db.WithContext(ctx).Where("is_admin = ?", true).First(&admin).Error
	if err == nil {
		log.Printf("admin already exists: email=%s", admin.Email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin: %w", err)
	}

	admin = model.User{
		Email:    email,
		Password: passwordHash,
		Name:     name,
		IsAdmin:  true,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}
	log.Printf("default admin created: email=%s", email)
	return nil
}
