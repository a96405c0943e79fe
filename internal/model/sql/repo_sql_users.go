package sql

import (
	"context"
	"fmt"
	"portfolio/internal/entity/db"
	"strings"
)

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *db.User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByEmail loads a user by email.
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is empty")
	}

	var user db.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(trimmed)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether the email or the username is already taken.
func (r *GormRepository) UserExists(ctx context.Context, email, username string) (bool, bool, error) {
	if r == nil || r.db == nil {
		return false, false, fmt.Errorf("repository not initialised")
	}

	var emailCount int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&emailCount).Error; err != nil {
		return false, false, err
	}

	var usernameCount int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&usernameCount).Error; err != nil {
		return false, false, err
	}

	return emailCount > 0, usernameCount > 0, nil
}
