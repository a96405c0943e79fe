package model

import (
	"context"
	"errors"
	"fmt"
	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/entity/db"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedAdmin ensures the configured admin account exists. It checks by email
// and only inserts when absent, so running it repeatedly is safe. An empty
// SEED_ADMIN_PASSWORD disables seeding.
func SeedAdmin(ctx context.Context, repo Repository, cfg config.Config) (bool, error) {
	if repo == nil {
		return false, nil
	}
	password := cfg.SeedAdminPassword
	if strings.TrimSpace(password) == "" {
		logrus.Debug("admin seed skipped: SEED_ADMIN_PASSWORD not set")
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	username := strings.TrimSpace(cfg.SeedAdminUsername)
	if email == "" || username == "" {
		return false, errors.New("admin seed requires SEED_ADMIN_EMAIL and SEED_ADMIN_USERNAME")
	}

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         db.UserRoleAdmin,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": admin.ID,
		"email":   admin.Email,
	}).Info("admin account seeded")
	return true, nil
}
