package sql

import (
	"context"
	"fmt"
	"portfolio/internal/entity/db"
	"strings"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates or updates every table the repository uses.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.SetupJoinTable(&db.Project{}, "Tags", &db.ProjectTag{}); err != nil {
		return fmt.Errorf("setup project_tags join table: %w", err)
	}
	return conn.AutoMigrate(
		&db.User{},
		&db.Project{},
		&db.Tag{},
		&db.ProjectTag{},
		&db.Screenshot{},
	)
}

// Ping checks that the underlying connection is usable.
func (r *GormRepository) Ping(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) dialect() string {
	if r == nil || r.db == nil || r.db.Dialector == nil {
		return ""
	}
	return strings.ToLower(r.db.Dialector.Name())
}
