package sql

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepo(t *testing.T) *GormRepository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormRepository(conn)
}

func TestRepositorySQLite(t *testing.T) {
	runRepositorySuite(t, newSQLiteRepo)
}

func TestPing(t *testing.T) {
	repo := newSQLiteRepo(t)
	require.NoError(t, repo.Ping(context.Background()))

	var nilRepo *GormRepository
	require.Error(t, nilRepo.Ping(context.Background()))
}

func TestNormalizeTagNames(t *testing.T) {
	got := normalizeTagNames([]string{" go ", "", "api", "go", "   ", "Go"})
	require.Equal(t, []string{"go", "api", "Go"}, got)
}
