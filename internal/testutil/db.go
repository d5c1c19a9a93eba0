// Package testutil opens throwaway in-memory databases for package tests.
package testutil

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/Wal-20/roomchat/internal/config"
	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/repositories"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := config.InitDB(config.DialectSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewStore(t *testing.T) (*repositories.Store, *gorm.DB) {
	t.Helper()
	db := NewDB(t)
	return repositories.NewStore(db, Logger()), db
}

func Logger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

// CreateUsers inserts one user per name and returns them in order.
func CreateUsers(t *testing.T, db *gorm.DB, names ...string) []models.User {
	t.Helper()
	users := make([]models.User, 0, len(names))
	for _, name := range names {
		u := models.User{Name: name}
		require.NoError(t, db.Create(&u).Error)
		users = append(users, u)
	}
	return users
}
