package config_test

import (
	"testing"
	"time"

	"github.com/Wal-20/roomchat/internal/config"
	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should apply defaults around the required keys", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("SERVICE_URI", "user:pass@tcp(localhost:3306)/chat")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

		cfg, err := config.Load()
		req.NoError(err)
		req.Equal(config.DialectMySQL, cfg.DBDialect)
		req.Equal(":8080", cfg.HTTPAddr)
		req.Equal(15*time.Minute, cfg.TokenTTL)
		req.Equal(168*time.Hour, cfg.InvitationTTL)
		req.Equal(uint(3), cfg.StoreAttempts)
		req.Equal(256, cfg.SendBufferSize)
		req.Equal([]string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
		req.False(cfg.SeedDemoData)
	})

	t.Run("should fail without JWT_SECRET", func(t *testing.T) {
		t.Setenv("SERVICE_URI", "file::memory:")
		t.Setenv("JWT_SECRET", "")

		_, err := config.Load()
		require.Error(t, err)
	})

	t.Run("should reject an unknown dialect", func(t *testing.T) {
		t.Setenv("SERVICE_URI", "file::memory:")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_DIALECT", "oracle")

		_, err := config.Load()
		require.ErrorContains(t, err, "DB_DIALECT")
	})
}

func TestSeedDemoData(t *testing.T) {
	t.Run("should seed once and make the first user admin everywhere", func(t *testing.T) {
		req := require.New(t)
		db := testutil.NewDB(t)

		req.NoError(config.SeedDemoData(db))
		req.NoError(config.SeedDemoData(db))

		var users, rooms, admins int64
		req.NoError(db.Model(&models.User{}).Count(&users).Error)
		req.NoError(db.Model(&models.Room{}).Count(&rooms).Error)
		req.NoError(db.Model(&models.Member{}).Where("is_admin = ?", true).Count(&admins).Error)
		req.Equal(int64(3), users)
		req.Equal(int64(3), rooms)
		req.Equal(int64(3), admins)
	})
}
