package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDialect  string `env:"DB_DIALECT" envDefault:"mysql"`
	ServiceURI string `env:"SERVICE_URI,required,notEmpty"`
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":8080"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"INFO"`

	RedisURL     string `env:"REDIS_URL"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"roomchat:events"`

	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	StoreAttempts uint          `env:"STORE_ATTEMPTS" envDefault:"3"`

	InvitationTTL           time.Duration `env:"INVITATION_TTL" envDefault:"168h"`
	InvitationSweepInterval time.Duration `env:"INVITATION_SWEEP_INTERVAL" envDefault:"1h"`

	SendBufferSize     int           `env:"SEND_BUFFER_SIZE" envDefault:"256"`
	AllowedOrigins     []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	MembershipCacheTTL time.Duration `env:"MEMBERSHIP_CACHE_TTL" envDefault:"5m"`
	SeedDemoData       bool          `env:"SEED_DEMO_DATA" envDefault:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.DBDialect {
	case DialectMySQL, DialectPostgres, DialectSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DIALECT %q", cfg.DBDialect)
	}
	if cfg.SendBufferSize < 1 {
		return Config{}, fmt.Errorf("SEND_BUFFER_SIZE must be positive, got %d", cfg.SendBufferSize)
	}
	return cfg, nil
}
