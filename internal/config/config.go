package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Migration MigrationConfig
}

type AppConfig struct {
	AppName     string `env:"APP_NAME,required"`
	Environment string `env:"APP_ENV,required"`
	HTTPPort    string `env:"HTTP_PORT,required"`
}

type DatabaseConfig struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	ApplicationName string `env:"DB_APPLICATION_NAME" envDefault:"skill-ladder"`

	ConnectTimeout        time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	PoolMaxConns          int32         `env:"DB_POOL_MAX_CONNS"`
	PoolMinConns          int32         `env:"DB_POOL_MIN_CONNS"`
	PoolMaxConnLifetime   time.Duration `env:"DB_POOL_MAX_CONN_LIFETIME"`
	PoolMaxConnIdleTime   time.Duration `env:"DB_POOL_MAX_CONN_IDLE_TIME"`
	PoolHealthCheckPeriod time.Duration `env:"DB_POOL_HEALTH_CHECK_PERIOD"`
}

type RedisConfig struct {
	Host     string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string        `env:"REDIS_PORT" envDefault:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type MigrationConfig struct {
	Dir           string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	Workers       int           `env:"LEVEL_MIGRATION_WORKERS" envDefault:"4"`
	RatePerSecond int           `env:"LEVEL_MIGRATION_RPS" envDefault:"0"`
	LockTTL       time.Duration `env:"LEVEL_MIGRATION_LOCK_TTL" envDefault:"15m"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads .env files when present and then the process environment.
func Load() (Config, error) {
	if err := loadDotEnv(".env", ".env.local"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		if missing := missingVars(err); len(missing) > 0 {
			return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.App.HTTPPort = strings.TrimSpace(cfg.App.HTTPPort)
	if cfg.Migration.Workers <= 0 {
		cfg.Migration.Workers = 1
	}
	return cfg, nil
}

// loadDotEnv loads the files that exist. A later file wins over an earlier
// one and the process environment wins over both, since godotenv.Load never
// replaces a variable that is already set.
func loadDotEnv(files ...string) error {
	for i := len(files) - 1; i >= 0; i-- {
		if _, err := os.Stat(files[i]); err != nil {
			continue
		}
		if err := godotenv.Load(files[i]); err != nil {
			return fmt.Errorf("load env file %s: %w", files[i], err)
		}
	}
	return nil
}

func missingVars(err error) []string {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return nil
	}
	var out []string
	for _, e := range agg.Errors {
		var notSet env.EnvVarIsNotSetError
		if errors.As(e, &notSet) {
			out = append(out, notSet.Key)
		}
	}
	return out
}
