package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skill-ladder/internal/config"
	"skill-ladder/internal/database"
	"skill-ladder/internal/pkg/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/sirupsen/logrus"
)

// DSN renders cfg as a keyword/value connection string. Values are quoted so
// passwords with spaces or quotes survive.
func DSN(cfg config.DatabaseConfig) string {
	pairs := []struct{ k, v string }{
		{"host", strings.TrimSpace(cfg.DBHost)},
		{"port", strings.TrimSpace(cfg.DBPort)},
		{"user", strings.TrimSpace(cfg.DBUser)},
		{"password", cfg.DBPassword},
		{"dbname", strings.TrimSpace(cfg.DBName)},
		{"sslmode", strings.TrimSpace(cfg.DBSSLMode)},
		{"application_name", strings.TrimSpace(cfg.ApplicationName)},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.v == "" {
			continue
		}
		parts = append(parts, p.k+"="+quote(p.v))
	}
	return strings.Join(parts, " ")
}

func quote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Connect opens a pgx pool and pings it. Query errors are traced through the
// given logger at warn level.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger logrus.FieldLogger) (database.DB, error) {
	pcfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
	pcfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   queryLogger(logger),
		LogLevel: tracelog.LogLevelWarn,
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func queryLogger(logger logrus.FieldLogger) tracelog.Logger {
	log := logging.OrDefault(logger)
	return tracelog.LoggerFunc(func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		entry := log.WithFields(logrus.Fields(data))
		switch level {
		case tracelog.LogLevelError:
			entry.Error("[DB] " + msg)
		case tracelog.LogLevelWarn:
			entry.Warn("[DB] " + msg)
		default:
			entry.Debug("[DB] " + msg)
		}
	})
}
