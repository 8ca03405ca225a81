package app

import (
	"context"
	"errors"
	"time"

	"skill-ladder/internal/config"
	"skill-ladder/internal/database"
	"skill-ladder/internal/database/migration"
	dbpostgres "skill-ladder/internal/database/postgres"
	"skill-ladder/internal/infrastructure/cache"
	"skill-ladder/internal/repository"
	"skill-ladder/internal/usecase"
	"skill-ladder/internal/ws"

	"github.com/sirupsen/logrus"
)

// Container owns every long-lived dependency shared by the HTTP server and
// the CLI.
type Container struct {
	Config config.Config
	Logger logrus.FieldLogger
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub

	Frameworks repository.FrameworkRepository
	Levels     repository.LevelRepository

	LevelUsecase     usecase.LevelUsecase
	FrameworkUsecase usecase.FrameworkUsecase
	MigrationUsecase usecase.LevelMigrationUsecase
}

// NewContainer connects to Postgres and Redis. Redis is optional: when it is
// unreachable the cache and the migration lock are bypassed.
func NewContainer(cfg config.Config, logger logrus.FieldLogger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Cache:      cache.NewRedis(cfg.Redis, logger),
		Hub:        ws.NewHub(logger),
		Frameworks: repository.NewPostgresFrameworkRepository(db),
		Levels:     repository.NewPostgresLevelRepository(db),
	}

	c.LevelUsecase = usecase.NewLevelUsecase(c.Frameworks, c.Levels)
	c.FrameworkUsecase = usecase.NewFrameworkUsecase(c.Frameworks, c.LevelUsecase, c.Cache, cfg.Redis.TTL, logger)
	c.MigrationUsecase = usecase.NewLevelMigrationUsecase(
		c.Frameworks,
		c.Levels,
		c.Cache,
		c.Hub,
		usecase.LevelMigrationOptions{
			Workers:       cfg.Migration.Workers,
			RatePerSecond: cfg.Migration.RatePerSecond,
			Lock:          c.Cache,
			LockTTL:       cfg.Migration.LockTTL,
		},
		logger,
	)
	return c, nil
}

// Migrate applies pending schema files from the configured directory.
func (c *Container) Migrate(ctx context.Context) error {
	if c == nil || c.DB == nil {
		return errors.New("nil container")
	}
	r := migration.Runner{Dir: c.Config.Migration.Dir, Logger: c.Logger}
	_, err := r.Run(ctx, c.DB.SQLDB())
	return err
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
