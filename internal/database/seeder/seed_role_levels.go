package seeder

import (
	"context"
	"errors"
	"fmt"

	"skill-ladder/internal/database"
	"skill-ladder/internal/usecase"
)

// LevelSeeder is the seed-levels migration operation.
type LevelSeeder interface {
	SeedRoleLevels(ctx context.Context) (usecase.BatchResult, error)
}

// RoleLevelsSeeder gives every role without a registry the default levels of
// its type by running the seed-levels migration, so the CLI and the migration
// endpoint write role_levels through the same repository.
type RoleLevelsSeeder struct {
	Levels LevelSeeder
}

func (RoleLevelsSeeder) Name() string { return "role_levels" }

func (s RoleLevelsSeeder) Run(ctx context.Context, db database.DB) error {
	if s.Levels == nil {
		return errors.New("no level seeder")
	}
	if err := EnsureTableColumns(ctx, db, "role_levels", "role_id", "key", "label", "description", "order_index"); err != nil {
		return err
	}
	if _, err := s.Levels.SeedRoleLevels(ctx); err != nil {
		return fmt.Errorf("seed levels: %w", err)
	}
	return nil
}
