package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"skill-ladder/internal/app"
	"skill-ladder/internal/config"
	"skill-ladder/internal/database/seeder"
	"skill-ladder/internal/pkg/logging"
	"skill-ladder/internal/usecase"

	"github.com/spf13/cobra"
)

// runtime is what every subcommand needs from the database side.
type runtime struct {
	Frameworks usecase.FrameworkUsecase
	Migrations usecase.LevelMigrationUsecase
	Schema     func(ctx context.Context) error
	Seed       func(ctx context.Context) error
	Close      func() error
}

type opener func(ctx context.Context) (*runtime, error)

func openContainer(_ context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	logger := logging.New(cfg.Log)

	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		return nil, withCode(exitDB, err)
	}
	return &runtime{
		Frameworks: c.FrameworkUsecase,
		Migrations: c.MigrationUsecase,
		Schema:     c.Migrate,
		Seed: func(ctx context.Context) error {
			return seeder.Runner{Seeders: seeder.Defaults(c.MigrationUsecase), Logger: logger}.Run(ctx, c.DB)
		},
		Close: c.Close,
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ladderctl",
		Short:         "Competency framework import/export and level migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newSchemaCmd(open))
	cmd.AddCommand(newSeedCmd(open))
	cmd.AddCommand(newMigrateCmd(open))
	cmd.AddCommand(newVerifyCmd(open))
	cmd.AddCommand(newExportCmd(open))
	cmd.AddCommand(newImportCmd(open))
	return cmd
}

// withRuntime opens the runtime for one command and always closes it.
func withRuntime(cmd *cobra.Command, open opener, fn func(rt *runtime) error) error {
	rt, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if rt.Close != nil {
			_ = rt.Close()
		}
	}()
	return fn(rt)
}

func Execute() {
	if err := newRootCmd(openContainer).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

// usecaseCode maps usecase sentinels to process exit codes.
func usecaseCode(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, usecase.ErrInvalidInput):
		return withCode(exitValidation, err)
	case errors.Is(err, usecase.ErrNotFound):
		return withCode(exitValidation, err)
	case errors.Is(err, usecase.ErrMigrationInProgress):
		return withCode(exitBusy, err)
	default:
		return withCode(exitDB, err)
	}
}
