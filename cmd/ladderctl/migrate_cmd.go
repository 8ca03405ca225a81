package main

import (
	"fmt"
	"strings"

	"skill-ladder/internal/usecase"

	"github.com/spf13/cobra"
)

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [seed-levels|backfill|translate|verify|run-all]",
		Short: "Run a level migration operation (default run-all)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := usecase.OperationRunAll
			if len(args) == 1 {
				op = strings.ToLower(strings.TrimSpace(args[0]))
			}

			return withRuntime(cmd, open, func(rt *runtime) error {
				switch op {
				case usecase.OperationRunAll:
					report, err := rt.Migrations.RunAll(cmd.Context())
					if err != nil {
						return usecaseCode(err)
					}
					if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
						return err
					}
					return verifyFailure(report.Verify)
				case usecase.OperationVerify:
					return runVerify(cmd, rt)
				default:
					res, err := rt.Migrations.Run(cmd.Context(), op)
					if err != nil {
						return usecaseCode(err)
					}
					return writeJSON(cmd.OutOrStdout(), res)
				}
			})
		},
	}
}

func newVerifyCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every role has levels and every record uses the unified criteria map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				return runVerify(cmd, rt)
			})
		},
	}
}

func runVerify(cmd *cobra.Command, rt *runtime) error {
	report, err := rt.Migrations.Verify(cmd.Context())
	if err != nil {
		return usecaseCode(err)
	}
	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	return verifyFailure(report)
}

func verifyFailure(report usecase.VerifyReport) error {
	if report.Passed {
		return nil
	}
	return withCode(exitVerify, fmt.Errorf("verification failed with %d issue(s)", len(report.Issues)))
}
