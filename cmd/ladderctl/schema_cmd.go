package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply pending SQL schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				if err := rt.Schema(cmd.Context()); err != nil {
					return withCode(exitDB, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

func newSeedCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo roles and their default level registries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				if err := rt.Seed(cmd.Context()); err != nil {
					return withCode(exitDB, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
				return nil
			})
		},
	}
}
