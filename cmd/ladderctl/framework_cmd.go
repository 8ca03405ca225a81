package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newExportCmd(open opener) *cobra.Command {
	var (
		roleID string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a role's framework as JSON or Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(roleID)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid --role: %w", err))
			}

			return withRuntime(cmd, open, func(rt *runtime) error {
				res, err := rt.Frameworks.Export(cmd.Context(), id, format)
				if err != nil {
					return usecaseCode(err)
				}
				if out == "" || out == "-" {
					_, err := io.WriteString(cmd.OutOrStdout(), res.Body)
					return err
				}
				if err := os.WriteFile(out, []byte(res.Body), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s export to %s\n", res.Format, out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&roleID, "role", "", "Role UUID (required)")
	cmd.Flags().StringVar(&format, "format", "json", "Document format: json or markdown")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newImportCmd(open opener) *cobra.Command {
	var (
		roleID string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a role's framework with a JSON or Markdown document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(roleID)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid --role: %w", err))
			}
			body, err := readInput(cmd, file)
			if err != nil {
				return withCode(exitUsage, err)
			}

			return withRuntime(cmd, open, func(rt *runtime) error {
				res, err := rt.Frameworks.Import(cmd.Context(), id, body)
				if err != nil {
					return usecaseCode(err)
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVar(&roleID, "role", "", "Role UUID (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Document to import, - for stdin")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return b, nil
}
