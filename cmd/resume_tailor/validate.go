package main

import (
	"errors"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <resume.json|resume.yaml>",
		Short: "Validate a structured resume against the resume schema",
		Long:  "Validate a structured resume and report every violated field. Legacy generation outputs are migrated first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := readResumeFile(args[0])

			var schemaErr *schemas.SchemaError
			switch {
			case err == nil:
				printf(cmd.OutOrStdout(), "Validation passed\n")
				return nil
			case errors.As(err, &schemaErr):
				if a.cfg.Verbose {
					a.printer.PrintSchemaError(schemaErr)
				}
				printf(cmd.OutOrStdout(), "Validation failed: %d field(s) violate the schema\n", len(schemaErr.Errors))
				return schemaErr
			default:
				return err
			}
		},
	}
	return cmd
}
