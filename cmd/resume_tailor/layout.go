package main

import (
	"github.com/jonathan/resume-tailor/internal/layout"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/spf13/cobra"
)

func newLayoutCmd(a *app) *cobra.Command {
	var (
		paginate      bool
		suppressEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "layout <resume.json|resume.yaml>",
		Short: "Print the layout blocks of a structured resume",
		Long: "Derive the ordered block sequence every exporter renders from. With --paginate, " +
			"also print where the PDF exporter places each block.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readResumeFile(args[0])
			if err != nil {
				return err
			}
			blocks := layout.LayoutWithOptions(r, layout.Options{SuppressEmptySections: suppressEmpty})

			if a.cfg.Verbose {
				a.printer.PrintBlocks(blocks)
			} else {
				data, err := marshalIndent(map[string]any{"blocks": layout.Records(blocks)})
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), "", data); err != nil {
					return err
				}
			}

			if !paginate {
				return nil
			}
			plan, err := rendering.NewPDFEmitter(a.cfg.Geometry(), a.logger).Plan(blocks)
			if err != nil {
				return err
			}
			a.printer.PrintPlan(plan)
			return nil
		},
	}

	cmd.Flags().BoolVar(&paginate, "paginate", false, "Print the PDF pagination plan")
	cmd.Flags().BoolVar(&suppressEmpty, "suppress-empty", false, "Omit section titles of empty sections")
	return cmd
}
