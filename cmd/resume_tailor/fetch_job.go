package main

import (
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/spf13/cobra"
)

func newFetchJobCmd(a *app) *cobra.Command {
	var (
		out        string
		asJSON     bool
		useBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "fetch-job <url>",
		Short: "Fetch a job description from a job board URL",
		Long:  "Download a job posting, extract the description with platform-aware selectors and print the cleaned text.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("browser") {
				a.cfg.UseBrowser = useBrowser
			}

			job, err := ingestion.FetchJobDescription(cmd.Context(), args[0], a.cfg.JobFetchOptions(a.logger))
			if err != nil {
				return err
			}

			data := []byte(job.Text + "\n")
			if asJSON {
				if data, err = marshalIndent(job); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the description with its metadata as JSON")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "Render JavaScript job boards in a headless browser")
	return cmd
}
