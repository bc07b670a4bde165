package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/pipeline/steps"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

// sourceFlags are the input flags shared by analyze and generate
type sourceFlags struct {
	resume string
	job    string
	jobURL string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "Path to the resume (PDF, DOCX or text)")
	cmd.Flags().StringVarP(&f.job, "job", "j", "", "Path to the job description text file")
	cmd.Flags().StringVarP(&f.jobURL, "job-url", "u", "", "URL to fetch the job posting from")
}

// sources combines the flags with the config file inputs. A job flag on the command
// line replaces both job inputs of the config.
func (f *sourceFlags) sources(cmd *cobra.Command, a *app) (pipeline.Sources, error) {
	src := pipeline.Sources{
		ResumePath: stringFlag(cmd, "resume", f.resume, a.cfg.Resume),
		JobPath:    a.cfg.Job,
		JobURL:     a.cfg.JobURL,
	}
	if cmd.Flags().Changed("job") || cmd.Flags().Changed("job-url") {
		src.JobPath, src.JobURL = f.job, f.jobURL
	}

	if src.ResumePath == "" {
		return src, fmt.Errorf("--resume is required")
	}
	if src.JobPath == "" && src.JobURL == "" {
		return src, fmt.Errorf("either --job or --job-url must be provided")
	}
	if src.JobPath != "" && src.JobURL != "" {
		return src, fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}
	return src, nil
}

// runOutput is the JSON form of a run result
type runOutput struct {
	RunID          string                  `json:"run_id"`
	Keywords       string                  `json:"keywords,omitempty"`
	SuggestedEdits string                  `json:"suggestedEdits,omitempty"`
	Resume         *types.Resume           `json:"resume,omitempty"`
	Errors         map[string]string       `json:"errors,omitempty"`
	Steps          map[string]steps.Status `json:"steps"`
}

func newRunOutput(result *pipeline.Result) runOutput {
	out := runOutput{RunID: result.RunID, Resume: result.Resume, Steps: result.Steps}
	if result.Keywords != nil {
		out.Keywords = result.Keywords.Keywords
	}
	if result.Suggestions != nil {
		out.SuggestedEdits = result.Suggestions.SuggestedEdits
	}
	if len(result.Errors) > 0 {
		out.Errors = result.ErrorMessages()
	}
	return out
}

// parseContracts validates contract names from the command line
func parseContracts(names []string) ([]generation.Contract, error) {
	if err := validator.New().Var(names, "dive,oneof=keywords suggestions resume"); err != nil {
		return nil, fmt.Errorf("--contracts must be a subset of: keywords, suggestions, resume")
	}
	contracts := make([]generation.Contract, 0, len(names))
	for _, name := range names {
		contracts = append(contracts, generation.Contract(strings.TrimSpace(name)))
	}
	return contracts, nil
}

// runPipeline runs the requested contracts and reports progress through the printer in
// verbose mode
func runPipeline(cmd *cobra.Command, a *app, src pipeline.Sources, contracts []generation.Contract) (*pipeline.Result, error) {
	client, err := a.client(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	opts := pipeline.RunOptions{Contracts: contracts}
	if a.cfg.Verbose {
		opts.OnProgress = a.printer.PrintProgress
	}

	result, err := a.runner(client).Run(cmd.Context(), src, opts)
	if err != nil {
		return nil, err
	}
	a.logger.Info("run finished", "run_id", result.RunID, "failed", len(result.Errors))
	return result, nil
}

// allFailed reports whether no requested contract produced output
func allFailed(result *pipeline.Result, requested []generation.Contract) bool {
	if len(requested) == 0 {
		requested = generation.Contracts()
	}
	return len(result.Errors) >= len(requested)
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		flags     sourceFlags
		contracts []string
		out       string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze keywords, suggest edits and generate a tailored resume",
		Long: "Run the keyword analysis, edit suggestion and resume generation contracts in parallel. " +
			"Each contract succeeds or fails on its own.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := flags.sources(cmd, a)
			if err != nil {
				return err
			}
			requested, err := parseContracts(contracts)
			if err != nil {
				return err
			}

			result, err := runPipeline(cmd, a, src, requested)
			if err != nil {
				return err
			}

			if asJSON || out != "" {
				data, err := marshalIndent(newRunOutput(result))
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), out, data); err != nil {
					return err
				}
			} else {
				a.printer.PrintRunResult(result)
			}

			if allFailed(result, requested) {
				return errors.New("every contract failed")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&contracts, "contracts", nil, "Contracts to run: keywords, suggestions, resume (default all)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the JSON result to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		flags     sourceFlags
		out       string
		format    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a structured tailored resume",
		Long:  "Generate a tailored resume as schema-valid JSON and optionally export it as a document.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := flags.sources(cmd, a)
			if err != nil {
				return err
			}

			requested := []generation.Contract{generation.ContractResume}
			result, err := runPipeline(cmd, a, src, requested)
			if err != nil {
				return err
			}
			if err := result.Errors[generation.ContractResume]; err != nil {
				return err
			}

			data, err := marshalIndent(result.Resume)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), out, data); err != nil {
				return err
			}
			if a.cfg.Verbose {
				a.printer.PrintResume(result.Resume)
			}

			if !cmd.Flags().Changed("format") {
				return nil
			}
			path, err := exportResume(a, result.Resume, format, stringFlag(cmd, "output-dir", outputDir, a.cfg.Output))
			if err != nil {
				return err
			}
			printf(cmd.ErrOrStderr(), "Exported %s\n", path)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the resume JSON to this file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Also export the resume: docx, pdf, txt or tex")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the exported document (default current directory)")
	return cmd
}
