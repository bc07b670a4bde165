package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/spf13/cobra"
)

// newLLMClient creates the model client. Tests replace it with a fake.
var newLLMClient = func(ctx context.Context, cfg *llm.Config, apiKey string) (llm.Client, error) {
	return llm.NewClient(ctx, cfg, apiKey)
}

// app holds the state shared by every command once the configuration is resolved
type app struct {
	configPath string
	verbose    bool
	logLevel   string
	logFormat  string

	cfg     *config.Config
	logger  *slog.Logger
	printer *observability.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "resume_tailor",
		Short: "Tailor a resume to a job description",
		Long: "resume_tailor extracts resume text, analyzes a job description with an LLM, " +
			"generates a structured tailored resume and exports it as DOCX, PDF, plain text or LaTeX.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a JSON or YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Print detailed output")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		newServeCmd(a),
		newExtractCmd(a),
		newFetchJobCmd(a),
		newAnalyzeCmd(a),
		newGenerateCmd(a),
		newValidateCmd(a),
		newLayoutCmd(a),
		newExportCmd(a),
		newChatCmd(a),
	)
	return root
}

// init resolves the configuration. Flags set on the command line win over the config
// file and the environment.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.printer = observability.NewPrinter(cmd.OutOrStdout())
	return nil
}

// client creates the model client from the resolved configuration
func (a *app) client(ctx context.Context) (llm.Client, error) {
	llmCfg, err := a.cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	client, err := newLLMClient(ctx, llmCfg, a.cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

func (a *app) generationOptions() generation.Options {
	return generation.Options{RetryOnSchemaError: a.cfg.RetryOnSchemaError, Logger: a.logger}
}

func (a *app) extractor() *ingestion.Extractor {
	return ingestion.NewExtractor(a.cfg.ExtractorConfig())
}

func (a *app) runner(client llm.Client) *pipeline.Runner {
	return &pipeline.Runner{
		Generator: generation.New(client, a.generationOptions()),
		Extractor: a.extractor(),
		JobFetch:  a.cfg.JobFetchOptions(a.logger),
		Logger:    a.logger,
	}
}

// stringFlag returns the flag value when it was set, else the config fallback
func stringFlag(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
