package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-tailor/internal/layout"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

// exportResume renders r in the named format into dir and returns the written path
func exportResume(a *app, r *types.Resume, formatName, dir string) (string, error) {
	return exportResumeWithOptions(a, r, formatName, dir, layout.Options{})
}

func exportResumeWithOptions(a *app, r *types.Resume, formatName, dir string, opts layout.Options) (string, error) {
	format, err := rendering.ParseFormat(formatName)
	if err != nil {
		return "", err
	}

	doc, err := rendering.Export(r, format, rendering.ExportOptions{
		Geometry: a.cfg.Geometry(),
		Layout:   opts,
		Logger:   a.logger,
	})
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.logger.Info("exported resume", "format", format, "path", path, "bytes", len(doc.Data))
	return path, nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format        string
		outputDir     string
		suppressEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "export <resume.json|resume.yaml>",
		Short: "Export a structured resume as DOCX, PDF, plain text or LaTeX",
		Long: "Validate a structured resume, lay it out and write tailored-resume.<ext> " +
			"into the output directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readResumeFile(args[0])
			if err != nil {
				return err
			}

			path, err := exportResumeWithOptions(a, r,
				stringFlag(cmd, "format", format, a.cfg.Format),
				stringFlag(cmd, "output-dir", outputDir, a.cfg.Output),
				layout.Options{SuppressEmptySections: suppressEmpty},
			)
			if err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "Exported %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: docx, pdf, txt or tex (default from config, pdf)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to write the document to (default current directory)")
	cmd.Flags().BoolVar(&suppressEmpty, "suppress-empty", false, "Omit section titles of empty sections")
	return cmd
}
