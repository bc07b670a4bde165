package main

import (
	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		out    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract plain text from a resume file",
		Long:  "Extract and clean the text of a PDF, DOCX or plain-text resume.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.extractor().ExtractFile(args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("extracted resume text",
				"file", doc.Filename, "media_type", doc.MediaType, "chars", len(doc.Text))

			data := []byte(doc.Text + "\n")
			if asJSON {
				if data, err = marshalIndent(doc); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the document with its metadata as JSON")
	return cmd
}
