package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jonathan/resume-tailor/internal/chat"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

const quitCommand = "/quit"

// loadTranscript reads a saved chat transcript. A missing file is an empty transcript.
func loadTranscript(path string) ([]types.ChatTurn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	var history []types.ChatTurn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	if err := chat.ValidateHistory(history); err != nil {
		return nil, err
	}
	if err := schemas.ValidateTranscriptJSON(data); err != nil {
		return nil, fmt.Errorf("invalid transcript %s: %w", path, err)
	}
	return history, nil
}

func newChatCmd(a *app) *cobra.Command {
	var (
		out        string
		transcript string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Build a resume through a conversation",
		Long: "Answer the assistant's questions one line at a time. When it has gathered enough " +
			"information it returns a validated structured resume. Type /quit to stop.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := loadTranscript(transcript)
			if err != nil {
				return err
			}

			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()
			reducer := chat.NewReducer(client, chat.Options{Logger: a.logger})

			stdout := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				printf(stdout, "> ")
				if !scanner.Scan() {
					break
				}
				message := strings.TrimSpace(scanner.Text())
				if message == quitCommand {
					break
				}
				if message == "" {
					continue
				}

				result, err := reducer.Step(cmd.Context(), history, message)
				if err != nil {
					return err
				}
				history = result.History
				printf(stdout, "%s\n", result.Response)

				if transcript != "" {
					data, err := marshalIndent(history)
					if err != nil {
						return err
					}
					if err := writeOutput(stdout, transcript, data); err != nil {
						return err
					}
				}
				if result.Validation != nil && a.cfg.Verbose {
					a.printer.PrintSchemaError(result.Validation)
				}
				if !result.Complete() {
					continue
				}

				data, err := marshalIndent(result.ResumeData)
				if err != nil {
					return err
				}
				if a.cfg.Verbose {
					a.printer.PrintResume(result.ResumeData)
				}
				return writeOutput(stdout, out, data)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the finished resume JSON to this file (default stdout)")
	cmd.Flags().StringVar(&transcript, "transcript", "", "Load and save the chat transcript at this path")
	return cmd
}
