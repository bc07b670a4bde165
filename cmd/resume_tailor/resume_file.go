package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/types"
	"gopkg.in/yaml.v3"
)

// readResumeFile loads a structured resume from a JSON or YAML file, migrating legacy
// shapes and validating it against the resume schema.
func readResumeFile(path string) (*types.Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse resume YAML: %w", err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return nil, fmt.Errorf("failed to convert resume YAML: %w", err)
		}
	}

	return generation.ParseResume(data)
}

// writeOutput writes data to path, or to w when path is empty or "-"
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// marshalIndent encodes v as indented JSON followed by a newline
func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	return append(data, '\n'), nil
}
