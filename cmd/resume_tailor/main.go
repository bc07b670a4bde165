// Package main provides the resume_tailor CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/config"
)

func main() {
	// Load .env file if it exists
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
