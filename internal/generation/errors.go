// Package generation runs the prompt contracts that turn resume text and a job
// description into keyword analysis, edit suggestions and a tailored resume.
package generation

import (
	"errors"
	"fmt"
)

// Contract names one prompt contract
type Contract string

// The three generation contracts
const (
	ContractKeywords    Contract = "keywords"
	ContractSuggestions Contract = "suggestions"
	ContractResume      Contract = "resume"
	// ContractChat is the chat turn contract driven by the chat reducer
	ContractChat Contract = "chat"
)

// Contracts lists the tailoring contracts in reporting order
func Contracts() []Contract {
	return []Contract{ContractKeywords, ContractSuggestions, ContractResume}
}

// ErrEmptyInput is wrapped by GenerationError when resume text or job description is blank
var ErrEmptyInput = errors.New("resume text and job description are required")

// GenerationError represents a failure of a single prompt contract
type GenerationError struct {
	Contract Contract
	Message  string
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s generation failed: %s: %v", e.Contract, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s generation failed: %s", e.Contract, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
