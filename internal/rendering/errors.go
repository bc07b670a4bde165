// Package rendering emits layout blocks as DOCX, PDF, LaTeX and plain-text documents.
package rendering

import (
	"errors"
	"fmt"
)

// ErrNoPrintableArea is returned when margins consume the whole page.
var ErrNoPrintableArea = errors.New("page geometry leaves no printable area")

// EmissionError reports a failure turning blocks into a document. Emitters only see
// validated resumes, so it signals a broken template or geometry, never bad input.
type EmissionError struct {
	Format  Format
	Part    string // template or package part, when one is involved
	Message string
	Cause   error
}

func (e *EmissionError) Error() string {
	where := string(e.Format)
	if e.Part != "" {
		where += " " + e.Part
	}
	if e.Cause == nil {
		return fmt.Sprintf("render %s: %s", where, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("render %s: %v", where, e.Cause)
	}
	return fmt.Sprintf("render %s: %s: %v", where, e.Message, e.Cause)
}

func (e *EmissionError) Unwrap() error {
	return e.Cause
}
