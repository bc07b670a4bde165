// Package ingestion turns uploaded resumes and job postings into clean plain text.
package ingestion

import "fmt"

// Reasons an upload cannot be turned into text
const (
	ReasonUnsupportedType = "unsupported file type"
	ReasonCorrupt         = "file could not be read"
	ReasonEmpty           = "no extractable text"
	ReasonTooLarge        = "file too large"
)

// ExtractionError reports that text could not be obtained from an uploaded file.
// The message is meant for the end user; extraction is not retried.
type ExtractionError struct {
	Filename string
	Reason   string
	Cause    error
}

func (e *ExtractionError) Error() string {
	name := e.Filename
	if name == "" {
		name = "upload"
	}
	if e.Cause != nil {
		return fmt.Sprintf("cannot extract text from %s: %s: %v", name, e.Reason, e.Cause)
	}
	return fmt.Sprintf("cannot extract text from %s: %s", name, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
