package fetch

import "fmt"

// Error represents a failure to fetch or read a job posting
type Error struct {
	URL        string
	StatusCode int // upstream status when the server answered, else 0
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
