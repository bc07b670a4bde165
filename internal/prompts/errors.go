package prompts

import "fmt"

// Error reports a prompt that could not be loaded or rendered
type Error struct {
	File    string
	Key     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	where := e.File
	if e.Key != "" {
		where += "#" + e.Key
	}
	if e.Cause != nil {
		return fmt.Sprintf("prompt %s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("prompt %s: %s", where, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
