package chat

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned when the new user message is blank
var ErrEmptyMessage = errors.New("message is required")

// HistoryError reports a malformed turn in the transcript sent by the caller
type HistoryError struct {
	Index   int
	Message string
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("invalid history turn %d: %s", e.Index, e.Message)
}
