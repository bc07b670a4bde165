package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// SSE event names sent by /analyze/stream
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

// SSEWriter writes Server-Sent Events. Each event carries an increasing id so clients
// can tell whether they missed any. It is safe for concurrent use.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter sets the event-stream headers on w
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event with data encoded as JSON
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(body ErrorResponse) error {
	return s.WriteEvent(EventError, body)
}

// WriteComplete sends the final event of a stream
func (s *SSEWriter) WriteComplete(runID, status string, errs map[string]string) error {
	payload := map[string]any{
		"run_id": runID,
		"status": status,
	}
	if len(errs) > 0 {
		payload["errors"] = errs
	}
	return s.WriteEvent(EventComplete, payload)
}
