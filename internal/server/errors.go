package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-tailor/internal/chat"
	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error  string               `json:"error"`
	Fields []schemas.FieldError `json:"fields,omitempty"`
}

// RequestError indicates a malformed or incomplete request body
type RequestError struct {
	Message string
	Fields  []schemas.FieldError
}

func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// newRequestError converts validator errors into a RequestError
func newRequestError(err error) *RequestError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &RequestError{Message: "invalid request: " + err.Error()}
	}
	fields := make([]schemas.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, schemas.FieldError{
			Field:   fieldName(fe),
			Message: tagMessage(fe),
		})
	}
	return &RequestError{Message: "invalid request", Fields: fields}
}

// fieldName returns the JSON path of a failed field without the top-level struct name
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error. Schema violations are
// checked before generation failures because a failed generation wraps its SchemaError.
func HTTPStatus(err error) int {
	var (
		requestErr    *RequestError
		historyErr    *chat.HistoryError
		schemaErr     *schemas.SchemaError
		extractionErr *ingestion.ExtractionError
		generationErr *generation.GenerationError
		emissionErr   *rendering.EmissionError
		fetchErr      *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &requestErr),
		errors.As(err, &historyErr),
		errors.Is(err, generation.ErrEmptyInput),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, pipeline.ErrNoResume),
		errors.Is(err, pipeline.ErrNoJob):
		return http.StatusBadRequest
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &extractionErr):
		if extractionErr.Reason == ingestion.ReasonTooLarge {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingestion.ErrNoJobText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &generationErr),
		errors.As(err, &fetchErr),
		errors.Is(err, ingestion.ErrHTTPRequestFailed):
		return http.StatusBadGateway
	case errors.As(err, &emissionErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError converts err into a JSON error response at the handler boundary
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := ErrorResponse{Error: err.Error()}

	var schemaErr *schemas.SchemaError
	var requestErr *RequestError
	switch {
	case errors.As(err, &requestErr):
		body.Fields = requestErr.Fields
	case errors.As(err, &schemaErr):
		body.Error = "resume does not match the schema"
		body.Fields = schemaErr.Errors
	}

	logger := s.requestLogger(r)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	s.jsonResponse(w, status, body)
}
