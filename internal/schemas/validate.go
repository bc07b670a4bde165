// Package schemas provides JSON Schema validation functionality for structured data artifacts.
package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/resume-tailor/internal/types"
	schemafiles "github.com/jonathan/resume-tailor/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// rootField is the field name used for errors that apply to the whole document
const rootField = "(root)"

// SchemaError reports every field of a document that violates its schema.
// Validation never stops at the first violation so callers get one complete diagnostic.
type SchemaError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Fields returns the violated field paths in report order
func (e *SchemaError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

// Has reports whether the given field path was violated
func (e *SchemaError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func newSchemaError(field, message string) *SchemaError {
	return &SchemaError{Errors: []FieldError{{Field: field, Message: message}}}
}

var (
	resumeSchema     = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compileEmbedded(schemafiles.ResumeSchema) })
	transcriptSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compileEmbedded(schemafiles.ChatTurnsSchema) })
)

// compileEmbedded compiles one of the embedded schema files
func compileEmbedded(name string) (*gojsonschema.Schema, error) {
	content, err := schemafiles.Load(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "embedded schema missing", Cause: err}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
	}
	return schema, nil
}

// ValidateResume validates an arbitrary decoded value (map, struct, raw JSON) against the
// resume schema and returns the typed Resume. The error is a *SchemaError when the value
// does not conform.
func ValidateResume(raw any) (*types.Resume, error) {
	switch v := raw.(type) {
	case nil:
		return nil, newSchemaError(rootField, "resume is required")
	case []byte:
		return ValidateResumeJSON(v)
	case json.RawMessage:
		return ValidateResumeJSON(v)
	case string:
		return ValidateResumeJSON([]byte(v))
	case *types.Resume:
		if v == nil {
			return nil, newSchemaError(rootField, "resume is required")
		}
		raw = typedCopy(*v)
	case types.Resume:
		raw = typedCopy(v)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, newSchemaError(rootField, fmt.Sprintf("value is not JSON-serializable: %v", err))
	}
	return ValidateResumeJSON(data)
}

// ValidateResumeJSON validates JSON bytes against the resume schema and decodes them.
// Optional fields that are absent or null decode to their zero values; required arrays
// are normalized to empty slices.
func ValidateResumeJSON(data []byte) (*types.Resume, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, newSchemaError(rootField, "resume is required")
	}
	if !json.Valid(data) {
		return nil, newSchemaError(rootField, "document is not valid JSON")
	}

	schema, err := resumeSchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, newSchemaError(rootField, fmt.Sprintf("document could not be loaded: %v", err))
	}
	if !result.Valid() {
		return nil, buildSchemaError(result)
	}

	var resume types.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		// The schema accepted the document, so this is a mismatch between schema and types.
		return nil, newSchemaError(rootField, fmt.Sprintf("document does not decode into a resume: %v", err))
	}
	normalize(&resume)
	return &resume, nil
}

// typedCopy returns a copy of r whose nil sequences are empty. A Go value cannot tell an
// absent list from an empty one, so typed input is not penalized for nil slices.
func typedCopy(r types.Resume) types.Resume {
	r.WorkExperience = append([]types.WorkItem{}, r.WorkExperience...)
	r.Education = append([]types.EducationItem{}, r.Education...)
	normalize(&r)
	return r
}

// normalize replaces nil required sequences with empty ones
func normalize(r *types.Resume) {
	if r.WorkExperience == nil {
		r.WorkExperience = []types.WorkItem{}
	}
	if r.Education == nil {
		r.Education = []types.EducationItem{}
	}
	for i := range r.WorkExperience {
		if r.WorkExperience[i].Description == nil {
			r.WorkExperience[i].Description = []string{}
		}
	}
}

// ValidateTranscriptJSON checks a serialized chat transcript. Every turn needs a known
// role and string content.
func ValidateTranscriptJSON(data []byte) error {
	schema, err := transcriptSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(bytes.TrimSpace(data)))
	if err != nil {
		return newSchemaError(rootField, fmt.Sprintf("transcript could not be loaded: %v", err))
	}
	if !result.Valid() {
		return buildSchemaError(result)
	}
	return nil
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}
	return buildSchemaError(result)
}

// buildSchemaError converts gojsonschema results into a SchemaError
func buildSchemaError(result *gojsonschema.Result) *SchemaError {
	validationErr := &SchemaError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   fieldPath(desc),
			Message: fieldMessage(desc),
		})
	}

	return validationErr
}

// fieldPath returns the dotted path of the offending field. Required-property errors are
// reported by gojsonschema against the parent object, so the property name is appended.
func fieldPath(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if field == "" {
		field = rootField
	}
	if desc.Type() != "required" {
		return field
	}
	property, ok := desc.Details()["property"].(string)
	if !ok || property == "" {
		return field
	}
	if field == rootField {
		return property
	}
	if strings.HasSuffix(field, "."+property) {
		return field
	}
	return field + "." + property
}

func fieldMessage(desc gojsonschema.ResultError) string {
	switch desc.Type() {
	case "required":
		return "is required"
	case "pattern":
		return "must not be blank"
	default:
		return desc.Description()
	}
}
