package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/layout"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// TailorRequest is the input of /analyze, /keywords, /suggestions and /generate.
// Multipart requests carry the resume as a "resume" file part instead of resume_text.
type TailorRequest struct {
	ResumeText     string   `json:"resume_text" validate:"required_without=ResumeFile"`
	ResumeFile     string   `json:"-"`
	JobDescription string   `json:"job_description" validate:"required_without=JobURL"`
	JobURL         string   `json:"job_url,omitempty" validate:"omitempty,url"`
	Contracts      []string `json:"contracts,omitempty" validate:"omitempty,dive,oneof=keywords suggestions resume"`
}

// JobFetchRequest is the input of /job/fetch
type JobFetchRequest struct {
	URL        string `json:"url" validate:"required,url"`
	UseBrowser bool   `json:"use_browser"`
}

// ChatRequest is the input of /chat
type ChatRequest struct {
	History []types.ChatTurn `json:"history" validate:"dive"`
	Message string           `json:"message" validate:"required"`
}

// AnalyzeResponse is the output of /analyze and the result event of /analyze/stream
type AnalyzeResponse struct {
	RunID          string             `json:"run_id"`
	Keywords       string             `json:"keywords,omitempty"`
	SuggestedEdits string             `json:"suggestedEdits,omitempty"`
	Resume         *types.Resume      `json:"resume,omitempty"`
	Errors         map[string]string  `json:"errors"`
	Steps          map[string]string  `json:"steps,omitempty"`
	DurationsMS    map[string]float64 `json:"durations_ms,omitempty"`
}

// ChatResponse is the output of /chat
type ChatResponse struct {
	Response        string           `json:"response"`
	ResumeData      *types.Resume    `json:"resumeData,omitempty"`
	History         []types.ChatTurn `json:"history"`
	Complete        bool             `json:"complete"`
	ValidationError *ErrorResponse   `json:"validationError,omitempty"`
}

// LayoutResponse is the output of /layout
type LayoutResponse struct {
	Blocks []layout.Record `json:"blocks"`
}

func newAnalyzeResponse(result *pipeline.Result) AnalyzeResponse {
	resp := AnalyzeResponse{
		RunID:       result.RunID,
		Resume:      result.Resume,
		Errors:      result.ErrorMessages(),
		Steps:       make(map[string]string, len(result.Steps)),
		DurationsMS: make(map[string]float64, len(result.Durations)),
	}
	if result.Keywords != nil {
		resp.Keywords = result.Keywords.Keywords
	}
	if result.Suggestions != nil {
		resp.SuggestedEdits = result.Suggestions.SuggestedEdits
	}
	for step, status := range result.Steps {
		resp.Steps[step] = string(status)
	}
	for c, ms := range result.Durations {
		resp.DurationsMS[string(c)] = ms
	}
	return resp
}

// decodeJSON decodes and validates a JSON request body
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &RequestError{Message: "request body is required"}
		}
		return &RequestError{Message: "invalid request body: " + err.Error()}
	}
	return s.validate(dst)
}

func (s *Server) validate(dst any) error {
	if err := s.validator.Struct(dst); err != nil {
		return newRequestError(err)
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload reads one file part of a multipart request. A missing part returns
// http.ErrMissingFile.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, error) {
	if r.MultipartForm == nil {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return "", nil, &ingestion.ExtractionError{Reason: ingestion.ReasonTooLarge, Cause: err}
			}
			return "", nil, &RequestError{Message: "invalid multipart form: " + err.Error()}
		}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, &RequestError{Message: fmt.Sprintf("failed to read %s: %v", field, err)}
	}
	return header.Filename, data, nil
}

// tailorSources reads a TailorRequest from a JSON or multipart body and returns the
// pipeline sources it describes. Server requests never name local files.
func (s *Server) tailorSources(w http.ResponseWriter, r *http.Request) (pipeline.Sources, []generation.Contract, error) {
	var req TailorRequest
	var src pipeline.Sources

	if isMultipart(r) {
		filename, data, err := s.readUpload(w, r, "resume")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			return src, nil, err
		}
		if err == nil {
			src.ResumeFilename, src.ResumeData = filename, data
			req.ResumeFile = filename
			if req.ResumeFile == "" {
				req.ResumeFile = "resume"
			}
		}
		req.ResumeText = r.FormValue("resume_text")
		req.JobDescription = r.FormValue("job_description")
		req.JobURL = r.FormValue("job_url")
		req.Contracts = splitList(r.MultipartForm.Value["contracts"])

		if err := s.validate(&req); err != nil {
			return src, nil, err
		}
	} else if err := s.decodeJSON(w, r, &req); err != nil {
		return src, nil, err
	}

	src.ResumeText = req.ResumeText
	src.JobDescription = req.JobDescription
	src.JobURL = req.JobURL

	contracts := make([]generation.Contract, 0, len(req.Contracts))
	for _, c := range req.Contracts {
		contracts = append(contracts, generation.Contract(c))
	}
	return src, contracts, nil
}

// tailorInput resolves a TailorRequest into the shared contract input
func (s *Server) tailorInput(w http.ResponseWriter, r *http.Request) (types.TailorInput, error) {
	src, _, err := s.tailorSources(w, r)
	if err != nil {
		return types.TailorInput{}, err
	}
	return s.runner.Prepare(r.Context(), src)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// handleExtract returns the text of an uploaded resume
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		s.writeError(w, r, &RequestError{Message: "expected a multipart/form-data upload with a \"file\" part"})
		return
	}
	filename, data, err := s.readUpload(w, r, "file")
	if errors.Is(err, http.ErrMissingFile) {
		err = &RequestError{Fields: []schemas.FieldError{{Field: "file", Message: "is required"}}, Message: "invalid request"}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.extractor.Extract(filename, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleJobFetch downloads and cleans a job posting
func (s *Server) handleJobFetch(w http.ResponseWriter, r *http.Request) {
	var req JobFetchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.jobFetch
	opts.UseBrowser = opts.UseBrowser || req.UseBrowser
	opts.Logger = s.requestLogger(r)

	job, err := ingestion.FetchJobDescription(r.Context(), req.URL, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleAnalyze runs the requested contracts concurrently and reports each outcome
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	src, contracts, err := s.tailorSources(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Run(r.Context(), src, pipeline.RunOptions{Contracts: contracts})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newAnalyzeResponse(result))
}

// handleAnalyzeStream runs the contracts and streams progress as server-sent events
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	src, contracts, err := s.tailorSources(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger := s.requestLogger(r)

	opts := pipeline.RunOptions{
		Contracts: contracts,
		OnProgress: func(event pipeline.ProgressEvent) {
			if err := sse.WriteEvent(EventProgress, event); err != nil {
				logger.Warn("failed to write SSE event", "step", event.Step, "error", err)
			}
		},
	}

	result, err := s.runner.Run(r.Context(), src, opts)
	if err != nil {
		logger.Warn("streaming run failed", "error", err)
		_ = sse.WriteError(ErrorResponse{Error: err.Error()})
		_ = sse.WriteComplete("", "failed", nil)
		return
	}

	resp := newAnalyzeResponse(result)
	if err := sse.WriteEvent(EventResult, resp); err != nil {
		logger.Warn("failed to write SSE result", "error", err)
		return
	}
	status := "completed"
	if len(resp.Errors) > 0 {
		status = "partial"
	}
	_ = sse.WriteComplete(result.RunID, status, resp.Errors)
}

// handleKeywords runs the keyword-analysis contract
func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	in, err := s.tailorInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.generator.AnalyzeKeywords(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleSuggestions runs the edit-suggestions contract
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	in, err := s.tailorInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.generator.SuggestEdits(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleGenerate runs the resume-generation contract and returns the validated resume
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	in, err := s.tailorInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resume, err := s.generator.GenerateResume(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// handleChat advances a chat transcript by one turn
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.reducer.Step(r.Context(), req.History, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := ChatResponse{
		Response:   result.Response,
		ResumeData: result.ResumeData,
		History:    result.History,
		Complete:   result.Complete(),
	}
	if result.Validation != nil {
		resp.ValidationError = &ErrorResponse{
			Error:  "resume data does not match the schema",
			Fields: result.Validation.Errors,
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// readResume reads a resume document from the request body. Legacy shapes are migrated
// before validation.
func (s *Server) readResume(w http.ResponseWriter, r *http.Request) (*types.Resume, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		return nil, &RequestError{Message: "failed to read request body: " + err.Error()}
	}
	return generation.ParseResume(data)
}

// handleValidate validates a resume document
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	resume, err := s.readResume(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// handleLayout returns the block sequence of a resume
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	resume, err := s.readResume(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	blocks := layout.LayoutWithOptions(resume, opts)
	s.jsonResponse(w, http.StatusOK, LayoutResponse{Blocks: layout.Records(blocks)})
}

// handleExport renders a resume and returns it as a file download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := rendering.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, r, &RequestError{Message: err.Error()})
		return
	}
	resume, err := s.readResume(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := rendering.Export(resume, format, rendering.ExportOptions{
		Geometry: s.geometry,
		Layout:   opts,
		Logger:   s.requestLogger(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		s.requestLogger(r).Warn("failed to write export", "format", format, "error", err)
	}
}

// layoutOptions reads ?suppress_empty=true
func layoutOptions(r *http.Request) (layout.Options, error) {
	var opts layout.Options
	if v := r.URL.Query().Get("suppress_empty"); v != "" {
		suppress, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &RequestError{Fields: []schemas.FieldError{{Field: "suppress_empty", Message: "must be a boolean"}}, Message: "invalid request"}
		}
		opts.SuppressEmptySections = suppress
	}
	return opts, nil
}
