// Package pipeline orchestrates a tailoring run: it prepares resume text and a job
// description from their sources, then runs the generation contracts concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline/steps"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultConcurrency runs all three contracts at once
const DefaultConcurrency = 3

var (
	// ErrNoResume is returned when Sources names no resume
	ErrNoResume = errors.New("a resume file or resume text is required")
	// ErrNoJob is returned when Sources names no job description
	ErrNoJob = errors.New("a job description, job URL or job file is required")
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string       `json:"step"`
	Category string       `json:"category"`
	Status   steps.Status `json:"status"`
	Message  string       `json:"message"`
	RunID    string       `json:"run_id,omitempty"`
	Content  any          `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// Sources names where the resume and job description come from. Text fields win over
// uploaded data, which wins over paths and URLs.
type Sources struct {
	ResumeText     string
	ResumeFilename string
	ResumeData     []byte
	ResumePath     string

	JobDescription string
	JobURL         string
	JobPath        string
}

// RunOptions holds configuration for one run
type RunOptions struct {
	RunID      string                // generated when empty
	Contracts  []generation.Contract // all contracts when empty
	OnProgress ProgressCallback
}

// Result holds every contract outcome of a run. A failed contract has an entry in
// Errors and a nil output; the other outputs are unaffected.
type Result struct {
	RunID       string                          `json:"run_id"`
	Keywords    *types.KeywordAnalysis          `json:"keywords,omitempty"`
	Suggestions *types.EditSuggestions          `json:"suggestions,omitempty"`
	Resume      *types.Resume                   `json:"resume,omitempty"`
	Errors      map[generation.Contract]error   `json:"-"`
	Steps       map[string]steps.Status         `json:"steps"`
	Durations   map[generation.Contract]float64 `json:"durations_ms"`
}

// ErrorMessages returns the contract errors as strings keyed by contract name
func (r *Result) ErrorMessages() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for c, err := range r.Errors {
		out[string(c)] = err.Error()
	}
	return out
}

// Runner runs tailoring pipelines. It is safe for concurrent use.
type Runner struct {
	Generator   *generation.Generator
	Extractor   *ingestion.Extractor
	JobFetch    ingestion.JobFetchOptions
	Concurrency int
	Logger      *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) extractor() *ingestion.Extractor {
	if r.Extractor == nil {
		return ingestion.NewExtractor(ingestion.DefaultExtractorConfig())
	}
	return r.Extractor
}

// progress serializes callback invocations and stamps the run ID
type progress struct {
	mu    sync.Mutex
	runID string
	fn    ProgressCallback
}

func (p *progress) emit(step string, status steps.Status, message string, content any) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fn(ProgressEvent{
		Step:     step,
		Category: steps.Category(step),
		Status:   status,
		Message:  message,
		RunID:    p.runID,
		Content:  content,
	})
}

// Run prepares the inputs from src and runs the contracts
func (r *Runner) Run(ctx context.Context, src Sources, opts RunOptions) (*Result, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	in, err := r.prepare(ctx, src, &progress{runID: opts.RunID, fn: opts.OnProgress})
	if err != nil {
		return nil, err
	}
	return r.Tailor(ctx, in, opts)
}

// Prepare resolves resume text and job description from their sources
func (r *Runner) Prepare(ctx context.Context, src Sources) (types.TailorInput, error) {
	return r.prepare(ctx, src, &progress{})
}

func (r *Runner) prepare(ctx context.Context, src Sources, p *progress) (types.TailorInput, error) {
	var in types.TailorInput

	p.emit(steps.StepResumeText, steps.StatusInProgress, "Extracting resume text", nil)
	resume, err := r.resumeText(src)
	if err != nil {
		p.emit(steps.StepResumeText, steps.StatusFailed, err.Error(), nil)
		return in, err
	}
	in.ResumeText = resume
	p.emit(steps.StepResumeText, steps.StatusCompleted,
		fmt.Sprintf("Extracted %d characters of resume text", len(resume)), nil)

	p.emit(steps.StepJobDescription, steps.StatusInProgress, "Loading job description", nil)
	job, err := r.jobDescription(ctx, src)
	if err != nil {
		p.emit(steps.StepJobDescription, steps.StatusFailed, err.Error(), nil)
		return in, err
	}
	in.JobDescription = job
	p.emit(steps.StepJobDescription, steps.StatusCompleted,
		fmt.Sprintf("Loaded %d characters of job description", len(job)), nil)

	return in, nil
}

func (r *Runner) resumeText(src Sources) (string, error) {
	switch {
	case strings.TrimSpace(src.ResumeText) != "":
		return strings.TrimSpace(src.ResumeText), nil
	case len(src.ResumeData) > 0:
		doc, err := r.extractor().Extract(src.ResumeFilename, src.ResumeData)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	case src.ResumePath != "":
		doc, err := r.extractor().ExtractFile(src.ResumePath)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	default:
		return "", ErrNoResume
	}
}

func (r *Runner) jobDescription(ctx context.Context, src Sources) (string, error) {
	switch {
	case strings.TrimSpace(src.JobDescription) != "":
		return strings.TrimSpace(src.JobDescription), nil
	case src.JobURL != "":
		opts := r.JobFetch
		if opts.Logger == nil {
			opts.Logger = r.logger()
		}
		job, err := ingestion.FetchJobDescription(ctx, src.JobURL, opts)
		if err != nil {
			return "", err
		}
		return job.Text, nil
	case src.JobPath != "":
		doc, err := r.extractor().ExtractFile(src.JobPath)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	default:
		return "", ErrNoJob
	}
}

// Tailor runs the requested contracts concurrently. Each contract succeeds or fails on
// its own; a failure never cancels the others. The returned error is non-nil only when
// the run could not start.
func (r *Runner) Tailor(ctx context.Context, in types.TailorInput, opts RunOptions) (*Result, error) {
	if r.Generator == nil {
		return nil, fmt.Errorf("pipeline: runner has no generator")
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	contracts := opts.Contracts
	if len(contracts) == 0 {
		contracts = generation.Contracts()
	}

	tracker := steps.NewTracker()
	if strings.TrimSpace(in.ResumeText) != "" {
		tracker.Set(steps.StepResumeText, steps.StatusCompleted)
	}
	if strings.TrimSpace(in.JobDescription) != "" {
		tracker.Set(steps.StepJobDescription, steps.StatusCompleted)
	}
	for _, c := range contracts {
		if def, ok := steps.StepRegistry[string(c)]; !ok || def.Category != steps.CategoryGeneration {
			return nil, fmt.Errorf("pipeline: unknown contract %q", c)
		}
		if err := tracker.ValidateDependencies(string(c)); err != nil {
			return nil, fmt.Errorf("%w: %w", generation.ErrEmptyInput, err)
		}
	}

	p := &progress{runID: opts.RunID, fn: opts.OnProgress}
	result := &Result{
		RunID:     opts.RunID,
		Errors:    make(map[generation.Contract]error),
		Durations: make(map[generation.Contract]float64),
	}
	var mu sync.Mutex

	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for _, c := range contracts {
		g.Go(func() error {
			step := string(c)
			tracker.Set(step, steps.StatusInProgress)
			p.emit(step, steps.StatusInProgress, fmt.Sprintf("Running %s contract", c), nil)

			start := time.Now()
			output, err := r.runContract(ctx, c, in)
			elapsed := time.Since(start)

			mu.Lock()
			result.Durations[c] = float64(elapsed.Microseconds()) / 1000
			if err != nil {
				result.Errors[c] = err
			} else {
				result.set(output)
			}
			mu.Unlock()

			if err != nil {
				tracker.Set(step, steps.StatusFailed)
				r.logger().Warn("contract failed", "run_id", opts.RunID, "contract", c, "error", err)
				p.emit(step, steps.StatusFailed, err.Error(), nil)
				return nil
			}
			tracker.Set(step, steps.StatusCompleted)
			r.logger().Info("contract completed", "run_id", opts.RunID, "contract", c, "duration", elapsed)
			p.emit(step, steps.StatusCompleted, fmt.Sprintf("Completed %s contract", c), output)
			return nil
		})
	}
	_ = g.Wait()

	result.Steps = tracker.Snapshot()
	return result, nil
}

func (r *Runner) runContract(ctx context.Context, c generation.Contract, in types.TailorInput) (any, error) {
	switch c {
	case generation.ContractKeywords:
		return r.Generator.AnalyzeKeywords(ctx, in)
	case generation.ContractSuggestions:
		return r.Generator.SuggestEdits(ctx, in)
	case generation.ContractResume:
		return r.Generator.GenerateResume(ctx, in)
	default:
		return nil, &generation.GenerationError{Contract: c, Message: "unknown contract"}
	}
}

func (r *Result) set(output any) {
	switch v := output.(type) {
	case *types.KeywordAnalysis:
		r.Keywords = v
	case *types.EditSuggestions:
		r.Suggestions = v
	case *types.Resume:
		r.Resume = v
	}
}
