package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/llm/llmtest"
	"github.com/jonathan/resume-tailor/internal/pipeline/steps"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeJSON = `{"name": "Jane Doe", "email": "jane@example.com", "phone": "555-1234",
 "summary": {"title": "Summary", "body": "Engineer."}, "workExperience": [], "education": [],
 "fullResumeText": "Jane Doe"}`

var tailorInput = types.TailorInput{ResumeText: "Jane Doe, Go engineer", JobDescription: "Go role"}

// contractOf tells which contract a structured request belongs to by its schema
func contractOf(schema *llm.Schema) generation.Contract {
	switch {
	case slices.Contains(schema.Required, "keywords"):
		return generation.ContractKeywords
	case slices.Contains(schema.Required, "suggestedEdits"):
		return generation.ContractSuggestions
	default:
		return generation.ContractResume
	}
}

func fakeModel(fail map[generation.Contract]error) *llmtest.MockClient {
	return &llmtest.MockClient{
		GenerateStructuredFunc: func(_ context.Context, _ string, schema *llm.Schema, _ llm.ModelTier) (string, error) {
			c := contractOf(schema)
			if err := fail[c]; err != nil {
				return "", err
			}
			switch c {
			case generation.ContractKeywords:
				return `{"keywords": "Go, Kubernetes"}`, nil
			case generation.ContractSuggestions:
				return `{"suggestedEdits": "Add metrics"}`, nil
			default:
				return resumeJSON, nil
			}
		},
	}
}

func newRunner(client llm.Client) *Runner {
	return &Runner{Generator: generation.New(client, generation.Options{})}
}

func TestTailor_AllContracts(t *testing.T) {
	result, err := newRunner(fakeModel(nil)).Tailor(context.Background(), tailorInput, RunOptions{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.Keywords)
	assert.Equal(t, "Go, Kubernetes", result.Keywords.Keywords)
	require.NotNil(t, result.Suggestions)
	assert.Equal(t, "Add metrics", result.Suggestions.SuggestedEdits)
	require.NotNil(t, result.Resume)
	assert.Equal(t, "Jane Doe", result.Resume.Name)

	for _, step := range []string{steps.StepKeywords, steps.StepSuggestions, steps.StepResume} {
		assert.Equal(t, steps.StatusCompleted, result.Steps[step], step)
	}
	assert.Len(t, result.Durations, 3)
}

func TestTailor_IndependentFailures(t *testing.T) {
	boom := errors.New("model overloaded")
	client := fakeModel(map[generation.Contract]error{generation.ContractSuggestions: boom})

	result, err := newRunner(client).Tailor(context.Background(), tailorInput, RunOptions{})
	require.NoError(t, err)

	assert.NotNil(t, result.Keywords)
	assert.NotNil(t, result.Resume)
	assert.Nil(t, result.Suggestions)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[generation.ContractSuggestions], boom)
	assert.Contains(t, result.ErrorMessages()["suggestions"], "model overloaded")
	assert.Equal(t, steps.StatusFailed, result.Steps[steps.StepSuggestions])
	assert.NotEmpty(t, result.RunID)
}

func TestTailor_RunsContractsConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(3)
	allStarted := make(chan struct{})
	go func() {
		wg.Wait()
		close(allStarted)
	}()

	inner := fakeModel(nil)
	client := &llmtest.MockClient{
		GenerateStructuredFunc: func(ctx context.Context, prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
			wg.Done()
			select {
			case <-allStarted:
			case <-time.After(5 * time.Second):
				return "", errors.New("contracts did not run concurrently")
			}
			return inner.GenerateStructuredFunc(ctx, prompt, schema, tier)
		},
	}

	result, err := newRunner(client).Tailor(context.Background(), tailorInput, RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
}

func TestTailor_SubsetOfContracts(t *testing.T) {
	client := fakeModel(nil)
	result, err := newRunner(client).Tailor(context.Background(), tailorInput, RunOptions{
		Contracts: []generation.Contract{generation.ContractKeywords},
	})
	require.NoError(t, err)

	assert.NotNil(t, result.Keywords)
	assert.Nil(t, result.Resume)
	assert.Len(t, client.Calls(), 1)
	assert.Equal(t, steps.StatusPending, result.Steps[steps.StepResume])
}

func TestTailor_RejectsBadRuns(t *testing.T) {
	r := newRunner(fakeModel(nil))

	_, err := r.Tailor(context.Background(), types.TailorInput{ResumeText: "x"}, RunOptions{})
	assert.ErrorIs(t, err, generation.ErrEmptyInput)
	var depErr *steps.DependencyError
	assert.ErrorAs(t, err, &depErr)

	_, err = r.Tailor(context.Background(), tailorInput, RunOptions{Contracts: []generation.Contract{generation.ContractChat}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown contract")

	_, err = (&Runner{}).Tailor(context.Background(), tailorInput, RunOptions{})
	assert.Error(t, err)
}

func TestTailor_ProgressEvents(t *testing.T) {
	var events []ProgressEvent
	_, err := newRunner(fakeModel(nil)).Tailor(context.Background(), tailorInput, RunOptions{
		RunID:      "run-2",
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	require.Len(t, events, 6)
	completed := map[string]ProgressEvent{}
	for _, e := range events {
		assert.Equal(t, "run-2", e.RunID)
		assert.Equal(t, steps.CategoryGeneration, e.Category)
		if e.Status == steps.StatusCompleted {
			completed[e.Step] = e
		}
	}
	require.Len(t, completed, 3)
	assert.IsType(t, &types.Resume{}, completed[steps.StepResume].Content)
}

func TestRun_FromSources(t *testing.T) {
	jobPath := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(jobPath, []byte("Senior Go engineer building payment systems"), 0o644))

	client := fakeModel(nil)
	var events []ProgressEvent
	result, err := newRunner(client).Run(context.Background(), Sources{
		ResumeFilename: "resume.txt",
		ResumeData:     []byte("Jane Doe\nGo engineer with ten years of experience"),
		JobPath:        jobPath,
	}, RunOptions{OnProgress: func(e ProgressEvent) { events = append(events, e) }})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	require.NotEmpty(t, events)
	assert.Equal(t, steps.StepResumeText, events[0].Step)
	assert.Equal(t, steps.CategoryIngestion, events[0].Category)

	calls := client.Calls()
	require.NotEmpty(t, calls)
	assert.Contains(t, calls[0].Prompt, "Go engineer with ten years of experience")
	assert.Contains(t, calls[0].Prompt, "Senior Go engineer building payment systems")
}

func TestPrepare_Errors(t *testing.T) {
	r := newRunner(fakeModel(nil))

	_, err := r.Prepare(context.Background(), Sources{JobDescription: "Go role"})
	assert.ErrorIs(t, err, ErrNoResume)

	_, err = r.Prepare(context.Background(), Sources{ResumeText: "Jane"})
	assert.ErrorIs(t, err, ErrNoJob)

	_, err = r.Prepare(context.Background(), Sources{
		ResumeFilename: "photo.png",
		ResumeData:     []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
		JobDescription: "Go role",
	})
	var extractErr *ingestion.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, ingestion.ReasonUnsupportedType, extractErr.Reason)
}

func TestPrepare_TextWins(t *testing.T) {
	in, err := newRunner(fakeModel(nil)).Prepare(context.Background(), Sources{
		ResumeText:     "  typed resume  ",
		ResumePath:     "/does/not/exist.pdf",
		JobDescription: " typed job ",
		JobURL:         "http://unused.invalid",
	})
	require.NoError(t, err)
	assert.Equal(t, types.TailorInput{ResumeText: "typed resume", JobDescription: "typed job"}, in)
}
