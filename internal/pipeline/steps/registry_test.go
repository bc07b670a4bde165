package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRegistry(t *testing.T) {
	for name, def := range StepRegistry {
		assert.Equal(t, name, def.Name)
		assert.NotEmpty(t, def.Category, "step %s has no category", name)
		for _, dep := range def.Dependencies {
			_, ok := StepRegistry[dep]
			assert.True(t, ok, "step %s depends on unknown step %s", name, dep)
		}
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryIngestion, Category(StepResumeText))
	assert.Equal(t, CategoryGeneration, Category(StepResume))
	assert.Equal(t, "", Category("nope"))
}

func TestTracker_Dependencies(t *testing.T) {
	tr := NewTracker()

	err := tr.ValidateDependencies(StepKeywords)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, []string{StepResumeText, StepJobDescription}, depErr.MissingDependencies)
	assert.Contains(t, depErr.Error(), "keywords")

	assert.Equal(t, []string{StepJobDescription, StepResumeText}, tr.Available())
	assert.Equal(t, []string{StepKeywords, StepResume, StepSuggestions}, tr.Blocked())

	tr.Set(StepResumeText, StatusCompleted)
	tr.Set(StepJobDescription, StatusCompleted)
	assert.NoError(t, tr.ValidateDependencies(StepKeywords))
	assert.Equal(t, []string{StepKeywords, StepResume, StepSuggestions}, tr.Available())
	assert.Empty(t, tr.Blocked())
}

func TestTracker_UnknownStep(t *testing.T) {
	err := NewTracker().ValidateDependencies("render_pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := NewTracker()
	snap := tr.Snapshot()
	snap[StepResume] = StatusFailed

	assert.Equal(t, StatusPending, tr.Status(StepResume))
	assert.Len(t, snap, len(StepRegistry))
}
