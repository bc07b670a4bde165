// Package steps defines the tailoring pipeline steps, their dependencies and an
// in-memory tracker of step status for a single run.
package steps

import (
	"fmt"
	"sort"
	"sync"
)

// Step categories
const (
	CategoryIngestion  = "ingestion"
	CategoryGeneration = "generation"
)

// Step names. Generation steps share their names with the generation contracts.
const (
	StepResumeText     = "resume_text"
	StepJobDescription = "job_description"
	StepKeywords       = "keywords"
	StepSuggestions    = "suggestions"
	StepResume         = "resume"
)

// Status is the state of a step within one run
type Status string

// Step statuses
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepResumeText: {
		Name:     StepResumeText,
		Category: CategoryIngestion,
	},
	StepJobDescription: {
		Name:     StepJobDescription,
		Category: CategoryIngestion,
	},
	StepKeywords: {
		Name:         StepKeywords,
		Category:     CategoryGeneration,
		Dependencies: []string{StepResumeText, StepJobDescription},
	},
	StepSuggestions: {
		Name:         StepSuggestions,
		Category:     CategoryGeneration,
		Dependencies: []string{StepResumeText, StepJobDescription},
	},
	StepResume: {
		Name:         StepResume,
		Category:     CategoryGeneration,
		Dependencies: []string{StepResumeText, StepJobDescription},
	},
}

// Category returns the category of a step, or "" for unknown steps
func Category(step string) string {
	return StepRegistry[step].Category
}

// DependencyError represents missing step dependencies
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s is missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Tracker records step status for one run. It is safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	status map[string]Status
}

// NewTracker returns a tracker with every registered step pending
func NewTracker() *Tracker {
	t := &Tracker{status: make(map[string]Status, len(StepRegistry))}
	for name := range StepRegistry {
		t.status[name] = StatusPending
	}
	return t
}

// Set records the status of a step
func (t *Tracker) Set(step string, s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[step] = s
}

// Status returns the recorded status of a step
func (t *Tracker) Status(step string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status[step]
}

// Snapshot returns a copy of every step status
func (t *Tracker) Snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Status, len(t.status))
	for k, v := range t.status {
		out[k] = v
	}
	return out
}

// ValidateDependencies checks if all required dependencies for a step are completed
func (t *Tracker) ValidateDependencies(step string) error {
	def, ok := StepRegistry[step]
	if !ok {
		return fmt.Errorf("unknown step: %s", step)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if t.Status(dep) != StatusCompleted {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: step, MissingDependencies: missing}
	}
	return nil
}

// Available returns pending steps whose dependencies are met, sorted by name
func (t *Tracker) Available() []string {
	return t.filter(func(step string) bool {
		return t.Status(step) == StatusPending && t.ValidateDependencies(step) == nil
	})
}

// Blocked returns pending steps with unmet dependencies, sorted by name
func (t *Tracker) Blocked() []string {
	return t.filter(func(step string) bool {
		return t.Status(step) == StatusPending && t.ValidateDependencies(step) != nil
	})
}

func (t *Tracker) filter(keep func(step string) bool) []string {
	var out []string
	for name := range StepRegistry {
		if keep(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
