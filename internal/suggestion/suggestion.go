// Package suggestion defines the interface for AI-assisted task field
// suggestions. Implementations analyze a task name alongside the user's
// existing tasks and propose values for priority, duration, dependencies,
// and tags. Suggestions are advisory only: callers fall back to
// DefaultSuggestion when generation fails.
package suggestion

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/planora/planora-api/internal/domain"
)

// Common errors returned by Suggester implementations.
var (
	// ErrEmptyTaskName is returned when the task name to analyze is empty.
	ErrEmptyTaskName = errors.New("task name cannot be empty")

	// ErrGenerationFailed is returned when the model request fails after
	// all retries are exhausted.
	ErrGenerationFailed = errors.New("suggestion generation failed")

	// ErrInvalidResponse is returned when the model responds with content
	// that cannot be parsed into a Suggestion.
	ErrInvalidResponse = errors.New("invalid suggestion response")
)

// Suggestion holds AI-proposed values for a task's plannable fields.
type Suggestion struct {
	Priority     domain.Priority `json:"priority"`
	Duration     float64         `json:"duration"`
	Dependencies []uuid.UUID     `json:"dependencies"`
	Tags         []string        `json:"tags"`
}

// DefaultSuggestion returns the fallback used when generation is
// unavailable or fails: medium priority, one hour, no dependencies or tags.
func DefaultSuggestion() Suggestion {
	return Suggestion{
		Priority:     domain.PriorityMedium,
		Duration:     1,
		Dependencies: []uuid.UUID{},
		Tags:         []string{},
	}
}

// Suggester generates field suggestions for a task being created.
type Suggester interface {
	// Suggest proposes field values for a task with the given name,
	// using the owner's existing tasks as context for dependency and
	// tag suggestions.
	Suggest(ctx context.Context, taskName string, existing []*domain.Task) (Suggestion, error)
}
