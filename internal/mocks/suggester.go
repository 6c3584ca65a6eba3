package mocks

import (
	"context"

	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/suggestion"
)

// MockSuggester implements suggestion.Suggester for testing.
type MockSuggester struct {
	SuggestFn func(ctx context.Context, taskName string, existing []*domain.Task) (suggestion.Suggestion, error)

	// Default values used when SuggestFn isn't defined
	Result suggestion.Suggestion
	Err    error
}

var _ suggestion.Suggester = (*MockSuggester)(nil)

// Suggest implements the suggestion.Suggester interface.
func (m *MockSuggester) Suggest(
	ctx context.Context,
	taskName string,
	existing []*domain.Task,
) (suggestion.Suggestion, error) {
	if m.SuggestFn != nil {
		return m.SuggestFn(ctx, taskName, existing)
	}
	return m.Result, m.Err
}
