// Package mock provides a canned ai.Provider for development and
// tests.
package mock

import (
	"context"
	"log/slog"

	"github.com/matt-dz/tidyplan/internal/ai"
)

// Provider returns fixed suggestions. Fields may be set to steer
// behavior in tests.
type Provider struct {
	logger *slog.Logger

	SuggestTasksResponse []ai.Suggestion
	SuggestTasksError    error

	SuggestTasksCalls int
}

// New creates a mock provider.
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// SuggestTasks returns the configured response, or a default batch of
// household tasks.
func (p *Provider) SuggestTasks(ctx context.Context, params ai.SuggestParams) ([]ai.Suggestion, error) {
	p.SuggestTasksCalls++

	if p.SuggestTasksError != nil {
		return nil, p.SuggestTasksError
	}
	if p.SuggestTasksResponse != nil {
		return p.SuggestTasksResponse, nil
	}

	p.logger.DebugContext(ctx, "returning mock task suggestions",
		slog.String("project", params.ProjectName))

	suggestions := []ai.Suggestion{
		{
			Title:       "Sort items into keep, donate, and discard piles",
			Description: "Go through everything in the target area and make a first-pass decision for each item.",
			Priority:    ai.PriorityHigh,
		},
		{
			Title:       "Schedule a donation drop-off",
			Description: "Find the nearest donation center and pick a date to bring the donate pile.",
			Priority:    ai.PriorityMedium,
		},
		{
			Title:       "Label storage containers",
			Description: "Add labels to each container so everyone in the family can find and return items.",
			Priority:    ai.PriorityLow,
		},
	}

	maxSuggestions := params.MaxSuggestions
	if maxSuggestions > 0 && maxSuggestions < len(suggestions) {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}
