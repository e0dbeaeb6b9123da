// Package ai defines the interface for AI-powered task suggestion.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Provider generates task suggestions for a project.
type Provider interface {
	// SuggestTasks proposes next tasks given the project's goal and
	// what already exists.
	SuggestTasks(ctx context.Context, params SuggestParams) ([]Suggestion, error)
}

// SuggestParams describes the project the suggestions are for.
type SuggestParams struct {
	ProjectName    string   // Project title shown to the model
	Goal           string   // Free-form description of what the project is trying to achieve
	ExistingTasks  []string // Task titles already on the board, to avoid duplicates
	MaxSuggestions int      // Upper bound on returned suggestions; 0 means provider default
}

// Suggestion is a single proposed task.
type Suggestion struct {
	Title       string // Short imperative task title
	Description string // One or two sentences of detail
	Priority    Priority
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether the priority is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

var (
	// ErrRateLimited indicates the provider's rate limit was exceeded.
	ErrRateLimited = errors.New("ai provider rate limit exceeded")

	// ErrUnavailable indicates the provider is temporarily unreachable.
	ErrUnavailable = errors.New("ai service temporarily unavailable")

	// ErrUnauthorized indicates invalid API credentials.
	ErrUnauthorized = errors.New("ai provider authentication failed")

	// ErrDisabled indicates no provider is configured.
	ErrDisabled = errors.New("ai suggestions are disabled")
)

// WrapError adds the failing operation to a provider error.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
