// Package tasks contains handlers for AI-assisted task planning.
package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/matt-dz/tidyplan/internal/ai"
	apiError "github.com/matt-dz/tidyplan/internal/api/error"
	"github.com/matt-dz/tidyplan/internal/api/requestid"
	"github.com/matt-dz/tidyplan/internal/env"
	tpJson "github.com/matt-dz/tidyplan/internal/json"
	"github.com/matt-dz/tidyplan/internal/metrics"
)

type SuggestTasksRequest struct {
	ProjectName    string   `json:"project_name" validate:"required"`
	Goal           string   `json:"goal"`
	ExistingTasks  []string `json:"existing_tasks"`
	MaxSuggestions int      `json:"max_suggestions" validate:"omitempty,min=1,max=10"`
}

type TaskSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type SuggestTasksResponse struct {
	Suggestions []TaskSuggestion `json:"suggestions"`
}

// HandleSuggestTasks godoc
//
//	@Summary	Suggest next tasks for a project.
//	@Tags		Tasks
//
//	@Accept		json
//	@Param		request	body	SuggestTasksRequest	true	"Suggest Tasks Request"
//	@Param		Cookie	header	string				true	"access=..."
//
//	@Success	200	{object}	SuggestTasksResponse
//	@Failure	400	{object}	apiError.Error	"Bad Request"
//	@Failure	503	{object}	apiError.Error	"Service Unavailable"
//	@Router		/api/tasks/suggest [POST]
func HandleSuggestTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request SuggestTasksRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := tpJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	if env.AI == nil {
		env.Logger.ErrorContext(ctx, "No AI provider configured")
		_ = apiError.EncodeError(w, apiError.SuggestionsUnavailable, "task suggestions are disabled", requestID)
		return
	}

	// Generate suggestions
	env.Logger.DebugContext(ctx, "Generating task suggestions")
	suggestions, err := env.AI.SuggestTasks(ctx, ai.SuggestParams{
		ProjectName:    request.ProjectName,
		Goal:           request.Goal,
		ExistingTasks:  request.ExistingTasks,
		MaxSuggestions: request.MaxSuggestions,
	})
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues("error").Inc()
		env.Logger.ErrorContext(ctx, "Failed to generate suggestions", slog.Any("error", err))
		switch {
		case errors.Is(err, ai.ErrRateLimited), errors.Is(err, ai.ErrUnavailable), errors.Is(err, ai.ErrDisabled):
			_ = apiError.EncodeError(w, apiError.SuggestionsUnavailable, "task suggestions are temporarily unavailable", requestID)
		default:
			_ = apiError.EncodeInternalError(w, requestID)
		}
		return
	}
	metrics.AIRequestsTotal.WithLabelValues("ok").Inc()

	response := SuggestTasksResponse{
		Suggestions: make([]TaskSuggestion, 0, len(suggestions)),
	}
	for _, s := range suggestions {
		response.Suggestions = append(response.Suggestions, TaskSuggestion{
			Title:       s.Title,
			Description: s.Description,
			Priority:    string(s.Priority),
		})
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	resp, err := json.Marshal(response)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
