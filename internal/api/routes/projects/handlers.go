// Package projects contains handlers for the project resource.
package projects

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	apiError "github.com/matt-dz/tidyplan/internal/api/error"
	"github.com/matt-dz/tidyplan/internal/api/requestid"
	"github.com/matt-dz/tidyplan/internal/api/token"
	"github.com/matt-dz/tidyplan/internal/env"
	tpJson "github.com/matt-dz/tidyplan/internal/json"
)

type CreateProjectRequest struct {
	FamilyID string `json:"family_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type CreateProjectResponse struct {
	ProjectID string `json:"project_id"`
}

// HandleCreateProject godoc
//
//	@Summary	Create a project within a family.
//	@Tags		Project
//
//	@Accept		json
//	@Param		request	body	CreateProjectRequest	true	"Create Project Request"
//	@Param		Cookie	header	string					true	"access=..."
//
//	@Success	200	{object}	CreateProjectResponse
//	@Failure	400	{object}	apiError.Error	"Bad Request"
//	@Router		/api/projects [POST]
func HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request CreateProjectRequest
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

	// Create project
	env.Logger.DebugContext(ctx, "Creating project")
	project, err := env.Database.CreateProject(ctx, request.FamilyID, request.Name, token.UserIDFromCtx(ctx))
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create project", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	resp, err := json.Marshal(CreateProjectResponse{ProjectID: project.ID})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
