// Package families contains handlers for the family resource.
package families

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

type CreateFamilyRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateFamilyResponse struct {
	FamilyID string `json:"family_id"`
}

// HandleCreateFamily godoc
//
//	@Summary	Create a family.
//	@Tags		Family
//
//	@Accept		json
//	@Param		request	body	CreateFamilyRequest	true	"Create Family Request"
//	@Param		Cookie	header	string				true	"access=..."
//
//	@Success	200	{object}	CreateFamilyResponse
//	@Failure	400	{object}	apiError.Error	"Bad Request"
//	@Router		/api/families [POST]
func HandleCreateFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request CreateFamilyRequest
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

	// Create family
	env.Logger.DebugContext(ctx, "Creating family")
	family, err := env.Database.CreateFamily(ctx, request.Name, token.UserIDFromCtx(ctx))
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create family", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	resp, err := json.Marshal(CreateFamilyResponse{FamilyID: family.ID})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
