// Package invitations contains handlers for issuing, validating,
// redeeming and revoking invitation codes.
package invitations

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	apiError "github.com/matt-dz/tidyplan/internal/api/error"
	"github.com/matt-dz/tidyplan/internal/api/requestid"
	"github.com/matt-dz/tidyplan/internal/api/token"
	"github.com/matt-dz/tidyplan/internal/env"
	"github.com/matt-dz/tidyplan/internal/invitations"
	"github.com/matt-dz/tidyplan/internal/invite"
	tpJson "github.com/matt-dz/tidyplan/internal/json"
)

// HandleCreateInvitation godoc
//
//	@Summary	Create an invitation code.
//	@Tags		Invitations
//
//	@Accept		json
//	@Param		request	body	CreateInvitationRequest	true	"Create Invitation Request"
//	@Param		Cookie	header	string					true	"access=..."
//
//	@Success	200	{object}	CreateInvitationResponse
//	@Failure	400	{object}	apiError.Error	"Bad Request"
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/invitations [POST]
func HandleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request CreateInvitationRequest
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

	kind := invite.CodeKindLegacy
	if request.Format == "new" {
		kind = invite.CodeKindNew
	}
	var ttl time.Duration
	if request.TTL != "" {
		var err error
		ttl, err = time.ParseDuration(request.TTL)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to parse ttl", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.BadRequest, "invalid ttl", requestID)
			return
		}
	}

	// Issue invitation
	env.Logger.DebugContext(ctx, "Creating invitation")
	inv, err := env.Invitations.CreateInvitation(ctx, invitations.CreateParams{
		TargetID:   request.TargetID,
		TargetType: invite.TargetType(request.TargetType),
		CreatedBy:  token.UserIDFromCtx(ctx),
		Kind:       kind,
		MaxUses:    request.MaxUses,
		TTL:        ttl,
	})
	if errors.Is(err, invitations.ErrUserNotAuthenticated) {
		env.Logger.ErrorContext(ctx, "No acting user for invitation", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.MissingCredentials, "authentication required", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create invitation", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	format, _ := invite.Classify(inv.Code)

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	writeJSON(w, env, ctx, CreateInvitationResponse{
		Code:       inv.Code,
		Display:    format.DisplayFormat(),
		Format:     format.Kind.String(),
		TargetID:   inv.TargetID,
		TargetType: string(inv.TargetType),
		ExpiresAt:  inv.ExpiresAt,
		MaxUses:    inv.MaxUses,
	})
}

// HandleValidateInvitation godoc
//
//	@Summary	Validate an invitation code without consuming it.
//	@Tags		Invitations
//
//	@Accept		json
//	@Param		request	body	ValidateInvitationRequest	true	"Validate Invitation Request"
//
//	@Success	200	{object}	ValidateInvitationResponse
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Failure	410	{object}	apiError.Error	"Gone"
//	@Failure	422	{object}	apiError.Error	"Unprocessable Entity"
//	@Router		/api/invitations/validate [POST]
func HandleValidateInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request ValidateInvitationRequest
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

	// Look up invitation
	env.Logger.DebugContext(ctx, "Validating invitation code")
	preview, err := env.Invitations.ValidateInvitationCode(ctx, request.Code)
	if err != nil {
		encodeInvitationError(w, r, err, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	writeJSON(w, env, ctx, ValidateInvitationResponse{
		TargetID:   preview.TargetID,
		TargetType: string(preview.TargetType),
		TargetName: preview.TargetName,
		Format:     preview.Format.Kind.String(),
		Display:    preview.Format.DisplayFormat(),
	})
}

// HandleJoinInvitation godoc
//
//	@Summary	Redeem an invitation code and join its target.
//	@Tags		Invitations
//
//	@Accept		json
//	@Param		request	body	JoinInvitationRequest	true	"Join Invitation Request"
//	@Param		Cookie	header	string					true	"access=..."
//
//	@Success	204
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Failure	410	{object}	apiError.Error	"Gone"
//	@Failure	422	{object}	apiError.Error	"Unprocessable Entity"
//	@Failure	502	{object}	apiError.Error	"Bad Gateway"
//	@Router		/api/invitations/join [POST]
func HandleJoinInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request JoinInvitationRequest
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

	// Redeem invitation
	env.Logger.DebugContext(ctx, "Redeeming invitation")
	err := env.Invitations.JoinWithInvitationCode(ctx, request.Code, token.UserIDFromCtx(ctx))
	if err != nil {
		encodeInvitationError(w, r, err, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Writing response")
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeInvitation godoc
//
//	@Summary	Revoke an invitation code.
//	@Tags		Invitations
//
//	@Param		code	path	string	true	"Invitation code"
//	@Param		Cookie	header	string	true	"access=..."
//
//	@Success	204
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Failure	422	{object}	apiError.Error	"Unprocessable Entity"
//	@Router		/api/invitations/{code} [DELETE]
func HandleRevokeInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	env.Logger.DebugContext(ctx, "Revoking invitation")
	err := env.Invitations.RevokeInvitation(ctx, chi.URLParam(r, "code"))
	if err != nil {
		encodeInvitationError(w, r, err, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Writing response")
	w.WriteHeader(http.StatusNoContent)
}

// encodeInvitationError maps service errors onto the API error
// taxonomy.
func encodeInvitationError(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	var invalidCode *invitations.InvalidCodeError
	var joinErr *invitations.JoinError
	switch {
	case errors.Is(err, invitations.ErrUserNotAuthenticated):
		env.Logger.ErrorContext(ctx, "No acting user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.MissingCredentials, "authentication required", requestID)
	case errors.As(err, &invalidCode):
		env.Logger.ErrorContext(ctx, "Malformed invitation code", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidInvitationCode, invalidCode.Reason, requestID)
	case errors.Is(err, invitations.ErrNotFound):
		env.Logger.ErrorContext(ctx, "Invitation not found", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvitationNotFound, "invitation not found", requestID)
	case errors.Is(err, invitations.ErrInvalidOrExpired):
		env.Logger.ErrorContext(ctx, "Invitation invalid or expired", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvitationUnusable, "invitation is invalid or expired", requestID)
	case errors.Is(err, invitations.ErrCorruptedData):
		env.Logger.ErrorContext(ctx, "Invitation record corrupted", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvitationCorrupted, "invitation data is corrupted", requestID)
	case errors.As(err, &joinErr):
		env.Logger.ErrorContext(ctx, "Join side effect failed", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.JoinFailed, "could not complete the join, please retry", requestID)
	default:
		env.Logger.ErrorContext(ctx, "Invitation operation failed", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
	}
}

func writeJSON(w http.ResponseWriter, env *env.Env, ctx context.Context, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
