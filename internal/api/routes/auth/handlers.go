// Package auth contains handlers for the auth endpoints.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	apiError "github.com/matt-dz/tidyplan/internal/api/error"
	"github.com/matt-dz/tidyplan/internal/api/requestid"
	"github.com/matt-dz/tidyplan/internal/api/token"
	"github.com/matt-dz/tidyplan/internal/argon2id"
	"github.com/matt-dz/tidyplan/internal/env"
	tpJson "github.com/matt-dz/tidyplan/internal/json"
	"github.com/matt-dz/tidyplan/internal/jwt"
)

// HandleLogin godoc
//
//	@Summary	User login.
//	@Tags		Auth
//
//	@Accept		json
//	@Param		request	body	LoginRequest	true	"Login Request"
//
//	@Success	204
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/auth/login [POST]
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request LoginRequest
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

	// Retrieve user information
	env.Logger.DebugContext(ctx, "Retrieving user information")
	user, err := env.Database.GetUserByEmail(ctx, request.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "User with email does not exist",
			slog.String("email", request.Email))
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "email or password is incorrect", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user information", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Compare passwords
	env.Logger.DebugContext(ctx, "Comparing passwords")
	argonParams, argonSalt, trueHash, err := argon2id.DecodeHash(user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode password hash", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	givenHash := argon2id.HashWithSalt(request.Password, *argonParams, argonSalt)
	if subtle.ConstantTimeCompare(givenHash, trueHash) != 1 {
		env.Logger.ErrorContext(ctx, "Given password is incorrect")
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "email or password is incorrect", requestID)
		return
	}

	// Create access token
	env.Logger.DebugContext(ctx, "Generating access token")
	accessToken, err := token.NewAccessToken(jwt.Params{
		UserID: user.ID,
		Role:   user.Role,
	}, env)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create access token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	http.SetCookie(w, token.NewAccessTokenCookie(accessToken, env))
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerifySession godoc
//
//	@Summary		Verify user session
//	@Description	Validates the user's access token cookie, checks expiration,
//	@Description	and ensures the user has the required role.
//	@Tags			Auth
//	@Produce		json
//	@Success		204	"Session is valid"
//	@Failure		401	{object}	apiError.Error	"Expired or invalid access token"
//	@Failure		403	{object}	apiError.Error	"Insufficient permissions"
//	@Router			/api/auth/session/verify [GET]
func HandleVerifySession(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
