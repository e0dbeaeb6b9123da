// Package error defines the API error taxonomy and its JSON encoding.
package error

import "net/http"

type ErrorCode string

const (
	UnknownError            ErrorCode = "unknown_error"
	InternalServerError     ErrorCode = "internal_server_error"
	BadRequest              ErrorCode = "bad_request"
	InvalidCredentials      ErrorCode = "invalid_credentials"
	MissingCredentials      ErrorCode = "missing_credentials"
	InvalidAccessToken      ErrorCode = "invalid_access_token"
	ExpiredAccessToken      ErrorCode = "expired_access_token"
	InsufficientPermissions ErrorCode = "insufficient_permissions"
	WeakPassword            ErrorCode = "weak_password"
	EmailConflict           ErrorCode = "email_conflict"
	UserNotFound            ErrorCode = "user_not_found"
	FamilyNotFound          ErrorCode = "family_not_found"
	ProjectNotFound         ErrorCode = "project_not_found"
	InvalidInvitationCode   ErrorCode = "invalid_invitation_code"
	InvitationNotFound      ErrorCode = "invitation_not_found"
	InvitationUnusable      ErrorCode = "invitation_invalid_or_expired"
	InvitationCorrupted     ErrorCode = "invitation_corrupted"
	JoinFailed              ErrorCode = "join_failed"
	SuggestionsUnavailable  ErrorCode = "suggestions_unavailable"
)

var errorCodeToStatusCode = map[ErrorCode]int{
	UnknownError:            0, // No error code - unknown
	InternalServerError:     http.StatusInternalServerError,
	BadRequest:              http.StatusBadRequest,
	InvalidCredentials:      http.StatusUnauthorized,
	MissingCredentials:      http.StatusUnauthorized,
	InvalidAccessToken:      http.StatusUnauthorized,
	ExpiredAccessToken:      http.StatusUnauthorized,
	InsufficientPermissions: http.StatusForbidden,
	WeakPassword:            http.StatusUnprocessableEntity,
	EmailConflict:           http.StatusConflict,
	UserNotFound:            http.StatusNotFound,
	FamilyNotFound:          http.StatusNotFound,
	ProjectNotFound:         http.StatusNotFound,
	InvalidInvitationCode:   http.StatusUnprocessableEntity,
	InvitationNotFound:      http.StatusNotFound,
	InvitationUnusable:      http.StatusGone,
	InvitationCorrupted:     http.StatusInternalServerError,
	JoinFailed:              http.StatusBadGateway,
	SuggestionsUnavailable:  http.StatusServiceUnavailable,
}

func (ec ErrorCode) StatusCode() int {
	return errorCodeToStatusCode[ec]
}

func (ec ErrorCode) String() string {
	return string(ec)
}
