package invitations

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotAuthenticated is returned when no acting user id is
	// available for an operation that requires one.
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// ErrNotFound is returned when no invitation exists for a code.
	ErrNotFound = errors.New("invitation not found")

	// ErrInvalidOrExpired is returned when an invitation exists but
	// fails the validity gate. Expired, exhausted and revoked are
	// deliberately indistinguishable to callers.
	ErrInvalidOrExpired = errors.New("invitation invalid or expired")

	// ErrCorruptedData is returned when a stored invitation cannot be
	// parsed. This is a data-integrity fault, not a user error.
	ErrCorruptedData = errors.New("invitation record corrupted")

	// ErrCodeTaken is returned by stores when an invitation with the
	// same code already exists. Issuance retries generation on it.
	ErrCodeTaken = errors.New("invitation code already exists")
)

// InvalidCodeError reports input that failed normalization-side
// validation, carrying the user-facing reason.
type InvalidCodeError struct {
	Reason string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid invitation code: %s", e.Reason)
}

// JoinError reports a membership side effect that failed after the
// validity gate passed. The enclosing transaction has been rolled
// back, so the usage counter is untouched and the whole redemption may
// be retried.
type JoinError struct {
	Err error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("join failed: %v", e.Err)
}

func (e *JoinError) Unwrap() error {
	return e.Err
}
