package invitations

import (
	"context"
	"time"

	"github.com/matt-dz/tidyplan/internal/invite"
)

// RedeemParams describes one redemption attempt.
type RedeemParams struct {
	Code   string // normalized code
	UserID string
	Now    time.Time
}

// Store is the persistence boundary for invitations. Implementations
// must provide four capabilities: keyed creation, keyed lookup, an
// atomic redeem (read-check-increment-and-apply in one transaction),
// and revocation.
type Store interface {
	// CreateInvitation persists a new invitation keyed by its code.
	// Returns ErrCodeTaken if the code is already in use.
	CreateInvitation(ctx context.Context, inv invite.Invitation) error

	// GetInvitation looks up an invitation by normalized code.
	// Returns ErrNotFound if absent and ErrCorruptedData if the stored
	// record cannot be parsed.
	GetInvitation(ctx context.Context, code string) (invite.Invitation, error)

	// RedeemInvitation atomically re-reads the invitation, re-checks
	// the validity gate, applies the membership side effect for the
	// target, increments the usage counter and records the redeemer.
	// A user who is already a member redeems idempotently: success
	// without incrementing. Either every effect commits or none do.
	// Returns ErrInvalidOrExpired if the gate fails inside the
	// transaction.
	RedeemInvitation(ctx context.Context, params RedeemParams) error

	// RevokeInvitation clears the active flag. Revocation is terminal.
	RevokeInvitation(ctx context.Context, code string) error

	// TargetName resolves the display name of an invitation target.
	TargetName(ctx context.Context, targetType invite.TargetType, targetID string) (string, error)
}
