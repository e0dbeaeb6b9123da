package invite

import "time"

// TargetType names the entity an invitation joins the redeeming user to.
type TargetType string

const (
	TargetFamily  TargetType = "family"
	TargetProject TargetType = "project"
)

// Valid reports whether the target type is known.
func (t TargetType) Valid() bool {
	return t == TargetFamily || t == TargetProject
}

// Invitation is one issued code. Rows are keyed by the normalized code,
// so uniqueness is enforced by the store itself. All fields except
// UsedCount, UsedBy and IsActive are immutable after creation.
type Invitation struct {
	Code       string
	TargetID   string
	TargetType TargetType
	CreatedBy  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	MaxUses    int
	UsedCount  int
	IsActive   bool
	UsedBy     []string
}

// IsValid is the redemption gate: active, unexpired, and not exhausted.
// Callers evaluate it fresh on every attempt; the result is never
// cached.
func (inv Invitation) IsValid(now time.Time) bool {
	return inv.IsActive &&
		now.Before(inv.ExpiresAt) &&
		inv.UsedCount < inv.MaxUses
}
