package invitations

import "time"

type CreateInvitationResponse struct {
	Code       string    `json:"code"`
	Display    string    `json:"display"`
	Format     string    `json:"format"`
	TargetID   string    `json:"target_id"`
	TargetType string    `json:"target_type"`
	ExpiresAt  time.Time `json:"expires_at"`
	MaxUses    int       `json:"max_uses"`
}

type ValidateInvitationResponse struct {
	TargetID   string `json:"target_id"`
	TargetType string `json:"target_type"`
	TargetName string `json:"target_name"`
	Format     string `json:"format"`
	Display    string `json:"display"`
}
