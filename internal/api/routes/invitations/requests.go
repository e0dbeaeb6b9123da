package invitations

type CreateInvitationRequest struct {
	TargetID   string `json:"target_id" validate:"required"`
	TargetType string `json:"target_type" validate:"required,oneof=family project"`
	Format     string `json:"format" validate:"omitempty,oneof=legacy new"`
	MaxUses    int    `json:"max_uses" validate:"omitempty,min=1"`
	TTL        string `json:"ttl" validate:"omitempty"`
}

type ValidateInvitationRequest struct {
	Code string `json:"code" validate:"required"`
}

type JoinInvitationRequest struct {
	Code string `json:"code" validate:"required"`
}
