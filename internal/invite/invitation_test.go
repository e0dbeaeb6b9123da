package invite

import (
	"testing"
	"time"
)

func TestInvitationIsValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := Invitation{
		Code:       "V7DBKV",
		TargetID:   "family-1",
		TargetType: TargetFamily,
		CreatedBy:  "user-1",
		CreatedAt:  now.Add(-24 * time.Hour),
		ExpiresAt:  now.Add(6 * 24 * time.Hour),
		MaxUses:    3,
		UsedCount:  0,
		IsActive:   true,
	}

	tests := []struct {
		name   string
		mutate func(*Invitation)
		want   bool
	}{
		{name: "fresh invitation", mutate: func(*Invitation) {}, want: true},
		{name: "partially used", mutate: func(i *Invitation) { i.UsedCount = 2 }, want: true},
		{name: "exhausted", mutate: func(i *Invitation) { i.UsedCount = i.MaxUses }, want: false},
		{name: "over-used", mutate: func(i *Invitation) { i.UsedCount = i.MaxUses + 1 }, want: false},
		{name: "expired", mutate: func(i *Invitation) { i.ExpiresAt = now.Add(-time.Minute) }, want: false},
		{name: "expires exactly now", mutate: func(i *Invitation) { i.ExpiresAt = now }, want: false},
		{name: "revoked", mutate: func(i *Invitation) { i.IsActive = false }, want: false},
		{name: "revoked and expired", mutate: func(i *Invitation) {
			i.IsActive = false
			i.ExpiresAt = now.Add(-time.Hour)
		}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := base
			tt.mutate(&inv)
			if got := inv.IsValid(now); got != tt.want {
				t.Errorf("IsValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetTypeValid(t *testing.T) {
	if !TargetFamily.Valid() || !TargetProject.Valid() {
		t.Error("family and project must be valid target types")
	}
	if TargetType("group").Valid() {
		t.Error("unknown target type must be invalid")
	}
	if TargetType("").Valid() {
		t.Error("empty target type must be invalid")
	}
}
