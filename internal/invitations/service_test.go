package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-dz/tidyplan/internal/invite"
)

// fakeStore is an in-memory Store. A mutex around RedeemInvitation
// stands in for the real store's transaction.
type fakeStore struct {
	mu          sync.Mutex
	invitations map[string]*invite.Invitation
	members     map[string]map[string]bool // targetID -> userID set
	names       map[string]string
	corrupted   map[string]bool

	failCreates int // force ErrCodeTaken on the next n creates
	applyErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invitations: make(map[string]*invite.Invitation),
		members:     make(map[string]map[string]bool),
		names:       make(map[string]string),
		corrupted:   make(map[string]bool),
	}
}

func (f *fakeStore) CreateInvitation(_ context.Context, inv invite.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreates > 0 {
		f.failCreates--
		return ErrCodeTaken
	}
	if _, exists := f.invitations[inv.Code]; exists {
		return ErrCodeTaken
	}
	f.invitations[inv.Code] = &inv
	return nil
}

func (f *fakeStore) GetInvitation(_ context.Context, code string) (invite.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.corrupted[code] {
		return invite.Invitation{}, ErrCorruptedData
	}
	inv, ok := f.invitations[code]
	if !ok {
		return invite.Invitation{}, ErrNotFound
	}
	return *inv, nil
}

func (f *fakeStore) RedeemInvitation(_ context.Context, params RedeemParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	inv, ok := f.invitations[params.Code]
	if !ok {
		return ErrNotFound
	}
	if !inv.IsValid(params.Now) {
		return ErrInvalidOrExpired
	}
	if f.members[inv.TargetID][params.UserID] {
		return nil // already a member: idempotent, no increment
	}
	if f.applyErr != nil {
		return f.applyErr
	}
	if f.members[inv.TargetID] == nil {
		f.members[inv.TargetID] = make(map[string]bool)
	}
	f.members[inv.TargetID][params.UserID] = true
	inv.UsedCount++
	inv.UsedBy = append(inv.UsedBy, params.UserID)
	return nil
}

func (f *fakeStore) RevokeInvitation(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[code]
	if !ok {
		return ErrNotFound
	}
	inv.IsActive = false
	return nil
}

func (f *fakeStore) TargetName(_ context.Context, _ invite.TargetType, targetID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name, ok := f.names[targetID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("no such target %q", targetID)
}

func newTestService(store Store) *Service {
	return New(store, nil, Config{})
}

func TestCreateInvitation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(ctx, CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
		CreatedBy:  "user-1",
		Kind:       invite.CodeKindNew,
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}
	if inv.MaxUses != DefaultMaxUses {
		t.Errorf("MaxUses = %d, want default %d", inv.MaxUses, DefaultMaxUses)
	}
	if inv.UsedCount != 0 || !inv.IsActive {
		t.Errorf("new invitation must start unused and active, got %+v", inv)
	}
	if got := inv.ExpiresAt.Sub(inv.CreatedAt); got != DefaultTTL {
		t.Errorf("TTL = %v, want %v", got, DefaultTTL)
	}
	if _, ok := store.invitations[inv.Code]; !ok {
		t.Error("invitation not persisted under its code")
	}
	if format, ok := invite.Classify(inv.Code); !ok || format.Kind != invite.CodeKindNew {
		t.Errorf("generated code %q is not a new-format code", inv.Code)
	}
}

func TestCreateInvitationRequiresAuthenticatedUser(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.CreateInvitation(context.Background(), CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
	})
	if !errors.Is(err, ErrUserNotAuthenticated) {
		t.Fatalf("err = %v, want ErrUserNotAuthenticated", err)
	}
}

func TestCreateInvitationRetriesOnCollision(t *testing.T) {
	store := newFakeStore()
	store.failCreates = 2
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(context.Background(), CreateParams{
		TargetID:   "project-1",
		TargetType: invite.TargetProject,
		CreatedBy:  "user-1",
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}
	if len(store.invitations) != 1 {
		t.Fatalf("expected exactly one persisted invitation, got %d", len(store.invitations))
	}
	if _, ok := store.invitations[inv.Code]; !ok {
		t.Error("persisted invitation does not match returned code")
	}
}

func TestCreateInvitationGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newFakeStore()
	store.failCreates = maxGenerateAttempts
	svc := newTestService(store)

	_, err := svc.CreateInvitation(context.Background(), CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
		CreatedBy:  "user-1",
	})
	if err == nil {
		t.Fatal("expected an error after exhausting generation attempts")
	}
}

func TestCreateInvitationLegacyKind(t *testing.T) {
	svc := newTestService(newFakeStore())
	inv, err := svc.CreateInvitation(context.Background(), CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
		CreatedBy:  "user-1",
		Kind:       invite.CodeKindLegacy,
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}
	if format, ok := invite.Classify(inv.Code); !ok || format.Kind != invite.CodeKindLegacy {
		t.Errorf("generated code %q is not a legacy-format code", inv.Code)
	}
}

func TestValidateInvitationCode(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.names["family-1"] = "The Does"
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(ctx, CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
		CreatedBy:  "user-1",
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}

	// Messy-but-equivalent transcription of the issued code.
	raw := " inv-" + strings.ToLower(inv.Code[:3]+"-"+inv.Code[3:]) + " "
	preview, err := svc.ValidateInvitationCode(ctx, raw)
	if err != nil {
		t.Fatalf("ValidateInvitationCode(%q): %v", raw, err)
	}
	if preview.TargetID != "family-1" || preview.TargetType != invite.TargetFamily {
		t.Errorf("preview target = %s/%s, want family-1/family", preview.TargetID, preview.TargetType)
	}
	if preview.TargetName != "The Does" {
		t.Errorf("preview name = %q, want The Does", preview.TargetName)
	}
	if preview.Format.Code != inv.Code {
		t.Errorf("preview code = %q, want %q", preview.Format.Code, inv.Code)
	}

	// Preview must not consume a use.
	if got := store.invitations[inv.Code].UsedCount; got != 0 {
		t.Errorf("UsedCount after preview = %d, want 0", got)
	}
}

func TestValidateInvitationCodeErrors(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	var invalidCode *InvalidCodeError
	_, err := svc.ValidateInvitationCode(ctx, "not a code!")
	if !errors.As(err, &invalidCode) {
		t.Errorf("malformed input err = %v, want InvalidCodeError", err)
	}
	_, err = svc.ValidateInvitationCode(ctx, "")
	if !errors.As(err, &invalidCode) {
		t.Errorf("empty input err = %v, want InvalidCodeError", err)
	}

	_, err = svc.ValidateInvitationCode(ctx, "234567")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown code err = %v, want ErrNotFound", err)
	}

	store.corrupted["234567"] = true
	_, err = svc.ValidateInvitationCode(ctx, "234567")
	if !errors.Is(err, ErrCorruptedData) {
		t.Errorf("corrupted record err = %v, want ErrCorruptedData", err)
	}
}

func TestValidateInvitationCodeGating(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*invite.Invitation)
	}{
		{name: "expired", mutate: func(i *invite.Invitation) { i.ExpiresAt = time.Now().Add(-time.Hour) }},
		{name: "exhausted", mutate: func(i *invite.Invitation) { i.UsedCount = i.MaxUses }},
		{name: "revoked", mutate: func(i *invite.Invitation) { i.IsActive = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestService(store)
			inv, err := svc.CreateInvitation(ctx, CreateParams{
				TargetID:   "family-1",
				TargetType: invite.TargetFamily,
				CreatedBy:  "user-1",
			})
			if err != nil {
				t.Fatalf("CreateInvitation: %v", err)
			}
			tt.mutate(store.invitations[inv.Code])

			// All gate failures look identical to the caller.
			if _, err := svc.ValidateInvitationCode(ctx, inv.Code); !errors.Is(err, ErrInvalidOrExpired) {
				t.Errorf("err = %v, want ErrInvalidOrExpired", err)
			}
		})
	}
}

func TestJoinWithInvitationCode(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(ctx, CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
		CreatedBy:  "user-1",
		MaxUses:    2,
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}

	if err := svc.JoinWithInvitationCode(ctx, inv.Code, "user-2"); err != nil {
		t.Fatalf("JoinWithInvitationCode: %v", err)
	}
	if !store.members["family-1"]["user-2"] {
		t.Error("user-2 not added to family members")
	}
	stored := store.invitations[inv.Code]
	if stored.UsedCount != 1 {
		t.Errorf("UsedCount = %d, want 1", stored.UsedCount)
	}
	if len(stored.UsedBy) != 1 || stored.UsedBy[0] != "user-2" {
		t.Errorf("UsedBy = %v, want [user-2]", stored.UsedBy)
	}

	// Re-joining is idempotent and does not burn a use.
	if err := svc.JoinWithInvitationCode(ctx, inv.Code, "user-2"); err != nil {
		t.Fatalf("idempotent join: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Errorf("UsedCount after idempotent join = %d, want 1", stored.UsedCount)
	}

	if err := svc.JoinWithInvitationCode(ctx, inv.Code, ""); !errors.Is(err, ErrUserNotAuthenticated) {
		t.Errorf("unauthenticated join err = %v, want ErrUserNotAuthenticated", err)
	}
}

func TestJoinFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(ctx, CreateParams{
		TargetID:   "project-1",
		TargetType: invite.TargetProject,
		CreatedBy:  "user-1",
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}

	store.applyErr = errors.New("write rejected")
	var joinErr *JoinError
	if err := svc.JoinWithInvitationCode(ctx, inv.Code, "user-2"); !errors.As(err, &joinErr) {
		t.Fatalf("err = %v, want JoinError", err)
	}

	// The counter must not move when the side effect failed.
	if got := store.invitations[inv.Code].UsedCount; got != 0 {
		t.Errorf("UsedCount after failed join = %d, want 0", got)
	}
}

func TestConcurrentRedemptionAtLimit(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(ctx, CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
		CreatedBy:  "user-1",
		MaxUses:    1,
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, user := range []string{"user-2", "user-3"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.JoinWithInvitationCode(ctx, inv.Code, user)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, exhausted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInvalidOrExpired):
			exhausted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || exhausted != 1 {
		t.Errorf("got %d successes and %d exhausted, want exactly 1 and 1", succeeded, exhausted)
	}
	if got := store.invitations[inv.Code].UsedCount; got != 1 {
		t.Errorf("UsedCount = %d, want 1", got)
	}
}

func TestRevokeInvitation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(ctx, CreateParams{
		TargetID:   "family-1",
		TargetType: invite.TargetFamily,
		CreatedBy:  "user-1",
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}

	if err := svc.RevokeInvitation(ctx, inv.Code); err != nil {
		t.Fatalf("RevokeInvitation: %v", err)
	}
	if err := svc.JoinWithInvitationCode(ctx, inv.Code, "user-2"); !errors.Is(err, ErrInvalidOrExpired) {
		t.Errorf("join after revoke err = %v, want ErrInvalidOrExpired", err)
	}
}

func TestEndToEndRedemption(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.names["project-9"] = "Kitchen Remodel"
	svc := newTestService(store)

	inv, err := svc.CreateInvitation(ctx, CreateParams{
		TargetID:   "project-9",
		TargetType: invite.TargetProject,
		CreatedBy:  "user-1",
		Kind:       invite.CodeKindNew,
		MaxUses:    1,
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}

	raw := " inv-" + strings.ToLower(inv.Code[:2]+" "+inv.Code[2:4]+"-"+inv.Code[4:]) + " "

	preview, err := svc.ValidateInvitationCode(ctx, raw)
	if err != nil {
		t.Fatalf("ValidateInvitationCode(%q): %v", raw, err)
	}
	if preview.TargetID != "project-9" || preview.TargetType != invite.TargetProject {
		t.Fatalf("preview = %+v, want project-9/project", preview)
	}

	if err := svc.JoinWithInvitationCode(ctx, raw, "user-2"); err != nil {
		t.Fatalf("JoinWithInvitationCode(%q): %v", raw, err)
	}
	if got := store.invitations[inv.Code].UsedCount; got != 1 {
		t.Errorf("UsedCount = %d, want 1", got)
	}

	if err := svc.JoinWithInvitationCode(ctx, raw, "user-3"); !errors.Is(err, ErrInvalidOrExpired) {
		t.Errorf("second redemption err = %v, want ErrInvalidOrExpired", err)
	}
}
