// Package invitations orchestrates invitation issuance and redemption
// on top of the code format in internal/invite and an external store.
package invitations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matt-dz/tidyplan/internal/invite"
	"github.com/matt-dz/tidyplan/internal/log"
	"github.com/matt-dz/tidyplan/internal/metrics"
)

const (
	// DefaultTTL is how long a fresh invitation stays redeemable.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultMaxUses keeps legacy single-use semantics unless the
	// caller asks for a multi-use invitation.
	DefaultMaxUses = 1

	// maxGenerateAttempts bounds the collision-retry loop. With 31^6
	// safe codes a second collision in a row already signals a broken
	// store, not bad luck.
	maxGenerateAttempts = 5
)

// Config carries the issuance defaults.
type Config struct {
	TTL     time.Duration
	MaxUses int
}

// Service issues, validates and redeems invitations. The pure code
// functions need no synchronization; the only concurrency-sensitive
// step, the usage-counter increment, is delegated to the store's
// transactional RedeemInvitation.
type Service struct {
	store  Store
	logger *slog.Logger
	cfg    Config
	now    func() time.Time
}

// New creates a Service. A nil logger discards logs; zero config
// fields fall back to the package defaults.
func New(store Store, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = log.NullLogger()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxUses <= 0 {
		cfg.MaxUses = DefaultMaxUses
	}
	return &Service{
		store:  store,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// CreateParams describes a new invitation. MaxUses and TTL of zero
// take the service defaults. The zero Kind is the legacy numeric
// format, which stays the default during the migration period; callers
// on the unified flow pass CodeKindNew explicitly.
type CreateParams struct {
	TargetID   string
	TargetType invite.TargetType
	CreatedBy  string
	Kind       invite.CodeKind
	MaxUses    int
	TTL        time.Duration
}

// CreateInvitation generates a code, checks it for collision against
// the store and persists the invitation record.
func (s *Service) CreateInvitation(ctx context.Context, p CreateParams) (invite.Invitation, error) {
	if p.CreatedBy == "" {
		return invite.Invitation{}, ErrUserNotAuthenticated
	}
	if !p.TargetType.Valid() {
		return invite.Invitation{}, fmt.Errorf("unknown target type %q", p.TargetType)
	}
	if p.TargetID == "" {
		return invite.Invitation{}, errors.New("target id is required")
	}
	if p.MaxUses < 0 {
		return invite.Invitation{}, fmt.Errorf("max uses must be at least 1, got %d", p.MaxUses)
	}

	maxUses := p.MaxUses
	if maxUses == 0 {
		maxUses = s.cfg.MaxUses
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = s.cfg.TTL
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		code, err := invite.GenerateCode(p.Kind)
		if err != nil {
			return invite.Invitation{}, err
		}

		now := s.now()
		inv := invite.Invitation{
			Code:       code,
			TargetID:   p.TargetID,
			TargetType: p.TargetType,
			CreatedBy:  p.CreatedBy,
			CreatedAt:  now,
			ExpiresAt:  now.Add(ttl),
			MaxUses:    maxUses,
			UsedCount:  0,
			IsActive:   true,
		}

		err = s.store.CreateInvitation(ctx, inv)
		if errors.Is(err, ErrCodeTaken) {
			metrics.CodeCollisions.Inc()
			s.logger.WarnContext(ctx, "invitation code collision, regenerating",
				slog.Int("attempt", attempt))
			continue
		} else if err != nil {
			return invite.Invitation{}, fmt.Errorf("persisting invitation: %w", err)
		}

		metrics.InvitationsIssued.WithLabelValues(p.Kind.String(), string(p.TargetType)).Inc()
		s.logger.InfoContext(ctx, "invitation created",
			slog.String("target_type", string(p.TargetType)),
			slog.String("target_id", p.TargetID),
			slog.Int("max_uses", maxUses))
		return inv, nil
	}

	return invite.Invitation{}, fmt.Errorf("generating unique invitation code: gave up after %d attempts", maxGenerateAttempts)
}

// Preview is the lookup-only view returned before a user confirms a
// join. Nothing is mutated to produce it.
type Preview struct {
	TargetID   string
	TargetType invite.TargetType
	TargetName string
	Format     invite.CodeFormat
}

// ValidateInvitationCode normalizes and validates raw user input, then
// looks the invitation up and checks the validity gate without
// consuming a use.
func (s *Service) ValidateInvitationCode(ctx context.Context, raw string) (Preview, error) {
	format, inv, err := s.lookup(ctx, raw)
	if err != nil {
		return Preview{}, err
	}

	name, err := s.store.TargetName(ctx, inv.TargetType, inv.TargetID)
	if err != nil {
		return Preview{}, fmt.Errorf("resolving target name: %w", err)
	}

	return Preview{
		TargetID:   inv.TargetID,
		TargetType: inv.TargetType,
		TargetName: name,
		Format:     format,
	}, nil
}

// JoinWithInvitationCode redeems a code for userID. The validity
// re-check, the membership side effect and the usage-counter increment
// run inside one store transaction, so two concurrent redemptions of a
// code's last use cannot both succeed.
func (s *Service) JoinWithInvitationCode(ctx context.Context, raw, userID string) error {
	if userID == "" {
		return ErrUserNotAuthenticated
	}

	_, inv, err := s.lookup(ctx, raw)
	if err != nil {
		return err
	}

	err = s.store.RedeemInvitation(ctx, RedeemParams{
		Code:   inv.Code,
		UserID: userID,
		Now:    s.now(),
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidOrExpired), errors.Is(err, ErrNotFound):
		metrics.InvitationsRejected.WithLabelValues("invalid_or_expired").Inc()
		return ErrInvalidOrExpired
	case errors.Is(err, ErrCorruptedData):
		s.logger.ErrorContext(ctx, "stored invitation is corrupted", slog.Any("error", err))
		return ErrCorruptedData
	default:
		metrics.InvitationsRejected.WithLabelValues("join_failed").Inc()
		return &JoinError{Err: err}
	}

	metrics.InvitationsRedeemed.WithLabelValues(string(inv.TargetType)).Inc()
	s.logger.InfoContext(ctx, "invitation redeemed",
		slog.String("target_type", string(inv.TargetType)),
		slog.String("target_id", inv.TargetID))
	return nil
}

// RevokeInvitation clears the active flag for a code. Terminal.
func (s *Service) RevokeInvitation(ctx context.Context, raw string) error {
	normalized := invite.Normalize(raw)
	format, verr := invite.Validate(normalized)
	if verr != nil {
		return &InvalidCodeError{Reason: verr.Error()}
	}
	return s.store.RevokeInvitation(ctx, format.Code)
}

// lookup runs the shared normalize → validate → fetch → gate sequence.
func (s *Service) lookup(ctx context.Context, raw string) (invite.CodeFormat, invite.Invitation, error) {
	normalized := invite.Normalize(raw)
	format, verr := invite.Validate(normalized)
	if verr != nil {
		metrics.InvitationsRejected.WithLabelValues("malformed").Inc()
		return invite.CodeFormat{}, invite.Invitation{}, &InvalidCodeError{Reason: verr.Error()}
	}

	inv, err := s.store.GetInvitation(ctx, format.Code)
	if errors.Is(err, ErrNotFound) {
		metrics.InvitationsRejected.WithLabelValues("not_found").Inc()
		return invite.CodeFormat{}, invite.Invitation{}, ErrNotFound
	} else if errors.Is(err, ErrCorruptedData) {
		// Integrity fault in the store, logged apart from a plain miss.
		s.logger.ErrorContext(ctx, "stored invitation is corrupted",
			slog.String("code_format", format.Kind.String()),
			slog.Any("error", err))
		return invite.CodeFormat{}, invite.Invitation{}, ErrCorruptedData
	} else if err != nil {
		return invite.CodeFormat{}, invite.Invitation{}, fmt.Errorf("fetching invitation: %w", err)
	}

	if !inv.IsValid(s.now()) {
		metrics.InvitationsRejected.WithLabelValues("invalid_or_expired").Inc()
		return invite.CodeFormat{}, invite.Invitation{}, ErrInvalidOrExpired
	}
	return format, inv, nil
}
