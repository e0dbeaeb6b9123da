package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/matt-dz/tidyplan/internal/invitations"
	"github.com/matt-dz/tidyplan/internal/invite"
)

// The database is the invitation store.
var _ invitations.Store = (*Database)(nil)

const uniqueViolation = "23505"

// CreateInvitation inserts a new invitation row keyed by its code.
func (db *Database) CreateInvitation(ctx context.Context, inv invite.Invitation) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO invitations
			(code, target_id, target_type, created_by, created_at, expires_at, max_uses, used_count, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.Code, inv.TargetID, string(inv.TargetType), inv.CreatedBy,
		inv.CreatedAt, inv.ExpiresAt, inv.MaxUses, inv.UsedCount, inv.IsActive,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return invitations.ErrCodeTaken
	} else if err != nil {
		return fmt.Errorf("inserting invitation: %w", err)
	}
	return nil
}

// GetInvitation fetches an invitation by normalized code.
func (db *Database) GetInvitation(ctx context.Context, code string) (invite.Invitation, error) {
	return scanInvitation(code, db.Pool.QueryRow(ctx, `
		SELECT target_id, target_type, created_by, created_at, expires_at,
		       max_uses, used_count, is_active, used_by
		FROM invitations WHERE code = $1`, code))
}

// RevokeInvitation clears the active flag.
func (db *Database) RevokeInvitation(ctx context.Context, code string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE invitations SET is_active = FALSE WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("revoking invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invitations.ErrNotFound
	}
	return nil
}

// RedeemInvitation performs the whole redemption as one transaction:
// lock the invitation row, re-check the validity gate against the
// locked state, apply the membership side effect, then increment the
// usage counter. Locking the row first serializes concurrent attempts
// so the counter precondition cannot be observed stale.
func (db *Database) RedeemInvitation(ctx context.Context, params invitations.RedeemParams) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning redemption: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, err := scanInvitation(params.Code, tx.QueryRow(ctx, `
		SELECT target_id, target_type, created_by, created_at, expires_at,
		       max_uses, used_count, is_active, used_by
		FROM invitations WHERE code = $1 FOR UPDATE`, params.Code))
	if err != nil {
		return err
	}

	if !inv.IsValid(params.Now) {
		return invitations.ErrInvalidOrExpired
	}

	alreadyMember, err := db.applyMembership(ctx, tx, inv, params.UserID)
	if err != nil {
		return err
	}
	if alreadyMember {
		// Idempotent re-join: nothing changed, nothing to count.
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invitations
		SET used_count = used_count + 1,
		    used_by = array_append(used_by, $2)
		WHERE code = $1`, params.Code, params.UserID)
	if err != nil {
		return fmt.Errorf("incrementing usage: %w", err)
	}

	return tx.Commit(ctx)
}

// TargetName resolves the display name of an invitation target.
func (db *Database) TargetName(ctx context.Context, targetType invite.TargetType, targetID string) (string, error) {
	var query string
	switch targetType {
	case invite.TargetFamily:
		query = `SELECT name FROM families WHERE id = $1`
	case invite.TargetProject:
		query = `SELECT name FROM projects WHERE id = $1`
	default:
		return "", fmt.Errorf("unknown target type %q", targetType)
	}

	var name string
	err := db.Pool.QueryRow(ctx, query, targetID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%s %q does not exist", targetType, targetID)
	} else if err != nil {
		return "", fmt.Errorf("fetching %s name: %w", targetType, err)
	}
	return name, nil
}

// applyMembership joins userID to the invitation target inside tx.
// Reports whether the user was already a member, in which case nothing
// was written.
func (db *Database) applyMembership(ctx context.Context, tx pgx.Tx, inv invite.Invitation, userID string) (alreadyMember bool, err error) {
	switch inv.TargetType {
	case invite.TargetFamily:
		return db.joinFamily(ctx, tx, inv.TargetID, userID)
	case invite.TargetProject:
		return db.joinProject(ctx, tx, inv, userID)
	default:
		return false, invitations.ErrCorruptedData
	}
}

// joinFamily adds the user to the family member array and the family
// to the user's family list. Both updates guard against duplicates so
// the arrays behave like sets.
func (db *Database) joinFamily(ctx context.Context, tx pgx.Tx, familyID, userID string) (bool, error) {
	var isMember bool
	err := tx.QueryRow(ctx,
		`SELECT $2 = ANY(members) FROM families WHERE id = $1 FOR UPDATE`,
		familyID, userID).Scan(&isMember)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("family %q does not exist", familyID)
	} else if err != nil {
		return false, fmt.Errorf("checking family membership: %w", err)
	}
	if isMember {
		return true, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE families SET members = array_append(members, $2)
		WHERE id = $1 AND NOT $2 = ANY(members)`, familyID, userID)
	if err != nil {
		return false, fmt.Errorf("adding family member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET family_ids = array_append(family_ids, $2)
		WHERE id = $1 AND NOT $2 = ANY(family_ids)`, userID, familyID)
	if err != nil {
		return false, fmt.Errorf("updating user family list: %w", err)
	}
	return false, nil
}

// joinProject joins the owning family first, then the project itself,
// and records the member detail row with the inviter.
func (db *Database) joinProject(ctx context.Context, tx pgx.Tx, inv invite.Invitation, userID string) (bool, error) {
	var familyID string
	var isMember bool
	err := tx.QueryRow(ctx,
		`SELECT family_id, $2 = ANY(member_ids) FROM projects WHERE id = $1 FOR UPDATE`,
		inv.TargetID, userID).Scan(&familyID, &isMember)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("project %q does not exist", inv.TargetID)
	} else if err != nil {
		return false, fmt.Errorf("checking project membership: %w", err)
	}
	if isMember {
		return true, nil
	}

	// Project membership implies membership in the owning family.
	if _, err := db.joinFamily(ctx, tx, familyID, userID); err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE projects SET member_ids = array_append(member_ids, $2)
		WHERE id = $1 AND NOT $2 = ANY(member_ids)`, inv.TargetID, userID)
	if err != nil {
		return false, fmt.Errorf("adding project member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role, invited_by, joined_at)
		VALUES ($1, $2, 'editor', $3, $4)
		ON CONFLICT (project_id, user_id) DO NOTHING`,
		inv.TargetID, userID, inv.CreatedBy, time.Now())
	if err != nil {
		return false, fmt.Errorf("recording project member: %w", err)
	}
	return false, nil
}

// scanInvitation maps a row onto an Invitation, translating the error
// shapes the service distinguishes: a missing row is ErrNotFound, a
// row that does not parse is ErrCorruptedData.
func scanInvitation(code string, row pgx.Row) (invite.Invitation, error) {
	inv := invite.Invitation{Code: code}
	var targetType string
	err := row.Scan(&inv.TargetID, &targetType, &inv.CreatedBy, &inv.CreatedAt,
		&inv.ExpiresAt, &inv.MaxUses, &inv.UsedCount, &inv.IsActive, &inv.UsedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return invite.Invitation{}, invitations.ErrNotFound
	} else if err != nil {
		return invite.Invitation{}, fmt.Errorf("%w: %v", invitations.ErrCorruptedData, err)
	}

	inv.TargetType = invite.TargetType(targetType)
	if !inv.TargetType.Valid() {
		return invite.Invitation{}, fmt.Errorf("%w: unknown target type %q", invitations.ErrCorruptedData, targetType)
	}
	return inv, nil
}
