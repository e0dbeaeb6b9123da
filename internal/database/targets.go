package database

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

type Family struct {
	ID        string
	Name      string
	CreatedBy string
	Members   []string
	CreatedAt time.Time
}

type Project struct {
	ID        string
	FamilyID  string
	Name      string
	CreatedBy string
	MemberIDs []string
	CreatedAt time.Time
}

// CreateFamily inserts a family with the creator as its first member.
func (db *Database) CreateFamily(ctx context.Context, name, createdBy string) (Family, error) {
	f := Family{
		ID:        ulid.Make().String(),
		Name:      name,
		CreatedBy: createdBy,
		Members:   []string{createdBy},
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO families (id, name, created_by, members)
		VALUES ($1, $2, $3, $4)`,
		f.ID, f.Name, f.CreatedBy, f.Members)
	if err != nil {
		return Family{}, fmt.Errorf("inserting family: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE users SET family_ids = array_append(family_ids, $2)
		WHERE id = $1 AND NOT $2 = ANY(family_ids)`, createdBy, f.ID)
	if err != nil {
		return Family{}, fmt.Errorf("updating creator family list: %w", err)
	}
	return f, nil
}

// CreateProject inserts a project under a family, with the creator as
// its first member.
func (db *Database) CreateProject(ctx context.Context, familyID, name, createdBy string) (Project, error) {
	p := Project{
		ID:        ulid.Make().String(),
		FamilyID:  familyID,
		Name:      name,
		CreatedBy: createdBy,
		MemberIDs: []string{createdBy},
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO projects (id, family_id, name, created_by, member_ids)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.FamilyID, p.Name, p.CreatedBy, p.MemberIDs)
	if err != nil {
		return Project{}, fmt.Errorf("inserting project: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role, invited_by)
		VALUES ($1, $2, 'owner', $2)
		ON CONFLICT (project_id, user_id) DO NOTHING`, p.ID, createdBy)
	if err != nil {
		return Project{}, fmt.Errorf("recording project owner: %w", err)
	}
	return p, nil
}
