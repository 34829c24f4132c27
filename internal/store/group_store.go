package store

import (
	"context"
	"database/sql"
	"time"

	"fintrack/internal/models"
)

type GroupStore struct {
	db DB
}

func NewGroupStore(db DB) *GroupStore {
	return &GroupStore{db: db}
}

func (s *GroupStore) Create(ctx context.Context, tx Execer, id, name, description, createdBy string) error {
	query := `
		INSERT INTO groups (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, id, name, description, createdBy)
	return err
}

func (s *GroupStore) GetByID(ctx context.Context, groupID string) (models.Group, error) {
	var row models.Group
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, created_by, created_at
		FROM groups
		WHERE id = $1
	`, groupID)
	return row, err
}

func (s *GroupStore) Update(ctx context.Context, tx Execer, groupID, name, description string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE groups
		SET name = $1, description = $2
		WHERE id = $3
	`, name, description, groupID)
	return err
}

func (s *GroupStore) ListByMember(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	var rows []models.Group
	err := s.db.SelectContext(ctx, &rows, `
		SELECT g.id, g.name, g.description, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

func (s *GroupStore) ListByCreator(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	var rows []models.Group
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, created_by, created_at
		FROM groups
		WHERE created_by = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

// DeleteCascade removes the group and everything scoped to it in one
// pass; callers run it inside a transaction.
func (s *GroupStore) DeleteCascade(ctx context.Context, tx Execer, groupID string) error {
	statements := []string{
		`DELETE FROM goal_contributions WHERE goal_id IN (SELECT id FROM goals WHERE group_id = $1)`,
		`DELETE FROM goals WHERE group_id = $1`,
		`DELETE FROM expenses WHERE group_id = $1`,
		`DELETE FROM incomes WHERE group_id = $1`,
		`DELETE FROM invitations WHERE group_id = $1`,
		`DELETE FROM group_members WHERE group_id = $1`,
		`DELETE FROM groups WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, groupID); err != nil {
			return err
		}
	}
	return nil
}

func (s *GroupStore) AddMember(ctx context.Context, tx Execer, groupID, userID string, role models.MemberRole) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO group_members (user_id, group_id, role)
		VALUES ($1, $2, $3)
	`, userID, groupID, role)
	return err
}

func (s *GroupStore) RemoveMember(ctx context.Context, tx Execer, groupID, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *GroupStore) ChangeRole(ctx context.Context, tx Execer, groupID, userID string, role models.MemberRole) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE group_members
		SET role = $1
		WHERE group_id = $2 AND user_id = $3
	`, role, groupID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *GroupStore) GetMembership(ctx context.Context, groupID, userID string) (models.Membership, error) {
	var row models.Membership
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, group_id, role, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	return row, err
}

func (s *GroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	_, err := s.GetMembership(ctx, groupID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *GroupStore) IsAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	membership, err := s.GetMembership(ctx, groupID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return membership.Role == models.MemberRoleAdmin, nil
}

type Member struct {
	UserID   string            `db:"user_id" json:"user_id"`
	GroupID  string            `db:"group_id" json:"group_id"`
	Role     models.MemberRole `db:"role" json:"role"`
	JoinedAt time.Time         `db:"joined_at" json:"joined_at"`
	Name     string            `db:"name" json:"name"`
	Email    string            `db:"email" json:"email"`
}

func (s *GroupStore) ListMembers(ctx context.Context, groupID string) ([]Member, error) {
	var rows []Member
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.user_id, m.group_id, m.role, m.joined_at, u.name, u.email
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at
	`, groupID)
	return rows, err
}

func (s *GroupStore) ListMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT user_id
		FROM group_members
		WHERE group_id = $1
	`, groupID)
	return ids, err
}
