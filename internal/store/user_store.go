package store

import (
	"context"

	"fintrack/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type UserInput struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	PreferredCurrency string
	Role              models.UserRole
}

func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, preferred_currency, role)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.Name, input.Email, input.PasswordHash, input.PreferredCurrency, input.Role)
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, password_hash, preferred_currency, role, created_at
		FROM users
		WHERE email = $1
	`, email)
	return row, err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, password_hash, preferred_currency, role, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return row, err
}

func (s *UserStore) GetRole(ctx context.Context, userID string) (models.UserRole, error) {
	var role models.UserRole
	err := s.db.GetContext(ctx, &role, `SELECT role FROM users WHERE id = $1`, userID)
	return role, err
}

func (s *UserStore) UpdateProfile(ctx context.Context, tx Execer, userID, name, preferredCurrency string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET name = $1, preferred_currency = $2
		WHERE id = $3
	`, name, preferredCurrency, userID)
	return err
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, tx Execer, userID, passwordHash string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $1
		WHERE id = $2
	`, passwordHash, userID)
	return err
}

func (s *UserStore) PromoteAdmin(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET role = 'admin'
		WHERE id = $1
	`, userID)
	return err
}

func (s *UserStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM users`)
	return count, err
}

// DeletePersonalData removes everything owned by the user, in foreign
// key order. Groups the user created are removed with their scoped
// data; groups they merely belong to survive.
func (s *UserStore) DeletePersonalData(ctx context.Context, tx Execer, userID string) error {
	statements := []string{
		`DELETE FROM goal_contributions WHERE goal_id IN (SELECT id FROM goals WHERE group_id IN (SELECT id FROM groups WHERE created_by = $1))`,
		`DELETE FROM goals WHERE group_id IN (SELECT id FROM groups WHERE created_by = $1)`,
		`DELETE FROM expenses WHERE group_id IN (SELECT id FROM groups WHERE created_by = $1)`,
		`DELETE FROM incomes WHERE group_id IN (SELECT id FROM groups WHERE created_by = $1)`,
		`DELETE FROM goal_contributions WHERE user_id = $1`,
		`DELETE FROM goal_contributions WHERE goal_id IN (SELECT id FROM goals WHERE owner_id = $1 AND group_id IS NULL)`,
		`DELETE FROM goals WHERE owner_id = $1 AND group_id IS NULL`,
		`DELETE FROM expenses WHERE owner_id = $1`,
		`DELETE FROM incomes WHERE owner_id = $1`,
		`DELETE FROM categories WHERE owner_id = $1`,
		`DELETE FROM invitations WHERE invitee_id = $1 OR created_by = $1 OR group_id IN (SELECT id FROM groups WHERE created_by = $1)`,
		`DELETE FROM group_members WHERE user_id = $1 OR group_id IN (SELECT id FROM groups WHERE created_by = $1)`,
		`DELETE FROM groups WHERE created_by = $1`,
		`DELETE FROM users WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return nil
}
