package store

import (
	"context"
	"time"

	"fintrack/internal/models"
)

type GoalStore struct {
	db DB
}

func NewGoalStore(db DB) *GoalStore {
	return &GoalStore{db: db}
}

type GoalInput struct {
	ID        string
	Name      string
	Target    int64
	StartDate *time.Time
	EndDate   *time.Time
	OwnerID   string
	GroupID   *string
}

func (s *GoalStore) Create(ctx context.Context, tx Execer, input GoalInput) error {
	query := `
		INSERT INTO goals (id, name, target_amount, accumulated_amount, start_date, end_date, status, owner_id, group_id)
		VALUES ($1, $2, $3, 0, $4, $5, 'active', $6, $7)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.Name, input.Target, input.StartDate, input.EndDate, input.OwnerID, input.GroupID)
	return err
}

const goalColumns = `id, name, target_amount, accumulated_amount, start_date, end_date, status, owner_id, group_id`

func (s *GoalStore) GetByID(ctx context.Context, goalID string) (models.Goal, error) {
	var row models.Goal
	err := s.db.GetContext(ctx, &row, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE id = $1
	`, goalID)
	return row, err
}

// GetForUpdate locks the goal row so concurrent recomputations of the
// derived total serialize on it.
func (s *GoalStore) GetForUpdate(ctx context.Context, tx Getter, goalID string) (models.Goal, error) {
	var row models.Goal
	err := tx.GetContext(ctx, &row, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE id = $1
		FOR UPDATE
	`, goalID)
	return row, err
}

func (s *GoalStore) ListByOwner(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Goal, error) {
	var rows []models.Goal
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE owner_id = $1
	`
	if personalOnly {
		query += ` AND group_id IS NULL`
	}
	query += ` ORDER BY name LIMIT $2 OFFSET $3`
	err := s.db.SelectContext(ctx, &rows, query, ownerID, limit, offset)
	return rows, err
}

func (s *GoalStore) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Goal, error) {
	var rows []models.Goal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE group_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, groupID, limit, offset)
	return rows, err
}

func (s *GoalStore) ListByStatus(ctx context.Context, ownerID string, status models.GoalStatus, personalOnly bool) ([]models.Goal, error) {
	var rows []models.Goal
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE owner_id = $1 AND status = $2
	`
	if personalOnly {
		query += ` AND group_id IS NULL`
	}
	query += ` ORDER BY name`
	err := s.db.SelectContext(ctx, &rows, query, ownerID, status)
	return rows, err
}

func (s *GoalStore) Update(ctx context.Context, tx Execer, goalID, name string, target int64, startDate, endDate *time.Time, status models.GoalStatus, groupID *string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE goals
		SET name = $1, target_amount = $2, start_date = $3, end_date = $4, status = $5, group_id = $6
		WHERE id = $7
	`, name, target, startDate, endDate, status, groupID, goalID)
	return err
}

func (s *GoalStore) SetDerived(ctx context.Context, tx Execer, goalID string, accumulated int64, status models.GoalStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE goals
		SET accumulated_amount = $1, status = $2
		WHERE id = $3
	`, accumulated, status, goalID)
	return err
}

func (s *GoalStore) Delete(ctx context.Context, tx Execer, goalID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM goal_contributions WHERE goal_id = $1`, goalID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, goalID)
	return err
}
