package store

import (
	"context"
	"time"

	"fintrack/internal/models"
)

// ContributionStore is the goal ledger: contribution rows are the
// source of truth and the goal's accumulated amount is derived from
// their sum.
type ContributionStore struct {
	db DB
}

func NewContributionStore(db DB) *ContributionStore {
	return &ContributionStore{db: db}
}

type ContributionInput struct {
	ID     string
	GoalID string
	UserID string
	Amount int64
	Date   time.Time
}

func (s *ContributionStore) Create(ctx context.Context, tx Execer, input ContributionInput) error {
	query := `
		INSERT INTO goal_contributions (id, goal_id, user_id, amount, date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.GoalID, input.UserID, input.Amount, input.Date)
	return err
}

func (s *ContributionStore) GetByID(ctx context.Context, contributionID string) (models.Contribution, error) {
	var row models.Contribution
	err := s.db.GetContext(ctx, &row, `
		SELECT id, goal_id, user_id, amount, date, created_at
		FROM goal_contributions
		WHERE id = $1
	`, contributionID)
	return row, err
}

func (s *ContributionStore) ListByGoal(ctx context.Context, goalID string, limit, offset int) ([]models.Contribution, error) {
	var rows []models.Contribution
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, goal_id, user_id, amount, date, created_at
		FROM goal_contributions
		WHERE goal_id = $1
		ORDER BY date, created_at
		LIMIT $2 OFFSET $3
	`, goalID, limit, offset)
	return rows, err
}

func (s *ContributionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Contribution, error) {
	var rows []models.Contribution
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, goal_id, user_id, amount, date, created_at
		FROM goal_contributions
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

func (s *ContributionStore) ListByGoalAndUser(ctx context.Context, goalID, userID string) ([]models.Contribution, error) {
	var rows []models.Contribution
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, goal_id, user_id, amount, date, created_at
		FROM goal_contributions
		WHERE goal_id = $1 AND user_id = $2
		ORDER BY date, created_at
	`, goalID, userID)
	return rows, err
}

func (s *ContributionStore) Update(ctx context.Context, tx Execer, contributionID string, amount int64, date time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE goal_contributions
		SET amount = $1, date = $2
		WHERE id = $3
	`, amount, date, contributionID)
	return err
}

func (s *ContributionStore) Delete(ctx context.Context, tx Execer, contributionID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM goal_contributions WHERE id = $1`, contributionID)
	return err
}

// SumByGoal recomputes the derived total from the ledger rows rather
// than trusting the cached column.
func (s *ContributionStore) SumByGoal(ctx context.Context, q Getter, goalID string) (int64, error) {
	var sum int64
	err := q.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM goal_contributions
		WHERE goal_id = $1
	`, goalID)
	return sum, err
}
