package store

import (
	"context"
	"strconv"

	"fintrack/internal/models"
)

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

type CategoryInput struct {
	ID       string
	Name     string
	Type     models.CategoryType
	Color    string
	Icon     string
	IsGlobal bool
	OwnerID  *string
}

func (s *CategoryStore) Create(ctx context.Context, tx Execer, input CategoryInput) error {
	query := `
		INSERT INTO categories (id, name, type, color, icon, is_global, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.Name, input.Type, input.Color, input.Icon, input.IsGlobal, input.OwnerID)
	return err
}

func (s *CategoryStore) GetByID(ctx context.Context, categoryID string) (models.Category, error) {
	var row models.Category
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, type, color, icon, is_global, owner_id
		FROM categories
		WHERE id = $1
	`, categoryID)
	return row, err
}

// ListForUser returns the categories visible to a user: their own plus
// every global one. Type filters when non-empty.
func (s *CategoryStore) ListForUser(ctx context.Context, userID string, categoryType models.CategoryType, limit, offset int) ([]models.Category, error) {
	var rows []models.Category
	query := `
		SELECT id, name, type, color, icon, is_global, owner_id
		FROM categories
		WHERE (owner_id = $1 OR is_global = TRUE)
	`
	args := []any{userID}
	if categoryType != "" {
		query += ` AND type = $2`
		args = append(args, categoryType)
	}
	query += ` ORDER BY is_global DESC, name LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (s *CategoryStore) ListGlobal(ctx context.Context, limit, offset int) ([]models.Category, error) {
	var rows []models.Category
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, type, color, icon, is_global, owner_id
		FROM categories
		WHERE is_global = TRUE
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

func (s *CategoryStore) ListPersonal(ctx context.Context, userID string, limit, offset int) ([]models.Category, error) {
	var rows []models.Category
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, type, color, icon, is_global, owner_id
		FROM categories
		WHERE owner_id = $1 AND is_global = FALSE
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

func (s *CategoryStore) Update(ctx context.Context, tx Execer, categoryID string, name string, categoryType models.CategoryType, color, icon string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE categories
		SET name = $1, type = $2, color = $3, icon = $4
		WHERE id = $5
	`, name, categoryType, color, icon, categoryID)
	return err
}

func (s *CategoryStore) Delete(ctx context.Context, tx Execer, categoryID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	return err
}

type CategoryUsage struct {
	ExpenseCount int64 `db:"expense_count"`
	IncomeCount  int64 `db:"income_count"`
	ExpenseTotal int64 `db:"expense_total"`
	IncomeTotal  int64 `db:"income_total"`
}

func (s *CategoryStore) Usage(ctx context.Context, categoryID string) (CategoryUsage, error) {
	var usage CategoryUsage
	err := s.db.GetContext(ctx, &usage, `
		SELECT
			(SELECT COUNT(1) FROM expenses WHERE category_id = $1) AS expense_count,
			(SELECT COUNT(1) FROM incomes WHERE category_id = $1) AS income_count,
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE category_id = $1) AS expense_total,
			(SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE category_id = $1) AS income_total
	`, categoryID)
	return usage, err
}
