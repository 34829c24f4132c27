package store

import (
	"context"
	"time"

	"fintrack/internal/models"
)

// RecordStore persists expenses or incomes; the two tables share a
// shape, so one store is parameterized by table name.
type RecordStore struct {
	db    DB
	table string
}

func NewExpenseStore(db DB) *RecordStore {
	return &RecordStore{db: db, table: "expenses"}
}

func NewIncomeStore(db DB) *RecordStore {
	return &RecordStore{db: db, table: "incomes"}
}

type RecordInput struct {
	ID            string
	Description   string
	Amount        int64
	Date          time.Time
	PaymentMethod *string
	Note          string
	Recurring     bool
	CategoryID    *string
	OwnerID       string
	GroupID       *string
}

func (s *RecordStore) Create(ctx context.Context, tx Execer, input RecordInput) error {
	query := `
		INSERT INTO ` + s.table + ` (id, description, amount, date, payment_method, note, recurring, category_id, owner_id, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.Description, input.Amount, input.Date, input.PaymentMethod, input.Note, input.Recurring, input.CategoryID, input.OwnerID, input.GroupID)
	return err
}

const recordColumns = `id, description, amount, date, payment_method, note, recurring, category_id, owner_id, group_id`

func (s *RecordStore) GetByID(ctx context.Context, recordID string) (models.Record, error) {
	var row models.Record
	err := s.db.GetContext(ctx, &row, `
		SELECT `+recordColumns+`
		FROM `+s.table+`
		WHERE id = $1
	`, recordID)
	return row, err
}

func (s *RecordStore) ListByOwner(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Record, error) {
	var rows []models.Record
	query := `
		SELECT ` + recordColumns + `
		FROM ` + s.table + `
		WHERE owner_id = $1
	`
	if personalOnly {
		query += ` AND group_id IS NULL`
	}
	query += ` ORDER BY date DESC LIMIT $2 OFFSET $3`
	err := s.db.SelectContext(ctx, &rows, query, ownerID, limit, offset)
	return rows, err
}

func (s *RecordStore) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Record, error) {
	var rows []models.Record
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+recordColumns+`
		FROM `+s.table+`
		WHERE group_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3
	`, groupID, limit, offset)
	return rows, err
}

func (s *RecordStore) ListByCategory(ctx context.Context, ownerID, categoryID string, limit, offset int) ([]models.Record, error) {
	var rows []models.Record
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+recordColumns+`
		FROM `+s.table+`
		WHERE owner_id = $1 AND category_id = $2
		ORDER BY date DESC
		LIMIT $3 OFFSET $4
	`, ownerID, categoryID, limit, offset)
	return rows, err
}

func (s *RecordStore) ListByDateRange(ctx context.Context, ownerID string, from, to time.Time, personalOnly bool) ([]models.Record, error) {
	var rows []models.Record
	query := `
		SELECT ` + recordColumns + `
		FROM ` + s.table + `
		WHERE owner_id = $1 AND date >= $2 AND date <= $3
	`
	if personalOnly {
		query += ` AND group_id IS NULL`
	}
	query += ` ORDER BY date`
	err := s.db.SelectContext(ctx, &rows, query, ownerID, from, to)
	return rows, err
}

func (s *RecordStore) Update(ctx context.Context, tx Execer, input RecordInput) error {
	query := `
		UPDATE ` + s.table + `
		SET description = $1, amount = $2, date = $3, payment_method = $4, note = $5, recurring = $6, category_id = $7, group_id = $8
		WHERE id = $9
	`
	_, err := tx.ExecContext(ctx, query, input.Description, input.Amount, input.Date, input.PaymentMethod, input.Note, input.Recurring, input.CategoryID, input.GroupID, input.ID)
	return err
}

func (s *RecordStore) Delete(ctx context.Context, tx Execer, recordID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, recordID)
	return err
}

func (s *RecordStore) TotalByOwner(ctx context.Context, ownerID string, personalOnly bool) (int64, error) {
	var total int64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ` + s.table + `
		WHERE owner_id = $1
	`
	if personalOnly {
		query += ` AND group_id IS NULL`
	}
	err := s.db.GetContext(ctx, &total, query, ownerID)
	return total, err
}

func (s *RecordStore) TotalByGroup(ctx context.Context, groupID string) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0)
		FROM `+s.table+`
		WHERE group_id = $1
	`, groupID)
	return total, err
}
