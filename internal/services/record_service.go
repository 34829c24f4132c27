package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RecordStore interface {
	Create(ctx context.Context, tx store.Execer, input store.RecordInput) error
	GetByID(ctx context.Context, recordID string) (models.Record, error)
	ListByOwner(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Record, error)
	ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Record, error)
	ListByCategory(ctx context.Context, ownerID, categoryID string, limit, offset int) ([]models.Record, error)
	ListByDateRange(ctx context.Context, ownerID string, from, to time.Time, personalOnly bool) ([]models.Record, error)
	Update(ctx context.Context, tx store.Execer, input store.RecordInput) error
	Delete(ctx context.Context, tx store.Execer, recordID string) error
	TotalByOwner(ctx context.Context, ownerID string, personalOnly bool) (int64, error)
	TotalByGroup(ctx context.Context, groupID string) (int64, error)
}

// RecordService covers expenses and incomes; the two differ only in
// which table their store points at.
type RecordService struct {
	txRunner db.TxRunner
	records  RecordStore
	access   *Access
	kind     models.RecordKind
}

func NewRecordService(txRunner db.TxRunner, records RecordStore, access *Access, kind models.RecordKind) *RecordService {
	return &RecordService{txRunner: txRunner, records: records, access: access, kind: kind}
}

func (s *RecordService) Kind() models.RecordKind {
	return s.kind
}

type RecordCommand struct {
	Description   string
	Amount        int64
	Date          time.Time
	PaymentMethod *string
	Note          string
	Recurring     bool
	CategoryID    *string
	GroupID       *string
}

// Create inserts a record owned by the caller. A group-scoped record
// requires the owner to be a member of that group at creation time.
func (s *RecordService) Create(ctx context.Context, userID string, cmd RecordCommand) (models.Record, error) {
	if cmd.Amount <= 0 {
		return models.Record{}, ErrInvalidAmount
	}
	if cmd.GroupID != nil {
		if err := s.access.RequireMember(ctx, *cmd.GroupID, userID); err != nil {
			return models.Record{}, err
		}
	}
	recordID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.records.Create(ctx, tx, store.RecordInput{
			ID:            recordID,
			Description:   cmd.Description,
			Amount:        cmd.Amount,
			Date:          cmd.Date,
			PaymentMethod: cmd.PaymentMethod,
			Note:          cmd.Note,
			Recurring:     cmd.Recurring,
			CategoryID:    cmd.CategoryID,
			OwnerID:       userID,
			GroupID:       cmd.GroupID,
		})
	})
	if err != nil {
		return models.Record{}, err
	}
	return s.records.GetByID(ctx, recordID)
}

// Get applies the visibility rule: personal records only to their
// owner (mismatch hidden as not-found), group records to any member.
func (s *RecordService) Get(ctx context.Context, recordID, userID string) (models.Record, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, ErrNotFound
		}
		return models.Record{}, err
	}
	if err := s.access.ResolveVisible(ctx, userID, record.Ownership()); err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// Update lets any user who can see the record edit it; re-scoping to a
// group requires membership in the new group.
func (s *RecordService) Update(ctx context.Context, recordID, userID string, cmd RecordCommand) (models.Record, error) {
	record, err := s.Get(ctx, recordID, userID)
	if err != nil {
		return models.Record{}, err
	}
	if cmd.Amount <= 0 {
		return models.Record{}, ErrInvalidAmount
	}
	if cmd.GroupID != nil && (record.GroupID == nil || *record.GroupID != *cmd.GroupID) {
		if err := s.access.RequireMember(ctx, *cmd.GroupID, userID); err != nil {
			return models.Record{}, err
		}
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.records.Update(ctx, tx, store.RecordInput{
			ID:            recordID,
			Description:   cmd.Description,
			Amount:        cmd.Amount,
			Date:          cmd.Date,
			PaymentMethod: cmd.PaymentMethod,
			Note:          cmd.Note,
			Recurring:     cmd.Recurring,
			CategoryID:    cmd.CategoryID,
			OwnerID:       record.OwnerID,
			GroupID:       cmd.GroupID,
		})
	})
	if err != nil {
		return models.Record{}, err
	}
	return s.records.GetByID(ctx, recordID)
}

func (s *RecordService) Delete(ctx context.Context, recordID, userID string) error {
	if _, err := s.Get(ctx, recordID, userID); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.records.Delete(ctx, tx, recordID)
	})
}

func (s *RecordService) ListForUser(ctx context.Context, userID string, personalOnly bool, limit, offset int) ([]models.Record, error) {
	return s.records.ListByOwner(ctx, userID, personalOnly, limit, offset)
}

func (s *RecordService) ListForGroup(ctx context.Context, groupID, userID string, limit, offset int) ([]models.Record, error) {
	if err := s.access.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.records.ListByGroup(ctx, groupID, limit, offset)
}

func (s *RecordService) ListByCategory(ctx context.Context, userID, categoryID string, limit, offset int) ([]models.Record, error) {
	return s.records.ListByCategory(ctx, userID, categoryID, limit, offset)
}

func (s *RecordService) ListByDateRange(ctx context.Context, userID string, from, to time.Time, personalOnly bool) ([]models.Record, error) {
	return s.records.ListByDateRange(ctx, userID, from, to, personalOnly)
}

func (s *RecordService) TotalForUser(ctx context.Context, userID string, personalOnly bool) (int64, error) {
	return s.records.TotalByOwner(ctx, userID, personalOnly)
}

func (s *RecordService) TotalForGroup(ctx context.Context, groupID, userID string) (int64, error) {
	if err := s.access.RequireMember(ctx, groupID, userID); err != nil {
		return 0, err
	}
	return s.records.TotalByGroup(ctx, groupID)
}
