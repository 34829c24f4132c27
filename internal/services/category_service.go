package services

import (
	"context"
	"database/sql"
	"errors"

	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CategoryStore interface {
	Create(ctx context.Context, tx store.Execer, input store.CategoryInput) error
	GetByID(ctx context.Context, categoryID string) (models.Category, error)
	ListForUser(ctx context.Context, userID string, categoryType models.CategoryType, limit, offset int) ([]models.Category, error)
	ListGlobal(ctx context.Context, limit, offset int) ([]models.Category, error)
	ListPersonal(ctx context.Context, userID string, limit, offset int) ([]models.Category, error)
	Update(ctx context.Context, tx store.Execer, categoryID string, name string, categoryType models.CategoryType, color, icon string) error
	Delete(ctx context.Context, tx store.Execer, categoryID string) error
	Usage(ctx context.Context, categoryID string) (store.CategoryUsage, error)
}

type CategoryService struct {
	txRunner   db.TxRunner
	categories CategoryStore
	access     *Access
}

func NewCategoryService(txRunner db.TxRunner, categories CategoryStore, access *Access) *CategoryService {
	return &CategoryService{txRunner: txRunner, categories: categories, access: access}
}

type CategoryCommand struct {
	Name     string
	Type     models.CategoryType
	Color    string
	Icon     string
	IsGlobal bool
}

// Create makes a personal category owned by the caller, or a global
// one when the caller is a platform admin. Global categories have no
// owner.
func (s *CategoryService) Create(ctx context.Context, userID string, cmd CategoryCommand) (models.Category, error) {
	var ownerID *string
	if cmd.IsGlobal {
		if err := s.access.RequireAdmin(ctx, userID); err != nil {
			return models.Category{}, err
		}
	} else {
		ownerID = &userID
	}
	categoryID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.categories.Create(ctx, tx, store.CategoryInput{
			ID:       categoryID,
			Name:     cmd.Name,
			Type:     cmd.Type,
			Color:    cmd.Color,
			Icon:     cmd.Icon,
			IsGlobal: cmd.IsGlobal,
			OwnerID:  ownerID,
		})
	})
	if err != nil {
		return models.Category{}, err
	}
	return s.categories.GetByID(ctx, categoryID)
}

func (s *CategoryService) Get(ctx context.Context, categoryID, userID string) (models.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, err
	}
	if err := s.access.ResolveVisible(ctx, userID, category.Ownership()); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *CategoryService) ListForUser(ctx context.Context, userID string, categoryType models.CategoryType, limit, offset int) ([]models.Category, error) {
	return s.categories.ListForUser(ctx, userID, categoryType, limit, offset)
}

func (s *CategoryService) ListGlobal(ctx context.Context, limit, offset int) ([]models.Category, error) {
	return s.categories.ListGlobal(ctx, limit, offset)
}

func (s *CategoryService) ListPersonal(ctx context.Context, userID string, limit, offset int) ([]models.Category, error) {
	return s.categories.ListPersonal(ctx, userID, limit, offset)
}

func (s *CategoryService) Update(ctx context.Context, categoryID, userID string, cmd CategoryCommand) (models.Category, error) {
	category, err := s.Get(ctx, categoryID, userID)
	if err != nil {
		return models.Category{}, err
	}
	if err := s.access.ResolveMutate(ctx, userID, category.Ownership()); err != nil {
		return models.Category{}, err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.categories.Update(ctx, tx, categoryID, cmd.Name, cmd.Type, cmd.Color, cmd.Icon)
	})
	if err != nil {
		return models.Category{}, err
	}
	return s.categories.GetByID(ctx, categoryID)
}

// Delete refuses while any expense or income still references the
// category.
func (s *CategoryService) Delete(ctx context.Context, categoryID, userID string) error {
	category, err := s.Get(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if err := s.access.ResolveMutate(ctx, userID, category.Ownership()); err != nil {
		return err
	}
	usage, err := s.categories.Usage(ctx, categoryID)
	if err != nil {
		return err
	}
	if usage.ExpenseCount > 0 || usage.IncomeCount > 0 {
		return ErrCategoryInUse
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.categories.Delete(ctx, tx, categoryID)
	})
}

type CategoryStats struct {
	Category     string              `json:"category"`
	Type         models.CategoryType `json:"type"`
	ExpenseCount int64               `json:"expense_count"`
	IncomeCount  int64               `json:"income_count"`
	ExpenseTotal int64               `json:"expense_total"`
	IncomeTotal  int64               `json:"income_total"`
}

func (s *CategoryService) UsageStats(ctx context.Context, categoryID, userID string) (CategoryStats, error) {
	category, err := s.Get(ctx, categoryID, userID)
	if err != nil {
		return CategoryStats{}, err
	}
	usage, err := s.categories.Usage(ctx, categoryID)
	if err != nil {
		return CategoryStats{}, err
	}
	return CategoryStats{
		Category:     category.Name,
		Type:         category.Type,
		ExpenseCount: usage.ExpenseCount,
		IncomeCount:  usage.IncomeCount,
		ExpenseTotal: usage.ExpenseTotal,
		IncomeTotal:  usage.IncomeTotal,
	}, nil
}
