package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/store"
	"fintrack/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GoalStore interface {
	Create(ctx context.Context, tx store.Execer, input store.GoalInput) error
	GetByID(ctx context.Context, goalID string) (models.Goal, error)
	GetForUpdate(ctx context.Context, tx store.Getter, goalID string) (models.Goal, error)
	ListByOwner(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Goal, error)
	ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Goal, error)
	ListByStatus(ctx context.Context, ownerID string, status models.GoalStatus, personalOnly bool) ([]models.Goal, error)
	Update(ctx context.Context, tx store.Execer, goalID, name string, target int64, startDate, endDate *time.Time, status models.GoalStatus, groupID *string) error
	SetDerived(ctx context.Context, tx store.Execer, goalID string, accumulated int64, status models.GoalStatus) error
	Delete(ctx context.Context, tx store.Execer, goalID string) error
}

type ContributionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ContributionInput) error
	GetByID(ctx context.Context, contributionID string) (models.Contribution, error)
	ListByGoal(ctx context.Context, goalID string, limit, offset int) ([]models.Contribution, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Contribution, error)
	ListByGoalAndUser(ctx context.Context, goalID, userID string) ([]models.Contribution, error)
	Update(ctx context.Context, tx store.Execer, contributionID string, amount int64, date time.Time) error
	Delete(ctx context.Context, tx store.Execer, contributionID string) error
	SumByGoal(ctx context.Context, q store.Getter, goalID string) (int64, error)
}

type GoalHub interface {
	BroadcastGoal(userID string, update websocket.GoalUpdate)
}

// GoalService owns goals and their contribution ledger. The
// accumulated amount is derived state: after every contribution
// create, update or delete it is recomputed from the ledger sum inside
// the same transaction, and an active goal whose total crosses the
// target completes there and then.
type GoalService struct {
	txRunner      db.TxRunner
	goals         GoalStore
	contributions ContributionStore
	groups        GroupStore
	access        *Access
	hub           GoalHub
}

func NewGoalService(txRunner db.TxRunner, goals GoalStore, contributions ContributionStore, groups GroupStore, access *Access, hub GoalHub) *GoalService {
	return &GoalService{
		txRunner:      txRunner,
		goals:         goals,
		contributions: contributions,
		groups:        groups,
		access:        access,
		hub:           hub,
	}
}

type GoalCommand struct {
	Name      string
	Target    int64
	StartDate *time.Time
	EndDate   *time.Time
	GroupID   *string
}

func (s *GoalService) Create(ctx context.Context, userID string, cmd GoalCommand) (models.Goal, error) {
	if cmd.Target <= 0 {
		return models.Goal{}, ErrInvalidAmount
	}
	if cmd.GroupID != nil {
		if err := s.access.RequireMember(ctx, *cmd.GroupID, userID); err != nil {
			return models.Goal{}, err
		}
	}
	goalID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.goals.Create(ctx, tx, store.GoalInput{
			ID:        goalID,
			Name:      cmd.Name,
			Target:    cmd.Target,
			StartDate: cmd.StartDate,
			EndDate:   cmd.EndDate,
			OwnerID:   userID,
			GroupID:   cmd.GroupID,
		})
	})
	if err != nil {
		return models.Goal{}, err
	}
	return s.goals.GetByID(ctx, goalID)
}

func (s *GoalService) Get(ctx context.Context, goalID, userID string) (models.Goal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Goal{}, ErrNotFound
		}
		return models.Goal{}, err
	}
	if err := s.access.ResolveVisible(ctx, userID, goal.Ownership()); err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (s *GoalService) ListForUser(ctx context.Context, userID string, personalOnly bool, limit, offset int) ([]models.Goal, error) {
	return s.goals.ListByOwner(ctx, userID, personalOnly, limit, offset)
}

func (s *GoalService) ListForGroup(ctx context.Context, groupID, userID string, limit, offset int) ([]models.Goal, error) {
	if err := s.access.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.goals.ListByGroup(ctx, groupID, limit, offset)
}

func (s *GoalService) ListByStatus(ctx context.Context, userID string, status models.GoalStatus, personalOnly bool) ([]models.Goal, error) {
	return s.goals.ListByStatus(ctx, userID, status, personalOnly)
}

type GoalUpdateCommand struct {
	Name      string
	Target    int64
	StartDate *time.Time
	EndDate   *time.Time
	Status    models.GoalStatus
	GroupID   *string
}

func (s *GoalService) Update(ctx context.Context, goalID, userID string, cmd GoalUpdateCommand) (models.Goal, error) {
	goal, err := s.Get(ctx, goalID, userID)
	if err != nil {
		return models.Goal{}, err
	}
	if cmd.Target <= 0 {
		return models.Goal{}, ErrInvalidAmount
	}
	if cmd.GroupID != nil && (goal.GroupID == nil || *goal.GroupID != *cmd.GroupID) {
		if err := s.access.RequireMember(ctx, *cmd.GroupID, userID); err != nil {
			return models.Goal{}, err
		}
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.goals.Update(ctx, tx, goalID, cmd.Name, cmd.Target, cmd.StartDate, cmd.EndDate, cmd.Status, cmd.GroupID)
	})
	if err != nil {
		return models.Goal{}, err
	}
	return s.goals.GetByID(ctx, goalID)
}

func (s *GoalService) Delete(ctx context.Context, goalID, userID string) error {
	if _, err := s.Get(ctx, goalID, userID); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.goals.Delete(ctx, tx, goalID)
	})
}

// AddContribution appends a ledger entry and recomputes the goal's
// derived total in the same transaction. Contributions are only
// accepted while the goal is active.
func (s *GoalService) AddContribution(ctx context.Context, goalID, userID string, amount int64, date time.Time) (models.Contribution, error) {
	if amount <= 0 {
		return models.Contribution{}, ErrInvalidAmount
	}
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contribution{}, ErrNotFound
		}
		return models.Contribution{}, err
	}
	if err := s.access.ResolveParticipant(ctx, userID, goal.Ownership()); err != nil {
		return models.Contribution{}, err
	}
	if goal.Status != models.GoalActive {
		return models.Contribution{}, ErrGoalNotActive
	}
	contributionID := uuid.NewString()
	var updated models.Goal
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.goals.GetForUpdate(ctx, tx, goalID)
		if err != nil {
			return err
		}
		if locked.Status != models.GoalActive {
			return ErrGoalNotActive
		}
		if err := s.contributions.Create(ctx, tx, store.ContributionInput{
			ID:     contributionID,
			GoalID: goalID,
			UserID: userID,
			Amount: amount,
			Date:   date,
		}); err != nil {
			return err
		}
		updated, err = s.recompute(ctx, tx, locked)
		return err
	})
	if err != nil {
		return models.Contribution{}, err
	}
	s.broadcast(ctx, updated)
	return s.contributions.GetByID(ctx, contributionID)
}

// UpdateContribution is restricted to the original contributor; a
// mismatch is hidden as not-found like any personal record.
func (s *GoalService) UpdateContribution(ctx context.Context, contributionID, userID string, amount int64, date time.Time) (models.Contribution, error) {
	if amount <= 0 {
		return models.Contribution{}, ErrInvalidAmount
	}
	contribution, err := s.getOwnContribution(ctx, contributionID, userID)
	if err != nil {
		return models.Contribution{}, err
	}
	var updated models.Goal
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.goals.GetForUpdate(ctx, tx, contribution.GoalID)
		if err != nil {
			return err
		}
		if err := s.contributions.Update(ctx, tx, contributionID, amount, date); err != nil {
			return err
		}
		updated, err = s.recompute(ctx, tx, locked)
		return err
	})
	if err != nil {
		return models.Contribution{}, err
	}
	s.broadcast(ctx, updated)
	return s.contributions.GetByID(ctx, contributionID)
}

func (s *GoalService) DeleteContribution(ctx context.Context, contributionID, userID string) error {
	contribution, err := s.getOwnContribution(ctx, contributionID, userID)
	if err != nil {
		return err
	}
	var updated models.Goal
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.goals.GetForUpdate(ctx, tx, contribution.GoalID)
		if err != nil {
			return err
		}
		if err := s.contributions.Delete(ctx, tx, contributionID); err != nil {
			return err
		}
		updated, err = s.recompute(ctx, tx, locked)
		return err
	})
	if err != nil {
		return err
	}
	s.broadcast(ctx, updated)
	return nil
}

func (s *GoalService) getOwnContribution(ctx context.Context, contributionID, userID string) (models.Contribution, error) {
	contribution, err := s.contributions.GetByID(ctx, contributionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contribution{}, ErrNotFound
		}
		return models.Contribution{}, err
	}
	if contribution.UserID != userID {
		return models.Contribution{}, ErrNotFound
	}
	return contribution, nil
}

// recompute re-derives the accumulated amount as the full ledger sum
// rather than an incremental adjustment, so prior drift self-heals.
// The caller holds the goal row lock.
func (s *GoalService) recompute(ctx context.Context, tx *sqlx.Tx, goal models.Goal) (models.Goal, error) {
	sum, err := s.contributions.SumByGoal(ctx, tx, goal.ID)
	if err != nil {
		return models.Goal{}, err
	}
	status := goal.Status
	if status == models.GoalActive && sum >= goal.Target {
		status = models.GoalCompleted
	}
	if err := s.goals.SetDerived(ctx, tx, goal.ID, sum, status); err != nil {
		return models.Goal{}, err
	}
	goal.Accumulated = sum
	goal.Status = status
	return goal, nil
}

func (s *GoalService) broadcast(ctx context.Context, goal models.Goal) {
	update := websocket.GoalUpdate{
		GoalID:      goal.ID,
		Name:        goal.Name,
		Accumulated: money.FormatMinor(goal.Accumulated),
		Target:      money.FormatMinor(goal.Target),
		Percentage:  money.Percentage(goal.Accumulated, goal.Target),
		Status:      string(goal.Status),
	}
	if goal.GroupID != nil {
		memberIDs, err := s.groups.ListMemberIDs(ctx, *goal.GroupID)
		if err != nil {
			return
		}
		for _, memberID := range memberIDs {
			s.hub.BroadcastGoal(memberID, update)
		}
		return
	}
	s.hub.BroadcastGoal(goal.OwnerID, update)
}

func (s *GoalService) Contributions(ctx context.Context, goalID, userID string, limit, offset int) ([]models.Contribution, error) {
	goal, err := s.Get(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	return s.contributions.ListByGoal(ctx, goal.ID, limit, offset)
}

func (s *GoalService) UserContributions(ctx context.Context, userID string, limit, offset int) ([]models.Contribution, error) {
	return s.contributions.ListByUser(ctx, userID, limit, offset)
}

func (s *GoalService) UserContributionsForGoal(ctx context.Context, goalID, userID string) ([]models.Contribution, error) {
	goal, err := s.Get(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	return s.contributions.ListByGoalAndUser(ctx, goal.ID, userID)
}

type Progress struct {
	GoalID      string            `json:"goal_id"`
	Name        string            `json:"name"`
	Target      int64             `json:"target_amount"`
	Accumulated int64             `json:"accumulated_amount"`
	Percentage  float64           `json:"percentage"`
	Remaining   int64             `json:"remaining"`
	Status      models.GoalStatus `json:"status"`
}

// Progress recomputes the derived total instead of trusting the cached
// column; when drift is found the correction (and any resulting
// completion) is persisted.
func (s *GoalService) Progress(ctx context.Context, goalID, userID string) (Progress, error) {
	goal, err := s.Get(ctx, goalID, userID)
	if err != nil {
		return Progress{}, err
	}
	var reconciled models.Goal
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.goals.GetForUpdate(ctx, tx, goal.ID)
		if err != nil {
			return err
		}
		reconciled, err = s.recompute(ctx, tx, locked)
		return err
	})
	if err != nil {
		return Progress{}, err
	}
	remaining := reconciled.Target - reconciled.Accumulated
	if remaining < 0 {
		remaining = 0
	}
	return Progress{
		GoalID:      reconciled.ID,
		Name:        reconciled.Name,
		Target:      reconciled.Target,
		Accumulated: reconciled.Accumulated,
		Percentage:  money.Percentage(reconciled.Accumulated, reconciled.Target),
		Remaining:   remaining,
		Status:      reconciled.Status,
	}, nil
}

func (s *GoalService) TotalContributed(ctx context.Context, goalID, userID string) (int64, error) {
	goal, err := s.Get(ctx, goalID, userID)
	if err != nil {
		return 0, err
	}
	var sum int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var inner error
		sum, inner = s.contributions.SumByGoal(ctx, tx, goal.ID)
		return inner
	})
	return sum, err
}
