package services

import (
	"context"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubGroupStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, name, description, createdBy string) error
	getByIDFn       func(ctx context.Context, groupID string) (models.Group, error)
	updateFn        func(ctx context.Context, tx store.Execer, groupID, name, description string) error
	deleteCascadeFn func(ctx context.Context, tx store.Execer, groupID string) error
	addMemberFn     func(ctx context.Context, tx store.Execer, groupID, userID string, role models.MemberRole) error
	removeMemberFn  func(ctx context.Context, tx store.Execer, groupID, userID string) (int64, error)
	changeRoleFn    func(ctx context.Context, tx store.Execer, groupID, userID string, role models.MemberRole) (int64, error)
	getMembershipFn func(ctx context.Context, groupID, userID string) (models.Membership, error)
	isMemberFn      func(ctx context.Context, groupID, userID string) (bool, error)
	isAdminFn       func(ctx context.Context, groupID, userID string) (bool, error)
	listMembersFn   func(ctx context.Context, groupID string) ([]store.Member, error)
	listMemberIDsFn func(ctx context.Context, groupID string) ([]string, error)
	listByMemberFn  func(ctx context.Context, userID string, limit, offset int) ([]models.Group, error)
	listByCreatorFn func(ctx context.Context, userID string, limit, offset int) ([]models.Group, error)
}

func (s stubGroupStore) Create(ctx context.Context, tx store.Execer, id, name, description, createdBy string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, name, description, createdBy)
}

func (s stubGroupStore) GetByID(ctx context.Context, groupID string) (models.Group, error) {
	if s.getByIDFn == nil {
		return models.Group{ID: groupID}, nil
	}
	return s.getByIDFn(ctx, groupID)
}

func (s stubGroupStore) Update(ctx context.Context, tx store.Execer, groupID, name, description string) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, groupID, name, description)
}

func (s stubGroupStore) DeleteCascade(ctx context.Context, tx store.Execer, groupID string) error {
	if s.deleteCascadeFn == nil {
		return nil
	}
	return s.deleteCascadeFn(ctx, tx, groupID)
}

func (s stubGroupStore) AddMember(ctx context.Context, tx store.Execer, groupID, userID string, role models.MemberRole) error {
	if s.addMemberFn == nil {
		return nil
	}
	return s.addMemberFn(ctx, tx, groupID, userID, role)
}

func (s stubGroupStore) RemoveMember(ctx context.Context, tx store.Execer, groupID, userID string) (int64, error) {
	if s.removeMemberFn == nil {
		return 1, nil
	}
	return s.removeMemberFn(ctx, tx, groupID, userID)
}

func (s stubGroupStore) ChangeRole(ctx context.Context, tx store.Execer, groupID, userID string, role models.MemberRole) (int64, error) {
	if s.changeRoleFn == nil {
		return 1, nil
	}
	return s.changeRoleFn(ctx, tx, groupID, userID, role)
}

func (s stubGroupStore) GetMembership(ctx context.Context, groupID, userID string) (models.Membership, error) {
	if s.getMembershipFn == nil {
		return models.Membership{}, nil
	}
	return s.getMembershipFn(ctx, groupID, userID)
}

func (s stubGroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	if s.isMemberFn == nil {
		return true, nil
	}
	return s.isMemberFn(ctx, groupID, userID)
}

func (s stubGroupStore) IsAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	if s.isAdminFn == nil {
		return true, nil
	}
	return s.isAdminFn(ctx, groupID, userID)
}

func (s stubGroupStore) ListMembers(ctx context.Context, groupID string) ([]store.Member, error) {
	if s.listMembersFn == nil {
		return nil, nil
	}
	return s.listMembersFn(ctx, groupID)
}

func (s stubGroupStore) ListMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	if s.listMemberIDsFn == nil {
		return nil, nil
	}
	return s.listMemberIDsFn(ctx, groupID)
}

func (s stubGroupStore) ListByMember(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	if s.listByMemberFn == nil {
		return nil, nil
	}
	return s.listByMemberFn(ctx, userID, limit, offset)
}

func (s stubGroupStore) ListByCreator(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	if s.listByCreatorFn == nil {
		return nil, nil
	}
	return s.listByCreatorFn(ctx, userID, limit, offset)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubRoleGetter struct {
	role models.UserRole
	err  error
}

func (s stubRoleGetter) GetRole(ctx context.Context, userID string) (models.UserRole, error) {
	return s.role, s.err
}

type stubGoalStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.GoalInput) error
	getByIDFn      func(ctx context.Context, goalID string) (models.Goal, error)
	getForUpdateFn func(ctx context.Context, tx store.Getter, goalID string) (models.Goal, error)
	listByOwnerFn  func(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Goal, error)
	listByGroupFn  func(ctx context.Context, groupID string, limit, offset int) ([]models.Goal, error)
	listByStatusFn func(ctx context.Context, ownerID string, status models.GoalStatus, personalOnly bool) ([]models.Goal, error)
	updateFn       func(ctx context.Context, tx store.Execer, goalID, name string, target int64, startDate, endDate *time.Time, status models.GoalStatus, groupID *string) error
	setDerivedFn   func(ctx context.Context, tx store.Execer, goalID string, accumulated int64, status models.GoalStatus) error
	deleteFn       func(ctx context.Context, tx store.Execer, goalID string) error
}

func (s stubGoalStore) Create(ctx context.Context, tx store.Execer, input store.GoalInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubGoalStore) GetByID(ctx context.Context, goalID string) (models.Goal, error) {
	return s.getByIDFn(ctx, goalID)
}

func (s stubGoalStore) GetForUpdate(ctx context.Context, tx store.Getter, goalID string) (models.Goal, error) {
	return s.getForUpdateFn(ctx, tx, goalID)
}

func (s stubGoalStore) ListByOwner(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Goal, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(ctx, ownerID, personalOnly, limit, offset)
}

func (s stubGoalStore) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Goal, error) {
	if s.listByGroupFn == nil {
		return nil, nil
	}
	return s.listByGroupFn(ctx, groupID, limit, offset)
}

func (s stubGoalStore) ListByStatus(ctx context.Context, ownerID string, status models.GoalStatus, personalOnly bool) ([]models.Goal, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, ownerID, status, personalOnly)
}

func (s stubGoalStore) Update(ctx context.Context, tx store.Execer, goalID, name string, target int64, startDate, endDate *time.Time, status models.GoalStatus, groupID *string) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, goalID, name, target, startDate, endDate, status, groupID)
}

func (s stubGoalStore) SetDerived(ctx context.Context, tx store.Execer, goalID string, accumulated int64, status models.GoalStatus) error {
	if s.setDerivedFn == nil {
		return nil
	}
	return s.setDerivedFn(ctx, tx, goalID, accumulated, status)
}

func (s stubGoalStore) Delete(ctx context.Context, tx store.Execer, goalID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, goalID)
}

type stubContributionStore struct {
	createFn            func(ctx context.Context, tx store.Execer, input store.ContributionInput) error
	getByIDFn           func(ctx context.Context, contributionID string) (models.Contribution, error)
	listByGoalFn        func(ctx context.Context, goalID string, limit, offset int) ([]models.Contribution, error)
	listByUserFn        func(ctx context.Context, userID string, limit, offset int) ([]models.Contribution, error)
	listByGoalAndUserFn func(ctx context.Context, goalID, userID string) ([]models.Contribution, error)
	updateFn            func(ctx context.Context, tx store.Execer, contributionID string, amount int64, date time.Time) error
	deleteFn            func(ctx context.Context, tx store.Execer, contributionID string) error
	sumByGoalFn         func(ctx context.Context, q store.Getter, goalID string) (int64, error)
}

func (s stubContributionStore) Create(ctx context.Context, tx store.Execer, input store.ContributionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubContributionStore) GetByID(ctx context.Context, contributionID string) (models.Contribution, error) {
	if s.getByIDFn == nil {
		return models.Contribution{ID: contributionID}, nil
	}
	return s.getByIDFn(ctx, contributionID)
}

func (s stubContributionStore) ListByGoal(ctx context.Context, goalID string, limit, offset int) ([]models.Contribution, error) {
	if s.listByGoalFn == nil {
		return nil, nil
	}
	return s.listByGoalFn(ctx, goalID, limit, offset)
}

func (s stubContributionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Contribution, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubContributionStore) ListByGoalAndUser(ctx context.Context, goalID, userID string) ([]models.Contribution, error) {
	if s.listByGoalAndUserFn == nil {
		return nil, nil
	}
	return s.listByGoalAndUserFn(ctx, goalID, userID)
}

func (s stubContributionStore) Update(ctx context.Context, tx store.Execer, contributionID string, amount int64, date time.Time) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, contributionID, amount, date)
}

func (s stubContributionStore) Delete(ctx context.Context, tx store.Execer, contributionID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, contributionID)
}

func (s stubContributionStore) SumByGoal(ctx context.Context, q store.Getter, goalID string) (int64, error) {
	return s.sumByGoalFn(ctx, q, goalID)
}

type stubHub struct {
	calls []websocket.GoalUpdate
	users []string
}

func (s *stubHub) BroadcastGoal(userID string, update websocket.GoalUpdate) {
	s.users = append(s.users, userID)
	s.calls = append(s.calls, update)
}

type stubInvitationStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.InvitationInput) error
	getByTokenFn   func(ctx context.Context, token string) (models.Invitation, error)
	getByIDFn      func(ctx context.Context, invitationID, groupID string) (models.Invitation, error)
	listByGroupFn  func(ctx context.Context, groupID string) ([]models.Invitation, error)
	setStatusFn    func(ctx context.Context, tx store.Execer, invitationID string, status models.InvitationStatus) error
	markAcceptedFn func(ctx context.Context, tx store.Execer, invitationID string, acceptedAt time.Time) (int64, error)
}

func (s stubInvitationStore) Create(ctx context.Context, tx store.Execer, input store.InvitationInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubInvitationStore) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	return s.getByTokenFn(ctx, token)
}

func (s stubInvitationStore) GetByID(ctx context.Context, invitationID, groupID string) (models.Invitation, error) {
	return s.getByIDFn(ctx, invitationID, groupID)
}

func (s stubInvitationStore) ListByGroup(ctx context.Context, groupID string) ([]models.Invitation, error) {
	if s.listByGroupFn == nil {
		return nil, nil
	}
	return s.listByGroupFn(ctx, groupID)
}

func (s stubInvitationStore) SetStatus(ctx context.Context, tx store.Execer, invitationID string, status models.InvitationStatus) error {
	if s.setStatusFn == nil {
		return nil
	}
	return s.setStatusFn(ctx, tx, invitationID, status)
}

func (s stubInvitationStore) MarkAccepted(ctx context.Context, tx store.Execer, invitationID string, acceptedAt time.Time) (int64, error) {
	if s.markAcceptedFn == nil {
		return 1, nil
	}
	return s.markAcceptedFn(ctx, tx, invitationID, acceptedAt)
}

type stubCategoryStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.CategoryInput) error
	getByIDFn      func(ctx context.Context, categoryID string) (models.Category, error)
	listForUserFn  func(ctx context.Context, userID string, categoryType models.CategoryType, limit, offset int) ([]models.Category, error)
	listGlobalFn   func(ctx context.Context, limit, offset int) ([]models.Category, error)
	listPersonalFn func(ctx context.Context, userID string, limit, offset int) ([]models.Category, error)
	updateFn       func(ctx context.Context, tx store.Execer, categoryID string, name string, categoryType models.CategoryType, color, icon string) error
	deleteFn       func(ctx context.Context, tx store.Execer, categoryID string) error
	usageFn        func(ctx context.Context, categoryID string) (store.CategoryUsage, error)
}

func (s stubCategoryStore) Create(ctx context.Context, tx store.Execer, input store.CategoryInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubCategoryStore) GetByID(ctx context.Context, categoryID string) (models.Category, error) {
	return s.getByIDFn(ctx, categoryID)
}

func (s stubCategoryStore) ListForUser(ctx context.Context, userID string, categoryType models.CategoryType, limit, offset int) ([]models.Category, error) {
	if s.listForUserFn == nil {
		return nil, nil
	}
	return s.listForUserFn(ctx, userID, categoryType, limit, offset)
}

func (s stubCategoryStore) ListGlobal(ctx context.Context, limit, offset int) ([]models.Category, error) {
	if s.listGlobalFn == nil {
		return nil, nil
	}
	return s.listGlobalFn(ctx, limit, offset)
}

func (s stubCategoryStore) ListPersonal(ctx context.Context, userID string, limit, offset int) ([]models.Category, error) {
	if s.listPersonalFn == nil {
		return nil, nil
	}
	return s.listPersonalFn(ctx, userID, limit, offset)
}

func (s stubCategoryStore) Update(ctx context.Context, tx store.Execer, categoryID string, name string, categoryType models.CategoryType, color, icon string) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, categoryID, name, categoryType, color, icon)
}

func (s stubCategoryStore) Delete(ctx context.Context, tx store.Execer, categoryID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, categoryID)
}

func (s stubCategoryStore) Usage(ctx context.Context, categoryID string) (store.CategoryUsage, error) {
	if s.usageFn == nil {
		return store.CategoryUsage{}, nil
	}
	return s.usageFn(ctx, categoryID)
}

type stubRecordStore struct {
	createFn          func(ctx context.Context, tx store.Execer, input store.RecordInput) error
	getByIDFn         func(ctx context.Context, recordID string) (models.Record, error)
	listByOwnerFn     func(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Record, error)
	listByGroupFn     func(ctx context.Context, groupID string, limit, offset int) ([]models.Record, error)
	listByCategoryFn  func(ctx context.Context, ownerID, categoryID string, limit, offset int) ([]models.Record, error)
	listByDateRangeFn func(ctx context.Context, ownerID string, from, to time.Time, personalOnly bool) ([]models.Record, error)
	updateFn          func(ctx context.Context, tx store.Execer, input store.RecordInput) error
	deleteFn          func(ctx context.Context, tx store.Execer, recordID string) error
	totalByOwnerFn    func(ctx context.Context, ownerID string, personalOnly bool) (int64, error)
	totalByGroupFn    func(ctx context.Context, groupID string) (int64, error)
}

func (s stubRecordStore) Create(ctx context.Context, tx store.Execer, input store.RecordInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubRecordStore) GetByID(ctx context.Context, recordID string) (models.Record, error) {
	return s.getByIDFn(ctx, recordID)
}

func (s stubRecordStore) ListByOwner(ctx context.Context, ownerID string, personalOnly bool, limit, offset int) ([]models.Record, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(ctx, ownerID, personalOnly, limit, offset)
}

func (s stubRecordStore) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Record, error) {
	if s.listByGroupFn == nil {
		return nil, nil
	}
	return s.listByGroupFn(ctx, groupID, limit, offset)
}

func (s stubRecordStore) ListByCategory(ctx context.Context, ownerID, categoryID string, limit, offset int) ([]models.Record, error) {
	if s.listByCategoryFn == nil {
		return nil, nil
	}
	return s.listByCategoryFn(ctx, ownerID, categoryID, limit, offset)
}

func (s stubRecordStore) ListByDateRange(ctx context.Context, ownerID string, from, to time.Time, personalOnly bool) ([]models.Record, error) {
	if s.listByDateRangeFn == nil {
		return nil, nil
	}
	return s.listByDateRangeFn(ctx, ownerID, from, to, personalOnly)
}

func (s stubRecordStore) Update(ctx context.Context, tx store.Execer, input store.RecordInput) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, input)
}

func (s stubRecordStore) Delete(ctx context.Context, tx store.Execer, recordID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, recordID)
}

func (s stubRecordStore) TotalByOwner(ctx context.Context, ownerID string, personalOnly bool) (int64, error) {
	if s.totalByOwnerFn == nil {
		return 0, nil
	}
	return s.totalByOwnerFn(ctx, ownerID, personalOnly)
}

func (s stubRecordStore) TotalByGroup(ctx context.Context, groupID string) (int64, error) {
	if s.totalByGroupFn == nil {
		return 0, nil
	}
	return s.totalByGroupFn(ctx, groupID)
}
