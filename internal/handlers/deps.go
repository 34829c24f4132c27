package handlers

import (
	"context"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetRole(ctx context.Context, userID string) (models.UserRole, error)
	UpdateProfile(ctx context.Context, tx store.Execer, userID, name, preferredCurrency string) error
	UpdatePasswordHash(ctx context.Context, tx store.Execer, userID, passwordHash string) error
	PromoteAdmin(ctx context.Context, tx store.Execer, userID string) error
	Count(ctx context.Context) (int, error)
	DeletePersonalData(ctx context.Context, tx store.Execer, userID string) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

type GroupService interface {
	Create(ctx context.Context, creatorID, name, description string) (models.Group, error)
	Get(ctx context.Context, groupID, userID string) (models.Group, error)
	Update(ctx context.Context, groupID, userID, name, description string) (models.Group, error)
	Delete(ctx context.Context, groupID, userID string) error
	AddMember(ctx context.Context, groupID, userID string, role models.MemberRole, adminID string) error
	RemoveMember(ctx context.Context, groupID, userID, removerID string) error
	ChangeRole(ctx context.Context, groupID, userID string, role models.MemberRole, adminID string) error
	Members(ctx context.Context, groupID, userID string) ([]store.Member, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Group, error)
	ListCreatedBy(ctx context.Context, userID string, limit, offset int) ([]models.Group, error)
}

type InvitationService interface {
	Create(ctx context.Context, groupID, creatorID string, inviteeID *string, ttlDays *int) (models.Invitation, error)
	Resolve(ctx context.Context, token string) (models.Invitation, error)
	Accept(ctx context.Context, token, userID string) error
	Reject(ctx context.Context, token, userID string) error
	Revoke(ctx context.Context, invitationID, groupID, adminID string) error
	ListForGroup(ctx context.Context, groupID, userID string) ([]models.Invitation, error)
	Link(token string) string
	QRCode(token string) (string, error)
}

type CategoryService interface {
	Create(ctx context.Context, userID string, cmd services.CategoryCommand) (models.Category, error)
	Get(ctx context.Context, categoryID, userID string) (models.Category, error)
	ListForUser(ctx context.Context, userID string, categoryType models.CategoryType, limit, offset int) ([]models.Category, error)
	ListGlobal(ctx context.Context, limit, offset int) ([]models.Category, error)
	ListPersonal(ctx context.Context, userID string, limit, offset int) ([]models.Category, error)
	Update(ctx context.Context, categoryID, userID string, cmd services.CategoryCommand) (models.Category, error)
	Delete(ctx context.Context, categoryID, userID string) error
	UsageStats(ctx context.Context, categoryID, userID string) (services.CategoryStats, error)
}

type RecordService interface {
	Create(ctx context.Context, userID string, cmd services.RecordCommand) (models.Record, error)
	Get(ctx context.Context, recordID, userID string) (models.Record, error)
	Update(ctx context.Context, recordID, userID string, cmd services.RecordCommand) (models.Record, error)
	Delete(ctx context.Context, recordID, userID string) error
	ListForUser(ctx context.Context, userID string, personalOnly bool, limit, offset int) ([]models.Record, error)
	ListForGroup(ctx context.Context, groupID, userID string, limit, offset int) ([]models.Record, error)
	ListByCategory(ctx context.Context, userID, categoryID string, limit, offset int) ([]models.Record, error)
	ListByDateRange(ctx context.Context, userID string, from, to time.Time, personalOnly bool) ([]models.Record, error)
	TotalForUser(ctx context.Context, userID string, personalOnly bool) (int64, error)
	TotalForGroup(ctx context.Context, groupID, userID string) (int64, error)
}

type GoalService interface {
	Create(ctx context.Context, userID string, cmd services.GoalCommand) (models.Goal, error)
	Get(ctx context.Context, goalID, userID string) (models.Goal, error)
	ListForUser(ctx context.Context, userID string, personalOnly bool, limit, offset int) ([]models.Goal, error)
	ListForGroup(ctx context.Context, groupID, userID string, limit, offset int) ([]models.Goal, error)
	ListByStatus(ctx context.Context, userID string, status models.GoalStatus, personalOnly bool) ([]models.Goal, error)
	Update(ctx context.Context, goalID, userID string, cmd services.GoalUpdateCommand) (models.Goal, error)
	Delete(ctx context.Context, goalID, userID string) error
	AddContribution(ctx context.Context, goalID, userID string, amount int64, date time.Time) (models.Contribution, error)
	UpdateContribution(ctx context.Context, contributionID, userID string, amount int64, date time.Time) (models.Contribution, error)
	DeleteContribution(ctx context.Context, contributionID, userID string) error
	Contributions(ctx context.Context, goalID, userID string, limit, offset int) ([]models.Contribution, error)
	UserContributions(ctx context.Context, userID string, limit, offset int) ([]models.Contribution, error)
	UserContributionsForGoal(ctx context.Context, goalID, userID string) ([]models.Contribution, error)
	Progress(ctx context.Context, goalID, userID string) (services.Progress, error)
	TotalContributed(ctx context.Context, goalID, userID string) (int64, error)
}
