package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GroupStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, description, createdBy string) error
	GetByID(ctx context.Context, groupID string) (models.Group, error)
	Update(ctx context.Context, tx store.Execer, groupID, name, description string) error
	DeleteCascade(ctx context.Context, tx store.Execer, groupID string) error
	AddMember(ctx context.Context, tx store.Execer, groupID, userID string, role models.MemberRole) error
	RemoveMember(ctx context.Context, tx store.Execer, groupID, userID string) (int64, error)
	ChangeRole(ctx context.Context, tx store.Execer, groupID, userID string, role models.MemberRole) (int64, error)
	GetMembership(ctx context.Context, groupID, userID string) (models.Membership, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	IsAdmin(ctx context.Context, groupID, userID string) (bool, error)
	ListMembers(ctx context.Context, groupID string) ([]store.Member, error)
	ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
	ListByMember(ctx context.Context, userID string, limit, offset int) ([]models.Group, error)
	ListByCreator(ctx context.Context, userID string, limit, offset int) ([]models.Group, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type GroupService struct {
	txRunner db.TxRunner
	groups   GroupStore
	audit    AuditStore
}

func NewGroupService(txRunner db.TxRunner, groups GroupStore, audit AuditStore) *GroupService {
	return &GroupService{txRunner: txRunner, groups: groups, audit: audit}
}

// Create inserts the group and the creator's admin membership in one
// transaction; a group never exists without its creator as admin.
func (s *GroupService) Create(ctx context.Context, creatorID, name, description string) (models.Group, error) {
	groupID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.Create(ctx, tx, groupID, name, description, creatorID); err != nil {
			return err
		}
		if err := s.groups.AddMember(ctx, tx, groupID, creatorID, models.MemberRoleAdmin); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"name": name})
		return s.audit.Log(ctx, tx, creatorID, "group_create", "group", groupID, string(data))
	})
	if err != nil {
		return models.Group{}, err
	}
	return s.groups.GetByID(ctx, groupID)
}

func (s *GroupService) Get(ctx context.Context, groupID, userID string) (models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return models.Group{}, err
	}
	if !member {
		return models.Group{}, ErrNotFound
	}
	return group, nil
}

// Update changes group metadata; only a group admin may do it.
func (s *GroupService) Update(ctx context.Context, groupID, userID, name, description string) (models.Group, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	admin, err := s.groups.IsAdmin(ctx, groupID, userID)
	if err != nil {
		return models.Group{}, err
	}
	if !admin {
		return models.Group{}, ErrForbidden
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.groups.Update(ctx, tx, groupID, name, description)
	})
	if err != nil {
		return models.Group{}, err
	}
	return s.groups.GetByID(ctx, groupID)
}

// Delete removes the group and everything scoped to it. Only the
// creator may delete; the cascade runs in one transaction.
func (s *GroupService) Delete(ctx context.Context, groupID, userID string) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if group.CreatedBy != userID {
		return ErrForbidden
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.DeleteCascade(ctx, tx, groupID); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"name": group.Name})
		return s.audit.Log(ctx, tx, userID, "group_delete", "group", groupID, string(data))
	})
}

func (s *GroupService) AddMember(ctx context.Context, groupID, userID string, role models.MemberRole, adminID string) error {
	admin, err := s.groups.IsAdmin(ctx, groupID, adminID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.AddMember(ctx, tx, groupID, userID, role); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, adminID, "member_add", "group", groupID, `{"user_id":"`+userID+`"}`)
	})
}

// RemoveMember enforces the permission rule (a group admin, or the
// member removing themselves) and creator immunity: the creator holds
// their membership for as long as the group exists.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID, removerID string) error {
	admin, err := s.groups.IsAdmin(ctx, groupID, removerID)
	if err != nil {
		return err
	}
	if !admin && userID != removerID {
		return ErrForbidden
	}
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if group.CreatedBy == userID {
		return ErrForbidden
	}
	var removed int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		removed, err = s.groups.RemoveMember(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return ErrNotFound
		}
		return s.audit.Log(ctx, tx, removerID, "member_remove", "group", groupID, `{"user_id":"`+userID+`"}`)
	})
	return err
}

func (s *GroupService) ChangeRole(ctx context.Context, groupID, userID string, role models.MemberRole, adminID string) error {
	admin, err := s.groups.IsAdmin(ctx, groupID, adminID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		changed, err := s.groups.ChangeRole(ctx, tx, groupID, userID, role)
		if err != nil {
			return err
		}
		if changed == 0 {
			return ErrNotFound
		}
		return s.audit.Log(ctx, tx, adminID, "member_role_change", "group", groupID, `{"user_id":"`+userID+`","role":"`+string(role)+`"}`)
	})
}

func (s *GroupService) Members(ctx context.Context, groupID, userID string) ([]store.Member, error) {
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrForbidden
	}
	return s.groups.ListMembers(ctx, groupID)
}

func (s *GroupService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	return s.groups.ListByMember(ctx, userID, limit, offset)
}

func (s *GroupService) ListCreatedBy(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	return s.groups.ListByCreator(ctx, userID, limit, offset)
}

func (s *GroupService) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return s.groups.IsMember(ctx, groupID, userID)
}

func (s *GroupService) IsAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	return s.groups.IsAdmin(ctx, groupID, userID)
}
