package services

import (
	"context"
	"database/sql"
	"errors"

	"fintrack/internal/models"
)

// MembershipChecker answers group membership questions; its production
// implementation is store.GroupStore.
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	IsAdmin(ctx context.Context, groupID, userID string) (bool, error)
}

// RoleGetter reports a user's platform role.
type RoleGetter interface {
	GetRole(ctx context.Context, userID string) (models.UserRole, error)
}

// Access decides allow/deny for a requesting user against a target
// entity's ownership. The switch over the ownership variant is
// exhaustive: personal, global and group-scoped entities each have one
// rule.
type Access struct {
	groups MembershipChecker
	users  RoleGetter
}

func NewAccess(groups MembershipChecker, users RoleGetter) *Access {
	return &Access{groups: groups, users: users}
}

// ResolveVisible applies the record-visibility rule: personal entities
// belong to exactly one user and a mismatch is reported as not-found;
// group-scoped entities are open to every member. Global entities are
// readable by anyone.
func (a *Access) ResolveVisible(ctx context.Context, userID string, owner models.Ownership) error {
	switch owner.Kind {
	case OwnerGlobal:
		return nil
	case OwnerPersonal:
		if owner.OwnerID != userID {
			return ErrNotFound
		}
		return nil
	case OwnerGroup:
		member, err := a.groups.IsMember(ctx, owner.GroupID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotFound
		}
		return nil
	default:
		return ErrForbidden
	}
}

// ResolveParticipant is the stricter variant used for contributions:
// a denial is an explicit permission failure, not a hidden not-found.
func (a *Access) ResolveParticipant(ctx context.Context, userID string, owner models.Ownership) error {
	switch owner.Kind {
	case OwnerPersonal:
		if owner.OwnerID != userID {
			return ErrForbidden
		}
		return nil
	case OwnerGroup:
		member, err := a.groups.IsMember(ctx, owner.GroupID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// ResolveMutate gates writes and deletes. Global entities require the
// platform admin role; the other kinds follow ResolveVisible.
func (a *Access) ResolveMutate(ctx context.Context, userID string, owner models.Ownership) error {
	if owner.Kind == OwnerGlobal {
		return a.RequireAdmin(ctx, userID)
	}
	return a.ResolveVisible(ctx, userID, owner)
}

func (a *Access) RequireAdmin(ctx context.Context, userID string) error {
	role, err := a.users.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}
	if role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (a *Access) RequireGroupAdmin(ctx context.Context, groupID, userID string) error {
	admin, err := a.groups.IsAdmin(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	return nil
}

func (a *Access) RequireMember(ctx context.Context, groupID, userID string) error {
	member, err := a.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return nil
}

// Ownership kind aliases keep the switch statements above readable
// without importing models at every call site.
const (
	OwnerPersonal = models.OwnerPersonal
	OwnerGlobal   = models.OwnerGlobal
	OwnerGroup    = models.OwnerGroup
)
