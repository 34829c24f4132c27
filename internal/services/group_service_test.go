package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/store"
)

func TestCreateGroupAddsCreatorAsAdmin(t *testing.T) {
	var memberRole models.MemberRole
	var memberID string
	groups := stubGroupStore{
		addMemberFn: func(ctx context.Context, tx store.Execer, groupID, userID string, role models.MemberRole) error {
			memberID = userID
			memberRole = role
			return nil
		},
		getByIDFn: func(ctx context.Context, groupID string) (models.Group, error) {
			return models.Group{ID: groupID, Name: "household", CreatedBy: "user-1"}, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	group, err := service.Create(context.Background(), "user-1", "household", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if memberID != "user-1" || memberRole != models.MemberRoleAdmin {
		t.Fatalf("creator membership = (%s, %s), want (user-1, admin)", memberID, memberRole)
	}
	if group.Name != "household" {
		t.Fatalf("name = %q", group.Name)
	}
}

func TestGetGroupHiddenFromNonMembers(t *testing.T) {
	groups := stubGroupStore{
		isMemberFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			return false, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	if _, err := service.Get(context.Background(), "grp-1", "outsider"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteGroupCreatorOnly(t *testing.T) {
	groups := stubGroupStore{
		getByIDFn: func(ctx context.Context, groupID string) (models.Group, error) {
			return models.Group{ID: groupID, CreatedBy: "user-1"}, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	if err := service.Delete(context.Background(), "grp-1", "admin-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.Delete(context.Background(), "grp-1", "user-1"); err != nil {
		t.Fatalf("creator delete failed: %v", err)
	}
}

func TestRemoveMemberCreatorImmunity(t *testing.T) {
	groups := stubGroupStore{
		getByIDFn: func(ctx context.Context, groupID string) (models.Group, error) {
			return models.Group{ID: groupID, CreatedBy: "creator-1"}, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})

	// Even an admin cannot remove the creator; nor can the creator
	// remove themselves while the group exists.
	if err := service.RemoveMember(context.Background(), "grp-1", "creator-1", "admin-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin removal, got %v", err)
	}
	if err := service.RemoveMember(context.Background(), "grp-1", "creator-1", "creator-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for self removal, got %v", err)
	}
}

func TestRemoveMemberSelfLeave(t *testing.T) {
	removed := false
	groups := stubGroupStore{
		isAdminFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			return false, nil
		},
		getByIDFn: func(ctx context.Context, groupID string) (models.Group, error) {
			return models.Group{ID: groupID, CreatedBy: "creator-1"}, nil
		},
		removeMemberFn: func(ctx context.Context, tx store.Execer, groupID, userID string) (int64, error) {
			removed = true
			return 1, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	if err := service.RemoveMember(context.Background(), "grp-1", "user-2", "user-2"); err != nil {
		t.Fatalf("self removal failed: %v", err)
	}
	if !removed {
		t.Fatal("membership row was not deleted")
	}
}

func TestRemoveMemberRequiresAdminOrSelf(t *testing.T) {
	groups := stubGroupStore{
		isAdminFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			return false, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	if err := service.RemoveMember(context.Background(), "grp-1", "user-2", "user-3"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRemoveMemberMissingMembership(t *testing.T) {
	groups := stubGroupStore{
		getByIDFn: func(ctx context.Context, groupID string) (models.Group, error) {
			return models.Group{ID: groupID, CreatedBy: "creator-1"}, nil
		},
		removeMemberFn: func(ctx context.Context, tx store.Execer, groupID, userID string) (int64, error) {
			return 0, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	if err := service.RemoveMember(context.Background(), "grp-1", "stranger", "admin-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddMemberAlreadyMember(t *testing.T) {
	service := NewGroupService(fakeTxRunner{}, stubGroupStore{}, stubAuditStore{})
	err := service.AddMember(context.Background(), "grp-1", "user-2", models.MemberRoleMember, "admin-1")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestChangeRoleRequiresAdmin(t *testing.T) {
	groups := stubGroupStore{
		isAdminFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			return false, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	err := service.ChangeRole(context.Background(), "grp-1", "user-2", models.MemberRoleAdmin, "member-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMembersListGatedToMembers(t *testing.T) {
	groups := stubGroupStore{
		isMemberFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			return false, nil
		},
	}
	service := NewGroupService(fakeTxRunner{}, groups, stubAuditStore{})
	if _, err := service.Members(context.Background(), "grp-1", "outsider"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
