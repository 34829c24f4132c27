package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	qrcode "github.com/skip2/go-qrcode"
)

type InvitationStore interface {
	Create(ctx context.Context, tx store.Execer, input store.InvitationInput) error
	GetByToken(ctx context.Context, token string) (models.Invitation, error)
	GetByID(ctx context.Context, invitationID, groupID string) (models.Invitation, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.Invitation, error)
	SetStatus(ctx context.Context, tx store.Execer, invitationID string, status models.InvitationStatus) error
	MarkAccepted(ctx context.Context, tx store.Execer, invitationID string, acceptedAt time.Time) (int64, error)
}

type InvitationService struct {
	txRunner    db.TxRunner
	invitations InvitationStore
	groups      GroupStore
	audit       AuditStore
	frontendURL string
	now         func() time.Time
}

func NewInvitationService(txRunner db.TxRunner, invitations InvitationStore, groups GroupStore, audit AuditStore, frontendURL string) *InvitationService {
	return &InvitationService{
		txRunner:    txRunner,
		invitations: invitations,
		groups:      groups,
		audit:       audit,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// generateToken returns an opaque URL-safe token with 32 bytes of
// entropy, unique across invitations by construction.
func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Create issues a pending invitation. Only a group admin may invite;
// ttlDays of nil means the token never expires.
func (s *InvitationService) Create(ctx context.Context, groupID, creatorID string, inviteeID *string, ttlDays *int) (models.Invitation, error) {
	admin, err := s.groups.IsAdmin(ctx, groupID, creatorID)
	if err != nil {
		return models.Invitation{}, err
	}
	if !admin {
		return models.Invitation{}, ErrForbidden
	}
	token, err := generateToken()
	if err != nil {
		return models.Invitation{}, err
	}
	var expiresAt *time.Time
	if ttlDays != nil && *ttlDays > 0 {
		expiry := s.now().Add(time.Duration(*ttlDays) * 24 * time.Hour)
		expiresAt = &expiry
	}
	invitationID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.invitations.Create(ctx, tx, store.InvitationInput{
			ID:        invitationID,
			GroupID:   groupID,
			Token:     token,
			CreatedBy: creatorID,
			InviteeID: inviteeID,
			ExpiresAt: expiresAt,
		})
	})
	if err != nil {
		return models.Invitation{}, err
	}
	return s.invitations.GetByToken(ctx, token)
}

// Resolve looks an invitation up by token after reconciling expiry.
func (s *InvitationService) Resolve(ctx context.Context, token string) (models.Invitation, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invitation{}, ErrNotFound
		}
		return models.Invitation{}, err
	}
	expired, err := s.reconcileExpiry(ctx, &invitation)
	if err != nil {
		return models.Invitation{}, err
	}
	if expired {
		return models.Invitation{}, ErrNotFound
	}
	return invitation, nil
}

// reconcileExpiry is a side-effecting read: a pending invitation whose
// expires_at has passed is persisted as expired on the first lookup
// that crosses the boundary, then treated as absent.
func (s *InvitationService) reconcileExpiry(ctx context.Context, invitation *models.Invitation) (bool, error) {
	if invitation.ExpiresAt == nil || !s.now().After(*invitation.ExpiresAt) {
		return false, nil
	}
	if invitation.Status == models.InvitationPending {
		err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.invitations.SetStatus(ctx, tx, invitation.ID, models.InvitationExpired)
		})
		if err != nil {
			return false, err
		}
		invitation.Status = models.InvitationExpired
	}
	return true, nil
}

// Accept turns the token into a member-role membership. The membership
// insert and the invitation state change commit together or not at all.
func (s *InvitationService) Accept(ctx context.Context, token, userID string) error {
	invitation, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if invitation.Status != models.InvitationPending {
		return ErrInvalidState
	}
	member, err := s.groups.IsMember(ctx, invitation.GroupID, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.AddMember(ctx, tx, invitation.GroupID, userID, models.MemberRoleMember); err != nil {
			return err
		}
		accepted, err := s.invitations.MarkAccepted(ctx, tx, invitation.ID, s.now())
		if err != nil {
			return err
		}
		if accepted == 0 {
			return ErrInvalidState
		}
		return s.audit.Log(ctx, tx, userID, "invitation_accept", "invitation", invitation.ID, `{"group_id":"`+invitation.GroupID+`"}`)
	})
}

// Reject declines a pending invitation. The rejecting user is not
// matched against the targeted invitee; anyone holding the token may
// reject an untargeted invitation.
func (s *InvitationService) Reject(ctx context.Context, token, userID string) error {
	invitation, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if invitation.Status != models.InvitationPending {
		return ErrInvalidState
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.invitations.SetStatus(ctx, tx, invitation.ID, models.InvitationRejected); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, userID, "invitation_reject", "invitation", invitation.ID, `{"group_id":"`+invitation.GroupID+`"}`)
	})
}

// Revoke force-expires a pending or rejected invitation. An accepted
// invitation cannot be revoked.
func (s *InvitationService) Revoke(ctx context.Context, invitationID, groupID, adminID string) error {
	admin, err := s.groups.IsAdmin(ctx, groupID, adminID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	invitation, err := s.invitations.GetByID(ctx, invitationID, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if invitation.Status == models.InvitationAccepted {
		return ErrInvalidState
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.invitations.SetStatus(ctx, tx, invitationID, models.InvitationExpired); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, adminID, "invitation_revoke", "invitation", invitationID, `{"group_id":"`+groupID+`"}`)
	})
}

func (s *InvitationService) ListForGroup(ctx context.Context, groupID, userID string) ([]models.Invitation, error) {
	admin, err := s.groups.IsAdmin(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrForbidden
	}
	return s.invitations.ListByGroup(ctx, groupID)
}

// Link formats the user-facing invitation URL. Pure; no state change.
func (s *InvitationService) Link(token string) string {
	return s.frontendURL + "/invitation/" + token
}

// QRCode renders the invitation link as a base64 PNG. Rendering
// failure is non-fatal for callers: they keep the link and drop the
// image.
func (s *InvitationService) QRCode(token string) (string, error) {
	png, err := qrcode.Encode(s.Link(token), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
