package store

import (
	"context"
	"time"

	"fintrack/internal/models"
)

type InvitationStore struct {
	db DB
}

func NewInvitationStore(db DB) *InvitationStore {
	return &InvitationStore{db: db}
}

type InvitationInput struct {
	ID        string
	GroupID   string
	Token     string
	CreatedBy string
	InviteeID *string
	ExpiresAt *time.Time
}

func (s *InvitationStore) Create(ctx context.Context, tx Execer, input InvitationInput) error {
	query := `
		INSERT INTO invitations (id, group_id, token, created_by, invitee_id, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.GroupID, input.Token, input.CreatedBy, input.InviteeID, input.ExpiresAt)
	return err
}

func (s *InvitationStore) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	var row models.Invitation
	err := s.db.GetContext(ctx, &row, `
		SELECT id, group_id, token, created_by, invitee_id, status, created_at, expires_at, accepted_at, used
		FROM invitations
		WHERE token = $1
	`, token)
	return row, err
}

func (s *InvitationStore) GetByID(ctx context.Context, invitationID, groupID string) (models.Invitation, error) {
	var row models.Invitation
	err := s.db.GetContext(ctx, &row, `
		SELECT id, group_id, token, created_by, invitee_id, status, created_at, expires_at, accepted_at, used
		FROM invitations
		WHERE id = $1 AND group_id = $2
	`, invitationID, groupID)
	return row, err
}

func (s *InvitationStore) ListByGroup(ctx context.Context, groupID string) ([]models.Invitation, error) {
	var rows []models.Invitation
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, group_id, token, created_by, invitee_id, status, created_at, expires_at, accepted_at, used
		FROM invitations
		WHERE group_id = $1
		ORDER BY created_at DESC
	`, groupID)
	return rows, err
}

func (s *InvitationStore) SetStatus(ctx context.Context, tx Execer, invitationID string, status models.InvitationStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE invitations
		SET status = $1
		WHERE id = $2
	`, status, invitationID)
	return err
}

// MarkAccepted flips the invitation to accepted only while it is still
// pending, so a concurrent accept of the same token loses.
func (s *InvitationStore) MarkAccepted(ctx context.Context, tx Execer, invitationID string, acceptedAt time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'accepted', accepted_at = $1, used = TRUE
		WHERE id = $2 AND status = 'pending'
	`, acceptedAt, invitationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
