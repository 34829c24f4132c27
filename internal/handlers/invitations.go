package handlers

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/middleware"
	"fintrack/internal/models"

	"github.com/go-chi/chi/v5"
)

type createInvitationRequest struct {
	InviteeID *string `json:"invitee_id"`
	TTLDays   *int    `json:"ttl_days"`
}

type invitationResponse struct {
	Invitation models.Invitation `json:"invitation"`
	Link       string            `json:"link"`
	QRCode     string            `json:"qr_code,omitempty"`
}

func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.TTLDays != nil && *req.TTLDays <= 0 {
		respondError(w, http.StatusBadRequest, "ttl_days must be positive")
		return
	}
	invitation, err := h.invitations.Create(r.Context(), chi.URLParam(r, "groupID"), userID, req.InviteeID, req.TTLDays)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := invitationResponse{
		Invitation: invitation,
		Link:       h.invitations.Link(invitation.Token),
	}
	// QR generation failure is not worth failing the request over.
	if qr, err := h.invitations.QRCode(invitation.Token); err == nil {
		resp.QRCode = qr
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	invitations, err := h.invitations.ListForGroup(r.Context(), chi.URLParam(r, "groupID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invitations)
}

func (h *Handler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID := chi.URLParam(r, "groupID")
	invitationID := chi.URLParam(r, "invitationID")
	if err := h.invitations.Revoke(r.Context(), invitationID, groupID, userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "invitation revoked"})
}

func (h *Handler) ResolveInvitation(w http.ResponseWriter, r *http.Request) {
	invitation, err := h.invitations.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invitationResponse{
		Invitation: invitation,
		Link:       h.invitations.Link(invitation.Token),
	})
}

func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.invitations.Accept(r.Context(), chi.URLParam(r, "token"), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "invitation accepted"})
}

func (h *Handler) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.invitations.Reject(r.Context(), chi.URLParam(r, "token"), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "invitation rejected"})
}
