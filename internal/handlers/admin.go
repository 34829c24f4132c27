package handlers

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/websocket"

	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	entries, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit log")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type promoteRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if _, err := h.users.GetByID(r.Context(), req.UserID); err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.PromoteAdmin(r.Context(), tx, req.UserID)
	}); err != nil {
		respondError(w, http.StatusInternalServerError, "promotion failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "user promoted"})
}

// WSGoals upgrades to a websocket that streams goal progress updates.
// Browsers cannot set an Authorization header on the upgrade request,
// so the token rides in the query string.
func (h *Handler) WSGoals(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
