package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/go-chi/chi/v5"
)

type goalRequest struct {
	Name      string             `json:"name"`
	Target    string             `json:"target_amount"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Status    models.GoalStatus  `json:"status"`
	GroupID   *string            `json:"group_id"`
}

func (req goalRequest) dates() (start, end *time.Time, msg string) {
	if req.StartDate != "" {
		t, err := parseDate(req.StartDate)
		if err != nil {
			return nil, nil, "start_date must be YYYY-MM-DD"
		}
		start = &t
	}
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			return nil, nil, "end_date must be YYYY-MM-DD"
		}
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, "end_date must not precede start_date"
	}
	return start, end, ""
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := money.ParseMinor(req.Target)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, end, msg := req.dates()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	goal, err := h.goals.Create(r.Context(), userID, services.GoalCommand{
		Name:      req.Name,
		Target:    target,
		StartDate: start,
		EndDate:   end,
		GroupID:   req.GroupID,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, goal)
}

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	personalOnly := r.URL.Query().Get("personal") == "true"
	limit, offset := pagination(r)
	goals, err := h.goals.ListForUser(r.Context(), userID, personalOnly, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, goals)
}

func (h *Handler) ListGoalsByStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status := models.GoalStatus(chi.URLParam(r, "status"))
	switch status {
	case models.GoalActive, models.GoalCompleted, models.GoalCancelled:
	default:
		respondError(w, http.StatusBadRequest, "status must be active, completed or cancelled")
		return
	}
	personalOnly := r.URL.Query().Get("personal") == "true"
	goals, err := h.goals.ListByStatus(r.Context(), userID, status, personalOnly)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, goals)
}

func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	goal, err := h.goals.Get(r.Context(), chi.URLParam(r, "goalID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := money.ParseMinor(req.Target)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != "" {
		switch req.Status {
		case models.GoalActive, models.GoalCompleted, models.GoalCancelled:
		default:
			respondError(w, http.StatusBadRequest, "status must be active, completed or cancelled")
			return
		}
	}
	start, end, msg := req.dates()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	goal, err := h.goals.Update(r.Context(), chi.URLParam(r, "goalID"), userID, services.GoalUpdateCommand{
		Name:      req.Name,
		Target:    target,
		StartDate: start,
		EndDate:   end,
		Status:    req.Status,
		GroupID:   req.GroupID,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.goals.Delete(r.Context(), chi.URLParam(r, "goalID"), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "goal deleted"})
}

func (h *Handler) GoalProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	progress, err := h.goals.Progress(r.Context(), chi.URLParam(r, "goalID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

type contributionRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

func (req contributionRequest) parse() (amount int64, date time.Time, msg string) {
	amount, err := money.ParseMinor(req.Amount)
	if err != nil {
		return 0, time.Time{}, err.Error()
	}
	date, err = parseDateOrNow(req.Date)
	if err != nil {
		return 0, time.Time{}, err.Error()
	}
	return amount, date, ""
}

func (h *Handler) AddContribution(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req contributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, date, msg := req.parse()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	contribution, err := h.goals.AddContribution(r.Context(), chi.URLParam(r, "goalID"), userID, amount, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, contribution)
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := pagination(r)
	contributions, err := h.goals.Contributions(r.Context(), chi.URLParam(r, "goalID"), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contributions)
}

func (h *Handler) ListOwnContributionsForGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	contributions, err := h.goals.UserContributionsForGoal(r.Context(), chi.URLParam(r, "goalID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contributions)
}

func (h *Handler) ContributionTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	total, err := h.goals.TotalContributed(r.Context(), chi.URLParam(r, "goalID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":     total,
		"formatted": money.FormatMinor(total),
	})
}

func (h *Handler) ListOwnContributions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := pagination(r)
	contributions, err := h.goals.UserContributions(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contributions)
}

func (h *Handler) UpdateContribution(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req contributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, date, msg := req.parse()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	contribution, err := h.goals.UpdateContribution(r.Context(), chi.URLParam(r, "contributionID"), userID, amount, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contribution)
}

func (h *Handler) DeleteContribution(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.goals.DeleteContribution(r.Context(), chi.URLParam(r, "contributionID"), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "contribution deleted"})
}
