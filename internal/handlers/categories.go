package handlers

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/go-chi/chi/v5"
)

type categoryRequest struct {
	Name     string              `json:"name"`
	Type     models.CategoryType `json:"type"`
	Color    string              `json:"color"`
	Icon     string              `json:"icon"`
	IsGlobal bool                `json:"is_global"`
}

func (req categoryRequest) command() (services.CategoryCommand, string) {
	if err := validator.ValidateName(req.Name); err != nil {
		return services.CategoryCommand{}, err.Error()
	}
	if req.Type != models.CategoryExpense && req.Type != models.CategoryIncome {
		return services.CategoryCommand{}, "type must be expense or income"
	}
	return services.CategoryCommand{
		Name:     req.Name,
		Type:     req.Type,
		Color:    req.Color,
		Icon:     req.Icon,
		IsGlobal: req.IsGlobal,
	}, ""
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	cmd, msg := req.command()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	category, err := h.categories.Create(r.Context(), userID, cmd)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	categoryType := models.CategoryType(r.URL.Query().Get("type"))
	if categoryType != "" && categoryType != models.CategoryExpense && categoryType != models.CategoryIncome {
		respondError(w, http.StatusBadRequest, "type must be expense or income")
		return
	}
	limit, offset := pagination(r)
	categories, err := h.categories.ListForUser(r.Context(), userID, categoryType, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) ListGlobalCategories(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	categories, err := h.categories.ListGlobal(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) ListPersonalCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := pagination(r)
	categories, err := h.categories.ListPersonal(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	category, err := h.categories.Get(r.Context(), chi.URLParam(r, "categoryID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	cmd, msg := req.command()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	category, err := h.categories.Update(r.Context(), chi.URLParam(r, "categoryID"), userID, cmd)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "categoryID"), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "category deleted"})
}

func (h *Handler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stats, err := h.categories.UsageStats(r.Context(), chi.URLParam(r, "categoryID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
