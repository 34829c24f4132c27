package handlers

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/middleware"
	"fintrack/internal/money"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/go-chi/chi/v5"
)

type recordRequest struct {
	Description   string  `json:"description"`
	Amount        string  `json:"amount"`
	Date          string  `json:"date"`
	PaymentMethod *string `json:"payment_method"`
	Note          string  `json:"note"`
	Recurring     bool    `json:"recurring"`
	CategoryID    *string `json:"category_id"`
	GroupID       *string `json:"group_id"`
}

func (req recordRequest) command() (services.RecordCommand, string) {
	if err := validator.ValidateName(req.Description); err != nil {
		return services.RecordCommand{}, "description is required"
	}
	amount, err := money.ParseMinor(req.Amount)
	if err != nil {
		return services.RecordCommand{}, err.Error()
	}
	date, err := parseDateOrNow(req.Date)
	if err != nil {
		return services.RecordCommand{}, err.Error()
	}
	return services.RecordCommand{
		Description:   req.Description,
		Amount:        amount,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		Recurring:     req.Recurring,
		CategoryID:    req.CategoryID,
		GroupID:       req.GroupID,
	}, ""
}

// mountRecordRoutes wires the shared expense/income surface; the two
// kinds differ only in the backing service.
func (h *Handler) mountRecordRoutes(r chi.Router, svc RecordService) {
	r.Post("/", h.createRecord(svc))
	r.Get("/", h.listRecords(svc))
	r.Get("/range", h.listRecordsByDateRange(svc))
	r.Get("/total", h.recordTotal(svc))
	r.Get("/category/{categoryID}", h.listRecordsByCategory(svc))
	r.Get("/{recordID}", h.getRecord(svc))
	r.Put("/{recordID}", h.updateRecord(svc))
	r.Delete("/{recordID}", h.deleteRecord(svc))
}

func (h *Handler) createRecord(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		cmd, msg := req.command()
		if msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		record, err := svc.Create(r.Context(), userID, cmd)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, record)
	}
}

func (h *Handler) listRecords(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		personalOnly := r.URL.Query().Get("personal") == "true"
		limit, offset := pagination(r)
		records, err := svc.ListForUser(r.Context(), userID, personalOnly, limit, offset)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, records)
	}
}

func (h *Handler) listRecordsByDateRange(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		from, err := parseDate(r.URL.Query().Get("from"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		to, err := parseDate(r.URL.Query().Get("to"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		if to.Before(from) {
			respondError(w, http.StatusBadRequest, "to must not precede from")
			return
		}
		personalOnly := r.URL.Query().Get("personal") == "true"
		records, err := svc.ListByDateRange(r.Context(), userID, from, to, personalOnly)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, records)
	}
}

func (h *Handler) recordTotal(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		personalOnly := r.URL.Query().Get("personal") == "true"
		total, err := svc.TotalForUser(r.Context(), userID, personalOnly)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"total":     total,
			"formatted": money.FormatMinor(total),
		})
	}
}

func (h *Handler) listRecordsByCategory(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		limit, offset := pagination(r)
		records, err := svc.ListByCategory(r.Context(), userID, chi.URLParam(r, "categoryID"), limit, offset)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, records)
	}
}

func (h *Handler) getRecord(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		record, err := svc.Get(r.Context(), chi.URLParam(r, "recordID"), userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, record)
	}
}

func (h *Handler) updateRecord(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		cmd, msg := req.command()
		if msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		record, err := svc.Update(r.Context(), chi.URLParam(r, "recordID"), userID, cmd)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, record)
	}
}

func (h *Handler) deleteRecord(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "recordID"), userID); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "record deleted"})
	}
}
