package handlers

import (
	"net/http"

	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/middleware"
	"fintrack/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner    db.TxRunner
	cfg         config.Config
	users       UserStore
	audit       AuditStore
	groups      GroupService
	invitations InvitationService
	categories  CategoryService
	expenses    RecordService
	incomes     RecordService
	goals       GoalService
	hub         *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, audit AuditStore, groups GroupService, invitations InvitationService, categories CategoryService, expenses, incomes RecordService, goals GoalService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:    txRunner,
		cfg:         cfg,
		users:       users,
		audit:       audit,
		groups:      groups,
		invitations: invitations,
		categories:  categories,
		expenses:    expenses,
		incomes:     incomes,
		goals:       goals,
		hub:         hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authed := middleware.Auth(h.cfg.JWTSecret)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authed).Get("/me", h.Me)
		r.With(authed).Put("/me", h.UpdateProfile)
		r.With(authed).Post("/me/password", h.ChangePassword)
		r.With(authed).Delete("/me", h.DeleteAccount)
	})

	router.Route("/groups", func(r chi.Router) {
		r.Use(authed)
		r.Post("/", h.CreateGroup)
		r.Get("/", h.ListGroups)
		r.Get("/created", h.ListCreatedGroups)
		r.Get("/{groupID}", h.GetGroup)
		r.Put("/{groupID}", h.UpdateGroup)
		r.Delete("/{groupID}", h.DeleteGroup)
		r.Get("/{groupID}/members", h.ListMembers)
		r.Delete("/{groupID}/members/{userID}", h.RemoveMember)
		r.Put("/{groupID}/members/{userID}/role", h.ChangeMemberRole)
		r.Post("/{groupID}/invitations", h.CreateInvitation)
		r.Get("/{groupID}/invitations", h.ListInvitations)
		r.Delete("/{groupID}/invitations/{invitationID}", h.RevokeInvitation)
		r.Get("/{groupID}/expenses", h.ListGroupExpenses)
		r.Get("/{groupID}/incomes", h.ListGroupIncomes)
		r.Get("/{groupID}/expenses/total", h.GroupExpenseTotal)
		r.Get("/{groupID}/incomes/total", h.GroupIncomeTotal)
		r.Get("/{groupID}/goals", h.ListGroupGoals)
	})

	router.Route("/invitations", func(r chi.Router) {
		r.Use(authed)
		r.Get("/{token}", h.ResolveInvitation)
		r.Post("/{token}/accept", h.AcceptInvitation)
		r.Post("/{token}/reject", h.RejectInvitation)
	})

	router.Route("/categories", func(r chi.Router) {
		r.Use(authed)
		r.Post("/", h.CreateCategory)
		r.Get("/", h.ListCategories)
		r.Get("/global", h.ListGlobalCategories)
		r.Get("/personal", h.ListPersonalCategories)
		r.Get("/{categoryID}", h.GetCategory)
		r.Put("/{categoryID}", h.UpdateCategory)
		r.Delete("/{categoryID}", h.DeleteCategory)
		r.Get("/{categoryID}/stats", h.CategoryStats)
	})

	router.Route("/expenses", func(r chi.Router) {
		r.Use(authed)
		h.mountRecordRoutes(r, h.expenses)
	})
	router.Route("/incomes", func(r chi.Router) {
		r.Use(authed)
		h.mountRecordRoutes(r, h.incomes)
	})

	router.Route("/goals", func(r chi.Router) {
		r.Use(authed)
		r.Post("/", h.CreateGoal)
		r.Get("/", h.ListGoals)
		r.Get("/status/{status}", h.ListGoalsByStatus)
		r.Get("/{goalID}", h.GetGoal)
		r.Put("/{goalID}", h.UpdateGoal)
		r.Delete("/{goalID}", h.DeleteGoal)
		r.Get("/{goalID}/progress", h.GoalProgress)
		r.Post("/{goalID}/contributions", h.AddContribution)
		r.Get("/{goalID}/contributions", h.ListContributions)
		r.Get("/{goalID}/contributions/mine", h.ListOwnContributionsForGoal)
		r.Get("/{goalID}/contributions/total", h.ContributionTotal)
	})

	router.Route("/contributions", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.ListOwnContributions)
		r.Put("/{contributionID}", h.UpdateContribution)
		r.Delete("/{contributionID}", h.DeleteContribution)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authed)
		r.Use(middleware.RequireAdmin(h.users))
		r.Get("/audit", h.ListAuditLogs)
		r.Post("/promote", h.PromoteAdmin)
	})

	router.Get("/ws/goals", h.WSGoals)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
