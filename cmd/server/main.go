package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/handlers"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	groups := store.NewGroupStore(database)
	invitations := store.NewInvitationStore(database)
	categories := store.NewCategoryStore(database)
	expenses := store.NewExpenseStore(database)
	incomes := store.NewIncomeStore(database)
	goals := store.NewGoalStore(database)
	contributions := store.NewContributionStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	access := services.NewAccess(groups, users)
	groupService := services.NewGroupService(txRunner, groups, audit)
	invitationService := services.NewInvitationService(txRunner, invitations, groups, audit, cfg.FrontendURL)
	categoryService := services.NewCategoryService(txRunner, categories, access)
	expenseService := services.NewRecordService(txRunner, expenses, access, models.RecordExpense)
	incomeService := services.NewRecordService(txRunner, incomes, access, models.RecordIncome)
	goalService := services.NewGoalService(txRunner, goals, contributions, groups, access, hub)

	handler := handlers.New(txRunner, cfg, users, audit, groupService, invitationService, categoryService, expenseService, incomeService, goalService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("fintrack API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
