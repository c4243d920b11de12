package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/ai"
	"github.com/ukydev/fm-control/internal/auth"
	"github.com/ukydev/fm-control/internal/config"
	"github.com/ukydev/fm-control/internal/control"
	"github.com/ukydev/fm-control/internal/db"
	"github.com/ukydev/fm-control/internal/events"
	"github.com/ukydev/fm-control/internal/handlers"
	"github.com/ukydev/fm-control/internal/middleware"
	"github.com/ukydev/fm-control/internal/sheet"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.ConfigureLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	roster, err := config.LoadRoster(cfg.RosterFile)
	if err != nil {
		log.Fatalf("Failed to load roster: %v", err)
	}

	ctx := context.Background()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	stores := db.NewStores(client, cfg.MongoDB)

	publisher, err := events.NewPublisher(cfg.MQTT)
	if err != nil {
		log.WithError(err).Warn("Event feed unavailable, continuing without it")
		publisher = events.NopPublisher{}
	}

	controller := control.New(
		sheet.NewClient(cfg.SheetURL, cfg.SheetTimeout),
		ai.NewSuggester(ctx, cfg.GeminiAPIKey, cfg.GeminiModel),
		publisher,
		control.Stores{
			Technicians: stores.Technicians,
			Inventory:   stores.Inventory,
			Checklists:  stores.Checklists,
		},
		roster,
	)
	if err := controller.Load(ctx); err != nil {
		log.WithError(err).Warn("Failed to load local state, starting from the roster")
	}
	if report, err := controller.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial sync failed, serving local state")
	} else {
		log.WithFields(log.Fields{
			"assets":  report.Assets,
			"tickets": report.Tickets,
		}).Info("Initial sync complete")
	}

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}
	authHandler := handlers.NewAuthHandler(authService, stores.Staff)
	if err := authHandler.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	router := handlers.NewRouter(
		authHandler,
		handlers.NewFMHandler(controller),
		middleware.NewAuthMiddleware(authService),
		middleware.NewRateLimitMiddleware(cfg.RateLimit, time.Duration(cfg.RateLimitWindow)*time.Second, cfg.TrustedProxies...),
	)
	srv := newServer(cfg.Port, router)

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server forced shutdown")
	}
	publisher.Close()
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to disconnect from MongoDB")
	}
	log.Info("Server stopped")
}

// newServer builds the HTTP server. The write timeout leaves room for a
// sync followed by a write against a slow remote store.
func newServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
