package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/chat2geo/chat2geo/internal/adapter/completion"
	"github.com/chat2geo/chat2geo/internal/auth"
	"github.com/chat2geo/chat2geo/internal/config"
	"github.com/chat2geo/chat2geo/internal/domain"
	"github.com/chat2geo/chat2geo/internal/service"
	"github.com/chat2geo/chat2geo/internal/store"
	v1 "github.com/chat2geo/chat2geo/internal/transport/http/v1"
	"github.com/chat2geo/chat2geo/policy"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	log.Printf("Starting chat2geo server...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Model: %s", cfg.LLMModel)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	if cfg.DevToken != "" {
		if err := seedDevUser(db, cfg.DevToken); err != nil {
			log.Printf("WARN: failed to seed dev user: %v", err)
		}
	}

	// Initialize completion provider (offline when no key is configured)
	provider := completion.NewProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.LLMModel, cfg.LLMTimeout)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(db, provider, policyEngine)

	// Initialize handler
	h := v1.NewHandler(svc, auth.NewStoreResolver(db))

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Server stopped")
}

// seedDevUser provisions a dev account bound to the configured token so the
// service is usable without external user provisioning.
func seedDevUser(db store.Store, token string) error {
	ctx := context.Background()
	if user, err := db.GetUserByToken(ctx, token); err != nil || user != nil {
		return err
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     "dev@localhost",
		Name:      "Dev User",
		Role:      domain.UserRoleUser,
		CreatedAt: time.Now(),
	}
	if err := db.CreateUser(ctx, user); err != nil {
		return err
	}
	if err := db.CreateToken(ctx, token, user.ID); err != nil {
		return err
	}
	log.Printf("seeded dev user %s", user.ID)
	return nil
}
