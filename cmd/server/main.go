package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorchat-backend/internal/api"
	"tutorchat-backend/internal/assistant"
	"tutorchat-backend/internal/config"
	"tutorchat-backend/internal/handlers"
	"tutorchat-backend/internal/session"
	"tutorchat-backend/internal/thread"
)

func main() {
	log.Println("Starting TutorChat Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Build per-session component factories. Each session gets fully
	// independent instances; nothing conversational is shared.
	newClient := func() assistant.Client {
		if cfg.AssistantMode == config.ModeWebhook {
			return assistant.NewWebhookClient(cfg.AssistantURL, assistant.HistoryShape(cfg.WebhookHistory))
		}
		return assistant.NewStreamClient(cfg.AssistantURL, cfg.ThreadIDHeader)
	}
	newThreads := func() thread.Provider {
		if cfg.ThreadIDFile != "" {
			// Persisted continuity for single-session deployments: the
			// thread id survives a restart of both service and widget.
			return thread.NewFileProvider(cfg.ThreadIDFile)
		}
		return thread.NewMemoryProvider()
	}

	manager := session.NewManager(session.Factories{
		Welcome:    cfg.WelcomeMessage,
		NewClient:  newClient,
		NewThreads: newThreads,
	})
	log.Printf("Session manager initialized (mode=%s).", cfg.AssistantMode)

	// 3. Initialize Handlers
	sessionHandler := handlers.NewSessionHandlers(manager)
	log.Println("SessionHandlers initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		SessionHandler: sessionHandler,
		Config:         cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks.
		// WriteTimeout stays generous because a turn may stream for a while.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	// Create a deadline context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
