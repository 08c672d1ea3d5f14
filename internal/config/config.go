package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Response modes for the assistant integration.
const (
	ModeStream  = "stream"
	ModeWebhook = "webhook"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort       string
	AssistantURL   string
	AssistantMode  string // "stream" or "webhook"
	WebhookHistory string // "full" or "latest"; webhook mode only
	ThreadIDHeader string
	WelcomeMessage string
	ThreadIDFile   string // optional; enables the persisted continuity provider
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load() // Loads .env from the current directory or parent dirs
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	assistantURL := getEnv("ASSISTANT_URL", "") // No default, should fail if not set
	if assistantURL == "" {
		log.Fatal("ASSISTANT_URL environment variable is not set.")
	}

	mode := getEnv("ASSISTANT_MODE", ModeStream)
	if mode != ModeStream && mode != ModeWebhook {
		log.Fatalf("FATAL: ASSISTANT_MODE must be %q or %q, got %q", ModeStream, ModeWebhook, mode)
	}

	history := getEnv("WEBHOOK_HISTORY", "full")
	if history != "full" && history != "latest" {
		log.Fatalf("FATAL: WEBHOOK_HISTORY must be \"full\" or \"latest\", got %q", history)
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		AssistantURL:   assistantURL,
		AssistantMode:  mode,
		WebhookHistory: history,
		ThreadIDHeader: getEnv("THREAD_ID_HEADER", "x-openai-thread-id"),
		WelcomeMessage: getEnv("WELCOME_MESSAGE", "Hi! I'm your tutor assistant. Ask me anything, or share a document to go over together."),
		ThreadIDFile:   getEnv("THREAD_ID_FILE", ""),
	}

	log.Printf("Loaded config: Port=%s, Mode=%s, AssistantURL=***, History=%s", cfg.HTTPPort, cfg.AssistantMode, cfg.WebhookHistory)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}
