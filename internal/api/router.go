package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tutorchat-backend/internal/config"
	"tutorchat-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	SessionHandler *handlers.SessionHandlers
	Config         *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID) // Inject request ID into context
	r.Use(middleware.RealIP)    // Use X-Forwarded-For or X-Real-IP
	r.Use(middleware.Logger)    // Log requests (consider a structured logger)
	r.Use(middleware.Recoverer) // Recover from panics, return 500
	// Turns can legitimately stream for a while; keep the timeout generous.
	r.Use(middleware.Timeout(120 * time.Second))

	// --- CORS Configuration ---
	// Adjust AllowedOrigins for your frontend deployment(s)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.vercel.app"}, // Add your frontend dev/prod URLs
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// --- Health Check ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// --- Session Routes ---
	r.Route("/v1/sessions", func(r chi.Router) {
		if deps.SessionHandler == nil {
			panic("SessionHandler dependency is nil in router setup")
		}
		r.Post("/", deps.SessionHandler.HandleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/messages", deps.SessionHandler.HandleGetTranscript)
			r.Post("/messages", deps.SessionHandler.HandleSendMessage)
			r.Post("/attachments", deps.SessionHandler.HandleStageAttachment)
			r.Post("/reset", deps.SessionHandler.HandleReset)
			r.Post("/retry", deps.SessionHandler.HandleRetryConnection)
		})
	})

	return r
}
