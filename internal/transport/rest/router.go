package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"interviewprep/internal/config"
	"interviewprep/internal/scheduler"
	"interviewprep/internal/service"
	"interviewprep/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	SessionService    *service.QuizSessionService
	MomentumService   *service.MomentumService
	MasteryService    *service.MasteryService
	RepetitionService *service.SpacedRepetitionService
	ProgressService   *service.ProgressService
	BankService       *service.BankService
	Scheduler         *scheduler.Scheduler
	CORS              config.CORSConfig
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.MomentumService)
	topicHandler := handler.NewTopicHandler(c.BankService)
	progressHandler := handler.NewProgressHandler(c.MasteryService, c.RepetitionService, c.ProgressService, c.BankService)
	adminHandler := handler.NewAdminHandler(c.BankService, c.Scheduler)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Session routes
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/answers", sessionHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/end", sessionHandler.End).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/momentum", sessionHandler.Momentum).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/next", sessionHandler.Next).Methods("GET", "OPTIONS")

	// Topic and question bank routes
	v1.HandleFunc("/topics", topicHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/topics/{topic}/questions", topicHandler.Questions).Methods("GET", "OPTIONS")

	// Progress and review routes
	v1.HandleFunc("/users/{userId}/progress", progressHandler.Topics).Methods("GET", "OPTIONS")
	v1.HandleFunc("/users/{userId}/mastery/{topic}", progressHandler.Mastery).Methods("GET", "OPTIONS")
	v1.HandleFunc("/users/{userId}/reviews/due", progressHandler.DueReviews).Methods("GET", "OPTIONS")

	// Admin routes
	v1.HandleFunc("/admin/questions/regenerate", adminHandler.Regenerate).Methods("POST", "OPTIONS")
	v1.HandleFunc("/admin/cycles/reset", adminHandler.ResetCycles).Methods("POST", "OPTIONS")

	return r
}

// corsMiddleware applies the configured cross-origin headers and
// short-circuits preflight requests. A zero-value config allows everything.
func corsMiddleware(cors config.CORSConfig) mux.MiddlewareFunc {
	if cors.AllowedOrigins == "" {
		cors.AllowedOrigins = "*"
	}
	if cors.AllowedMethods == "" {
		cors.AllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	if cors.AllowedHeaders == "" {
		cors.AllowedHeaders = "Content-Type, Authorization"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cors.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cors.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cors.AllowedHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
