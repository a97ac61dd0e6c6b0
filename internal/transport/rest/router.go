package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"swipeinterview/internal/proxy"
	"swipeinterview/internal/service"
	"swipeinterview/internal/transport/rest/handler"
	"swipeinterview/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	InterviewService *service.InterviewService
	Proxy            *proxy.Handler // optional; mounts /api/score and /api/generate
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.InterviewService)
	dashboardHandler := handler.NewDashboardHandler(c.InterviewService)
	wsHandler := ws.NewHandler(c.WSHub, c.InterviewService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Candidate routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/activate", sessionHandler.Activate).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/draft", sessionHandler.SaveDraft).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/answers", sessionHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/close", sessionHandler.Close).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/resume", sessionHandler.Resume).Methods("GET", "OPTIONS")

	// Interviewer routes
	v1.HandleFunc("/dashboard", dashboardHandler.Dashboard).Methods("GET", "OPTIONS")
	v1.HandleFunc("/leaderboard", dashboardHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket routes
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")
	v1.HandleFunc("/ws/dashboard", wsHandler.DashboardWS).Methods("GET")

	// Scoring proxy (answers every method itself; non-POST gets 405)
	if c.Proxy != nil {
		r.PathPrefix("/api/").Handler(c.Proxy)
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
