package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port   string
	server *http.Server
}

// NewServer creates a new REST API server around an already-wired handler.
func NewServer(port string, handler *Handler) *Server {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Odds
	api.HandleFunc("/odds", handler.GetOdds).Methods("GET")
	api.HandleFunc("/odds/clear", handler.ClearOdds).Methods("GET", "POST")

	// Shot charts
	api.HandleFunc("/shot-chart-enhanced", handler.GetShotChart).Methods("GET")

	// Teams and defense
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/defense", handler.GetTeamDefense).Methods("GET")
	api.HandleFunc("/defense/rankings/refresh", handler.RefreshDefenseRankings).Methods("POST")

	return &Server{
		port: port,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
