package server

import (
	"log/slog"
	"net/http"

	"autosales-dashboard/internal/handlers"
	"autosales-dashboard/internal/services"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	pageHandlers *handlers.PageHandlers
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		pageHandlers: handlers.NewPageHandlers(dashboard, logger),
		apiHandlers:  handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers:  handlers.NewSSEHandlers(dashboard, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	s.mux.HandleFunc("GET /api/summaries", s.apiHandlers.HandleSummaries)
	s.mux.HandleFunc("GET /api/controls", s.apiHandlers.HandleControls)

	// Datastar control-change endpoint
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
