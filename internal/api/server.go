package api

import (
	"net/http"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/brandradar/visibility-dashboard/internal/chat"
	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/brandradar/visibility-dashboard/internal/dashboard"
	"github.com/gorilla/mux"
)

// Server exposes the dashboard over HTTP
type Server struct {
	config    *config.Config
	backend   backend.Backend
	dashboard *dashboard.Service
	chat      *chat.Service
	now       func() time.Time
}

// NewServer wires the handlers to their services
func NewServer(cfg *config.Config, b backend.Backend, dash *dashboard.Service, chatService *chat.Service) *Server {
	return &Server{
		config:    cfg,
		backend:   b,
		dashboard: dash,
		chat:      chatService,
		now:       time.Now,
	}
}

// Router builds the route table. /health is open; everything under /api
// goes through the auth middleware, which verifies tokens when JWT_SECRET is set.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(s.config.RequireAuth, newTokenVerifier(s.config.JWTSecret)))

	// Directory
	api.HandleFunc("/brands", s.listBrands).Methods("GET")
	api.HandleFunc("/brands/{id}/competitors", s.listCompetitors).Methods("GET")
	api.HandleFunc("/platforms", s.listPlatforms).Methods("GET")

	// Visibility panels
	api.HandleFunc("/visibility/daily", s.dailyVisibility).Methods("GET")
	api.HandleFunc("/visibility/pie", s.visibilityPie).Methods("GET")
	api.HandleFunc("/ranking", s.ranking).Methods("GET")
	api.HandleFunc("/ranking.csv", s.rankingCSV).Methods("GET")

	// Prompts
	api.HandleFunc("/prompts", s.listPrompts).Methods("GET")
	api.HandleFunc("/prompts", s.createPrompt).Methods("POST")
	api.HandleFunc("/prompts/metrics", s.promptMetrics).Methods("GET")
	api.HandleFunc("/prompts/{id}", s.getPrompt).Methods("GET")
	api.HandleFunc("/prompts/{id}/sources", s.promptSources).Methods("GET")
	api.HandleFunc("/prompts/{id}/domains", s.promptDomains).Methods("GET")

	// Mentions and trips
	api.HandleFunc("/mentions/recent", s.recentMentions).Methods("GET")
	api.HandleFunc("/mentions/export.csv", s.exportMentions).Methods("GET")
	api.HandleFunc("/chats/{runId}", s.getTrip).Methods("GET")

	// Tags
	api.HandleFunc("/tags", s.listTags).Methods("GET")
	api.HandleFunc("/tags", s.createTag).Methods("POST")
	api.HandleFunc("/tags/{id}", s.updateTag).Methods("PUT")
	api.HandleFunc("/tags/{id}", s.deleteTag).Methods("DELETE")

	// Workspace and billing
	api.HandleFunc("/workspace/{id}/models", s.listWorkspaceModels).Methods("GET")
	api.HandleFunc("/workspace/{id}/models/{modelId}", s.setModelEnabled).Methods("PUT")
	api.HandleFunc("/billing/usage", s.usage).Methods("GET")

	// Recommendations
	api.HandleFunc("/recommendations", s.listRecommendations).Methods("GET")
	api.HandleFunc("/recommendations/{id}", s.updateRecommendation).Methods("PATCH")

	// Live dashboard and reports
	api.HandleFunc("/selection", s.getSelection).Methods("GET")
	api.HandleFunc("/selection", s.putSelection).Methods("PUT")
	api.HandleFunc("/selection", s.patchSelection).Methods("PATCH")
	api.HandleFunc("/dashboard", s.dashboardView).Methods("GET")
	api.HandleFunc("/reports", s.listReports).Methods("GET")
	api.HandleFunc("/reports/trigger", s.triggerReport).Methods("POST")
	api.HandleFunc("/reports/{file}", s.getReport).Methods("GET")
	api.HandleFunc("/metrics", s.metrics).Methods("GET")

	// Competitor chat
	api.HandleFunc("/competitor-chat", s.competitorChat).Methods("POST")
	api.HandleFunc("/chat-export", s.chatExport).Methods("GET")

	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}
