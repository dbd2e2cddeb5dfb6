package server

import "net/http"

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	s.mux.HandleFunc("POST /api/run", s.handleRun)

	s.mux.HandleFunc("GET /api/cron", s.handleCronHealth)
	s.mux.HandleFunc("POST /api/cron", s.handleCron)

	s.mux.HandleFunc("GET /api/progress", s.handleProgress)
	s.mux.HandleFunc("GET /api/progress/stream", s.handleProgressStream)

	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("POST /api/settings", s.handleSetSettings)

	s.mux.HandleFunc("GET /api/scheduler", s.handleSchedulerStatus)
	s.mux.HandleFunc("POST /api/scheduler", s.handleSchedulerAction)

	s.mux.HandleFunc("GET /api/search-terms", s.handleListSearchTerms)
	s.mux.HandleFunc("POST /api/search-terms", s.handleAddSearchTerm)
	s.mux.HandleFunc("DELETE /api/search-terms", s.handleDeleteSearchTerm)

	s.mux.HandleFunc("GET /api/seniority-filters", s.handleGetSeniorityFilters)
	s.mux.HandleFunc("POST /api/seniority-filters", s.handleSetSeniorityFilters)

	s.mux.HandleFunc("GET /api/notifications", s.handleTakeNotifications)
	s.mux.HandleFunc("POST /api/notifications", s.handleAddNotification)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "ingest-service",
	})
}
