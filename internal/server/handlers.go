package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"venturejobs/ingest-service/internal/model"
	"venturejobs/ingest-service/internal/store"
)

// ── Jobs / triggers ────────────────────────────────────────────────────

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	postings, err := s.store.ListPostings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load jobs")
		log.Printf("[server] List jobs: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": postings})
}

// handleRun is the manual "run now" trigger. A failure is surfaced to the
// initiating caller alongside whatever counts were committed before it.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Firms []string `json:"firms"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := s.runner.Run(r.Context(), body.Firms)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    err.Error(),
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
		})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleCron is the external automated trigger (GitHub Actions,
// cron-job.org and friends), guarded by a bearer secret.
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if s.cronSecret == "" || r.Header.Get("Authorization") != "Bearer "+s.cronSecret {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	settings, err := s.store.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		log.Printf("[server] Cron settings read: %v", err)
		return
	}
	if !settings.Scheduled {
		respondJSON(w, http.StatusOK, map[string]any{
			"message":   "scheduled search is disabled",
			"scheduled": false,
		})
		return
	}

	result := s.runner.RunAutomated(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"inserted":  result.Inserted,
		"skipped":   result.Skipped,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCronHealth(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"scheduled": settings.Scheduled,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ── Progress ───────────────────────────────────────────────────────────

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.broadcaster.Snapshot())
}

// handleProgressStream serves progress as server-sent events: one frame
// immediately on connect carrying the current snapshot, then one per
// state change until the client disconnects.
func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snapshots, cancel := s.broadcaster.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				log.Printf("[server] Encoding progress frame failed: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ── Settings ───────────────────────────────────────────────────────────

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		log.Printf("[server] Get settings: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// handleSetSettings applies a partial settings update. A change to the
// scheduled flag triggers a debounced scheduler restart so a bouncing UI
// toggle collapses into one restart.
func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Scheduled       *bool     `json:"scheduled"`
		SearchTerms     *[]string `json:"searchTerms"`
		SeniorityLevels *[]string `json:"seniorityLevels"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	current, err := s.store.Settings(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		log.Printf("[server] Set settings: %v", err)
		return
	}

	if body.SearchTerms != nil {
		for _, term := range *body.SearchTerms {
			if len(term) < 1 || len(term) > 100 {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid search term %q", term))
				return
			}
		}
		if err := s.store.SetSearchTerms(ctx, *body.SearchTerms); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to update search terms")
			log.Printf("[server] Set search terms: %v", err)
			return
		}
	}
	if body.SeniorityLevels != nil {
		if err := s.store.SetSeniorityFilters(ctx, *body.SeniorityLevels); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to update seniority levels")
			log.Printf("[server] Set seniority levels: %v", err)
			return
		}
	}
	if body.Scheduled != nil {
		if err := s.store.SetScheduled(ctx, *body.Scheduled); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to update settings")
			log.Printf("[server] Set scheduled: %v", err)
			return
		}
		if *body.Scheduled != current.Scheduled {
			log.Printf("[server] Scheduled setting changed %t -> %t", current.Scheduled, *body.Scheduled)
			s.debounceRestart()
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ── Scheduler control ──────────────────────────────────────────────────

// handleSchedulerStatus reports scheduler state and auto-recovers: a
// process restart loses the in-memory running state, so if the persisted
// flag says scheduled but the timer is down, it is started here.
func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		log.Printf("[server] Scheduler status: %v", err)
		return
	}

	isRunning := s.schedule.IsRunning()
	if settings.Scheduled && !isRunning {
		log.Println("[server] Auto-recovering scheduler — scheduled is enabled but timer is down")
		s.schedule.Start()
		isRunning = s.schedule.IsRunning()
	}

	var nextRun string
	switch {
	case settings.Scheduled && isRunning:
		nextRun = "At the start of the next hour"
	case settings.Scheduled:
		nextRun = "Scheduled but not running"
	default:
		nextRun = "Not scheduled"
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"isRunning": isRunning,
		"scheduled": settings.Scheduled,
		"nextRun":   nextRun,
	})
}

func (s *Server) handleSchedulerAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch body.Action {
	case "start":
		s.schedule.Start()
	case "stop":
		s.schedule.Stop()
	case "restart":
		s.schedule.Restart(context.Background())
	default:
		respondError(w, http.StatusBadRequest, "invalid action")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "action": body.Action})
}

// ── Search terms ───────────────────────────────────────────────────────

func (s *Server) handleListSearchTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := s.store.ListSearchTerms(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load search terms")
		log.Printf("[server] List search terms: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"terms": terms})
}

func (s *Server) handleAddSearchTerm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Term string `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Term) < 1 || len(body.Term) > 100 {
		respondError(w, http.StatusBadRequest, "term must be 1-100 characters")
		return
	}

	term, err := s.store.AddSearchTerm(r.Context(), body.Term)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTerm) {
			respondError(w, http.StatusConflict, "term already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to add term")
		log.Printf("[server] Add search term: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, term)
}

func (s *Server) handleDeleteSearchTerm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteSearchTerm(r.Context(), body.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete term")
		log.Printf("[server] Delete search term: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ── Seniority filters ──────────────────────────────────────────────────

func (s *Server) handleGetSeniorityFilters(w http.ResponseWriter, r *http.Request) {
	values, err := s.store.SeniorityFilters(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load seniority filters")
		log.Printf("[server] Get seniority filters: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"values": values})
}

func (s *Server) handleSetSeniorityFilters(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Values []string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Values == nil {
		respondError(w, http.StatusBadRequest, "invalid values")
		return
	}
	if err := s.store.SetSeniorityFilters(r.Context(), body.Values); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update seniority filters")
		log.Printf("[server] Set seniority filters: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ── Notifications ──────────────────────────────────────────────────────

func (s *Server) handleAddNotification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Timestamp *time.Time `json:"timestamp"`
		Inserted  int        `json:"inserted"`
		Skipped   int        `json:"skipped"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ts := time.Now().UTC()
	if body.Timestamp != nil {
		ts = body.Timestamp.UTC()
	}

	if err := s.store.AddNotification(r.Context(), ts, body.Inserted, body.Skipped); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store notification")
		log.Printf("[server] Add notification: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleTakeNotifications returns all unread notifications and marks them
// read in the same call, so each scheduled-run outcome is surfaced once.
func (s *Server) handleTakeNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.store.TakeUnreadNotifications(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load notifications")
		log.Printf("[server] Take notifications: %v", err)
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
