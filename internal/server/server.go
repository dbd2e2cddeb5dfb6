// Package server exposes the HTTP surface: manual and external triggers,
// the progress stream, settings, scheduler control, search-term and
// seniority-filter CRUD, and scheduled-run notifications.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"venturejobs/ingest-service/internal/ingest"
	"venturejobs/ingest-service/internal/model"
	"venturejobs/ingest-service/internal/progress"
)

// restartDebounce absorbs rapid successive settings toggles before the
// scheduler restart fires.
const restartDebounce = 500 * time.Millisecond

// Store is what the HTTP surface needs from persistence.
type Store interface {
	ListPostings(ctx context.Context) ([]model.Posting, error)
	ListSearchTerms(ctx context.Context) ([]model.SearchTerm, error)
	AddSearchTerm(ctx context.Context, term string) (model.SearchTerm, error)
	DeleteSearchTerm(ctx context.Context, id int64) error
	SeniorityFilters(ctx context.Context) ([]string, error)
	SetSeniorityFilters(ctx context.Context, values []string) error
	SetSearchTerms(ctx context.Context, terms []string) error
	Settings(ctx context.Context) (model.Settings, error)
	SetScheduled(ctx context.Context, scheduled bool) error
	AddNotification(ctx context.Context, timestamp time.Time, inserted, skipped int) error
	TakeUnreadNotifications(ctx context.Context) ([]model.Notification, error)
}

// Runner is the trigger surface of the orchestrator.
type Runner interface {
	Run(ctx context.Context, firmNames []string) (ingest.Result, error)
	RunAutomated(ctx context.Context) ingest.Result
}

// Schedule is the control surface of the scheduler.
type Schedule interface {
	Start()
	Stop()
	Restart(ctx context.Context)
	IsRunning() bool
}

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	mux         *http.ServeMux
	store       Store
	runner      Runner
	schedule    Schedule
	broadcaster *progress.Broadcaster
	cronSecret  string

	restartMu    sync.Mutex
	restartTimer *time.Timer
}

// New constructs the Server and registers its routes.
func New(store Store, runner Runner, schedule Schedule, broadcaster *progress.Broadcaster, cronSecret string) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		store:       store,
		runner:      runner,
		schedule:    schedule,
		broadcaster: broadcaster,
		cronSecret:  cronSecret,
	}
	s.routes()
	return s
}

// Handler returns the root handler for tests and for ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[server] Shutdown: %v", err)
		}
	}()
	err := httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// debounceRestart collapses bursts of settings changes into one scheduler
// restart after a quiet period.
func (s *Server) debounceRestart() {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()
	if s.restartTimer != nil {
		s.restartTimer.Stop()
	}
	s.restartTimer = time.AfterFunc(restartDebounce, func() {
		log.Println("[server] Debounced scheduler restart triggered")
		s.schedule.Restart(context.Background())
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] Encoding response failed: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
