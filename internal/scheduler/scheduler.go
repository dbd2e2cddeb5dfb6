// Package scheduler wires up the cron job that triggers an automated
// ingestion run at the top of every hour (UTC) while scheduled search is
// enabled.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"venturejobs/ingest-service/internal/model"
)

// hourlySpec fires at minute zero of every hour.
const hourlySpec = "0 * * * *"

// defaultSettle is the pause between stop and conditional start during a
// restart, giving the old cron goroutine time to wind down.
const defaultSettle = 100 * time.Millisecond

// SettingsReader supplies the current job-search settings. Consulted on
// every tick and during restart, never cached.
type SettingsReader interface {
	Settings(ctx context.Context) (model.Settings, error)
}

// ShouldRun reports whether a firing should trigger a run. Kept pure so
// the decision is testable independent of the timer mechanism.
func ShouldRun(settings model.Settings) bool {
	return settings.Scheduled
}

// Scheduler owns the recurring trigger. States are Stopped (cron == nil)
// and Running. Start and Stop are idempotent; Restart collapses
// concurrent requests into one stop-then-conditional-start sequence. The
// running state is memory-only: a process restart always comes back
// Stopped and is reconciled by Initialize or the status endpoint.
type Scheduler struct {
	mu         sync.Mutex
	cron       *cron.Cron
	restarting atomic.Bool

	settings SettingsReader
	run      func(ctx context.Context)
	settle   time.Duration
}

// New constructs a stopped Scheduler. run is the automated-trigger entry
// point invoked on each eligible firing.
func New(settings SettingsReader, run func(ctx context.Context)) *Scheduler {
	return &Scheduler{settings: settings, run: run, settle: defaultSettle}
}

// Initialize reads settings once and starts the scheduler iff scheduled
// search is enabled. Called at process start.
func (s *Scheduler) Initialize(ctx context.Context) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		log.Printf("[scheduler] Reading settings at init failed: %v — starting stopped", err)
		return
	}
	if ShouldRun(settings) {
		s.Start()
	} else {
		log.Println("[scheduler] Scheduled search is disabled — not starting")
	}
}

// Start installs the hourly trigger. No-op when already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		log.Println("[scheduler] Already running — ignoring start request")
		return
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(hourlySpec, s.tick); err != nil {
		// The spec is a constant; AddFunc can only fail if it is mangled.
		log.Printf("[scheduler] cron.AddFunc: %v", err)
		return
	}
	c.Start()
	s.cron = c
	log.Printf("[scheduler] Started — firing at the top of every hour (UTC)")
}

// Stop cancels the trigger and releases it. No-op when already stopped.
// Local state is force-cleared even if cron teardown misbehaves.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		log.Println("[scheduler] Not running — ignoring stop request")
		return
	}

	s.cron.Stop()
	s.cron = nil
	log.Println("[scheduler] Stopped")
}

// Restart performs stop → settle → read settings → start iff scheduled.
// A restart already in flight absorbs this call; concurrent requests are
// dropped, not queued. The sequence runs asynchronously, matching how
// settings-change callers invoke it.
func (s *Scheduler) Restart(ctx context.Context) {
	if !s.restarting.CompareAndSwap(false, true) {
		log.Println("[scheduler] Restart already in progress — dropping request")
		return
	}

	go func() {
		defer s.restarting.Store(false)

		s.Stop()
		time.Sleep(s.settle)

		settings, err := s.settings.Settings(ctx)
		if err != nil {
			log.Printf("[scheduler] Reading settings during restart failed: %v — staying stopped", err)
			return
		}
		if ShouldRun(settings) {
			s.Start()
		}
		log.Println("[scheduler] Restart complete")
	}()
}

// IsRunning reports whether the trigger is installed.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// tick runs on every cron firing. Settings are re-read each time: when
// scheduled search is disabled the occurrence is skipped but the trigger
// stays installed — only an explicit Stop tears it down.
func (s *Scheduler) tick() {
	ctx := context.Background()

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		log.Printf("[scheduler] Reading settings failed: %v — skipping this firing", err)
		return
	}
	if !ShouldRun(settings) {
		log.Println("[scheduler] Scheduled search is disabled — skipping this firing")
		return
	}

	log.Printf("[scheduler] Running scheduled ingestion at %s", time.Now().UTC().Format(time.RFC3339))
	s.run(ctx)
}
