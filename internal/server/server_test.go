package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"venturejobs/ingest-service/internal/ingest"
	"venturejobs/ingest-service/internal/model"
	"venturejobs/ingest-service/internal/progress"
	"venturejobs/ingest-service/internal/server"
	"venturejobs/ingest-service/internal/store"
)

// ── fakes ──────────────────────────────────────────────────────────────

type fakeStore struct {
	mu sync.Mutex

	settings    model.Settings
	settingsErr error

	terms       []model.SearchTerm
	addTermErr  error
	deletedIDs  []int64
	setTerms    [][]string
	setLevels   [][]string
	scheduledTo []bool

	notifications []model.Notification
	addedNotifs   []model.Notification

	postings []model.Posting
}

func (f *fakeStore) ListPostings(ctx context.Context) ([]model.Posting, error) {
	return f.postings, nil
}

func (f *fakeStore) ListSearchTerms(ctx context.Context) ([]model.SearchTerm, error) {
	return f.terms, nil
}

func (f *fakeStore) AddSearchTerm(ctx context.Context, term string) (model.SearchTerm, error) {
	if f.addTermErr != nil {
		return model.SearchTerm{}, f.addTermErr
	}
	t := model.SearchTerm{ID: int64(len(f.terms) + 1), Term: term, CreatedAt: time.Now().UTC()}
	f.terms = append(f.terms, t)
	return t, nil
}

func (f *fakeStore) DeleteSearchTerm(ctx context.Context, id int64) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeStore) SeniorityFilters(ctx context.Context) ([]string, error) {
	return f.settings.SeniorityLevels, nil
}

func (f *fakeStore) SetSeniorityFilters(ctx context.Context, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLevels = append(f.setLevels, values)
	f.settings.SeniorityLevels = values
	return nil
}

func (f *fakeStore) SetSearchTerms(ctx context.Context, terms []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setTerms = append(f.setTerms, terms)
	f.settings.SearchTerms = terms
	return nil
}

func (f *fakeStore) Settings(ctx context.Context) (model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settingsErr != nil {
		return model.Settings{}, f.settingsErr
	}
	return f.settings, nil
}

func (f *fakeStore) SetScheduled(ctx context.Context, scheduled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduledTo = append(f.scheduledTo, scheduled)
	f.settings.Scheduled = scheduled
	return nil
}

func (f *fakeStore) AddNotification(ctx context.Context, timestamp time.Time, inserted, skipped int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addedNotifs = append(f.addedNotifs, model.Notification{Timestamp: timestamp, Inserted: inserted, Skipped: skipped})
	return nil
}

func (f *fakeStore) TakeUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	taken := f.notifications
	f.notifications = nil
	return taken, nil
}

type fakeRunner struct {
	mu            sync.Mutex
	result        ingest.Result
	err           error
	runFirms      [][]string
	automatedRuns int
}

func (f *fakeRunner) Run(ctx context.Context, firmNames []string) (ingest.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runFirms = append(f.runFirms, firmNames)
	return f.result, f.err
}

func (f *fakeRunner) RunAutomated(ctx context.Context) ingest.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.automatedRuns++
	return f.result
}

type fakeSchedule struct {
	mu       sync.Mutex
	running  bool
	starts   int
	stops    int
	restarts int
}

func (f *fakeSchedule) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.running = true
}

func (f *fakeSchedule) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
}

func (f *fakeSchedule) Restart(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	f.running = true
}

func (f *fakeSchedule) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeSchedule) counts() (starts, stops, restarts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops, f.restarts
}

type env struct {
	store    *fakeStore
	runner   *fakeRunner
	schedule *fakeSchedule
	bc       *progress.Broadcaster
	srv      *server.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:    &fakeStore{},
		runner:   &fakeRunner{},
		schedule: &fakeSchedule{},
		bc:       progress.NewBroadcaster(),
	}
	t.Cleanup(e.bc.Close)
	e.srv = server.New(e.store, e.runner, e.schedule, e.bc, "test-secret")
	return e
}

func (e *env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

// ── triggers ───────────────────────────────────────────────────────────

func TestHandleRun_Success(t *testing.T) {
	e := newEnv(t)
	e.runner.result = ingest.Result{Inserted: 5, Skipped: 2}

	w := e.do(t, http.MethodPost, "/api/run", `{"firms":["Sequoia"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got ingest.Result
	decodeBody(t, w, &got)
	if got.Inserted != 5 || got.Skipped != 2 {
		t.Errorf("result = %+v, want inserted 5 skipped 2", got)
	}
	if len(e.runner.runFirms) != 1 || len(e.runner.runFirms[0]) != 1 || e.runner.runFirms[0][0] != "Sequoia" {
		t.Errorf("runner received firms %v, want [Sequoia]", e.runner.runFirms)
	}
}

func TestHandleRun_EmptyBodyRunsAllFirms(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/run", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(e.runner.runFirms) != 1 || e.runner.runFirms[0] != nil {
		t.Errorf("runner received firms %v, want one call with nil subset", e.runner.runFirms)
	}
}

func TestHandleRun_FailureReportsPartialCounts(t *testing.T) {
	e := newEnv(t)
	e.runner.result = ingest.Result{Inserted: 3, Skipped: 1}
	e.runner.err = errors.New(`firm "Accel": boom`)

	w := e.do(t, http.MethodPost, "/api/run", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var got struct {
		Error    string `json:"error"`
		Inserted int    `json:"inserted"`
		Skipped  int    `json:"skipped"`
	}
	decodeBody(t, w, &got)
	if !strings.Contains(got.Error, "Accel") {
		t.Errorf("error %q should name the failed firm", got.Error)
	}
	if got.Inserted != 3 || got.Skipped != 1 {
		t.Errorf("partial counts = %d/%d, want 3/1", got.Inserted, got.Skipped)
	}
}

func TestHandleCron_Auth(t *testing.T) {
	e := newEnv(t)
	e.store.settings.Scheduled = true

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer nope", http.StatusUnauthorized},
		{"correct secret", "Bearer test-secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cron", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			e.srv.Handler().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
	if e.runner.automatedRuns != 1 {
		t.Errorf("automated runs = %d, want 1 (only the authorized request)", e.runner.automatedRuns)
	}
}

func TestHandleCron_EmptySecretRejectsEverything(t *testing.T) {
	e := &env{
		store:    &fakeStore{},
		runner:   &fakeRunner{},
		schedule: &fakeSchedule{},
		bc:       progress.NewBroadcaster(),
	}
	t.Cleanup(e.bc.Close)
	e.srv = server.New(e.store, e.runner, e.schedule, e.bc, "")

	req := httptest.NewRequest(http.MethodPost, "/api/cron", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when no secret is configured", w.Code)
	}
}

func TestHandleCron_SkipsWhenDisabled(t *testing.T) {
	e := newEnv(t)
	e.store.settings.Scheduled = false

	req := httptest.NewRequest(http.MethodPost, "/api/cron", nil)
	req.Header.Set("Authorization", "Bearer test-secret")
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if e.runner.automatedRuns != 0 {
		t.Errorf("automated runs = %d, want 0 when scheduled search is disabled", e.runner.automatedRuns)
	}
	var got struct {
		Scheduled bool `json:"scheduled"`
	}
	decodeBody(t, w, &got)
	if got.Scheduled {
		t.Error("response should report scheduled=false")
	}
}

// ── progress ───────────────────────────────────────────────────────────

func TestHandleProgress_Snapshot(t *testing.T) {
	e := newEnv(t)
	e.bc.SetSearching(true)
	e.bc.Publish(progress.Event{Type: progress.EventSearching, FirmName: "Sequoia Capital"})

	w := e.do(t, http.MethodGet, "/api/progress", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got progress.Snapshot
	decodeBody(t, w, &got)
	if !got.IsSearching {
		t.Error("snapshot should report isSearching=true")
	}
	if got.Progress == nil || got.Progress.FirmName != "Sequoia Capital" {
		t.Errorf("snapshot progress = %+v, want the published event", got.Progress)
	}
}

func TestHandleProgressStream_SendsInitialFrame(t *testing.T) {
	e := newEnv(t)
	e.bc.Publish(progress.Event{Type: progress.EventFound, FirmName: "Accel", Inserted: 4})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/progress/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.srv.Handler().ServeHTTP(w, req)
	}()

	// The first frame arrives on connect; give the handler a moment to
	// write it, then disconnect.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not return after disconnect")
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("body %q does not start with an SSE data frame", body)
	}

	var snap progress.Snapshot
	payload := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(body, "\n\n", 2)[0], "data: "))
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		t.Fatalf("decoding initial frame %q: %v", payload, err)
	}
	if snap.Progress == nil || snap.Progress.FirmName != "Accel" || snap.Progress.Inserted != 4 {
		t.Errorf("initial frame carried %+v, want the pre-connect event", snap.Progress)
	}
}

// ── settings ───────────────────────────────────────────────────────────

func TestHandleGetSettings(t *testing.T) {
	e := newEnv(t)
	e.store.settings = model.Settings{
		Scheduled:       true,
		SearchTerms:     []string{"CTO"},
		SeniorityLevels: []string{"cxo"},
	}

	w := e.do(t, http.MethodGet, "/api/settings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got model.Settings
	decodeBody(t, w, &got)
	if !got.Scheduled || len(got.SearchTerms) != 1 || len(got.SeniorityLevels) != 1 {
		t.Errorf("settings = %+v", got)
	}
}

func TestHandleSetSettings_PartialUpdate(t *testing.T) {
	e := newEnv(t)
	e.store.settings = model.Settings{Scheduled: true, SearchTerms: []string{"CTO"}}

	w := e.do(t, http.MethodPost, "/api/settings", `{"searchTerms":["VP Engineering","CTO"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if len(e.store.setTerms) != 1 {
		t.Fatalf("SetSearchTerms called %d times, want 1", len(e.store.setTerms))
	}
	if len(e.store.scheduledTo) != 0 {
		t.Error("scheduled flag must not change on a terms-only update")
	}
	if _, _, restarts := e.schedule.counts(); restarts != 0 {
		t.Error("terms-only update must not restart the scheduler")
	}
}

func TestHandleSetSettings_RejectsBadTerm(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/settings", `{"searchTerms":[""]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty term: status = %d, want 400", w.Code)
	}

	long := strings.Repeat("x", 101)
	w = e.do(t, http.MethodPost, "/api/settings", `{"searchTerms":["`+long+`"]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversized term: status = %d, want 400", w.Code)
	}
	if len(e.store.setTerms) != 0 {
		t.Error("invalid terms must not reach the store")
	}
}

func TestHandleSetSettings_ScheduledChangeDebouncesRestart(t *testing.T) {
	e := newEnv(t)
	e.store.settings.Scheduled = false

	// Two rapid toggles: false→true then true→false. The debounce window
	// collapses them into one restart.
	w := e.do(t, http.MethodPost, "/api/settings", `{"scheduled":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	w = e.do(t, http.MethodPost, "/api/settings", `{"scheduled":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if _, _, restarts := e.schedule.counts(); restarts != 0 {
		t.Fatal("restart fired before the debounce window elapsed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, _, restarts := e.schedule.counts(); restarts > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced restart never fired")
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	if _, _, restarts := e.schedule.counts(); restarts != 1 {
		t.Errorf("restarts = %d, want the burst collapsed into 1", restarts)
	}
}

// ── scheduler control ──────────────────────────────────────────────────

func TestHandleSchedulerStatus_AutoRecovers(t *testing.T) {
	e := newEnv(t)
	e.store.settings.Scheduled = true
	// Timer down, flag up: the in-memory state was lost to a process
	// restart.

	w := e.do(t, http.MethodGet, "/api/scheduler", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	starts, _, _ := e.schedule.counts()
	if starts != 1 {
		t.Errorf("starts = %d, want auto-recovery to start the scheduler", starts)
	}
	var got struct {
		IsRunning bool   `json:"isRunning"`
		Scheduled bool   `json:"scheduled"`
		NextRun   string `json:"nextRun"`
	}
	decodeBody(t, w, &got)
	if !got.IsRunning || !got.Scheduled {
		t.Errorf("status = %+v, want running and scheduled after recovery", got)
	}
	if got.NextRun != "At the start of the next hour" {
		t.Errorf("nextRun = %q", got.NextRun)
	}
}

func TestHandleSchedulerStatus_NoRecoveryWhenDisabled(t *testing.T) {
	e := newEnv(t)
	e.store.settings.Scheduled = false

	w := e.do(t, http.MethodGet, "/api/scheduler", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if starts, _, _ := e.schedule.counts(); starts != 0 {
		t.Errorf("starts = %d, want 0 when scheduled search is disabled", starts)
	}
}

func TestHandleSchedulerAction(t *testing.T) {
	tests := []struct {
		action string
		want   int
		check  func(starts, stops, restarts int) bool
	}{
		{"start", http.StatusOK, func(st, sp, r int) bool { return st == 1 }},
		{"stop", http.StatusOK, func(st, sp, r int) bool { return sp == 1 }},
		{"restart", http.StatusOK, func(st, sp, r int) bool { return r == 1 }},
		{"reboot", http.StatusBadRequest, func(st, sp, r int) bool { return st+sp+r == 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			e := newEnv(t)
			w := e.do(t, http.MethodPost, "/api/scheduler", `{"action":"`+tt.action+`"}`)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if !tt.check(e.schedule.counts()) {
				st, sp, r := e.schedule.counts()
				t.Errorf("counts after %q: starts=%d stops=%d restarts=%d", tt.action, st, sp, r)
			}
		})
	}
}

// ── search terms ───────────────────────────────────────────────────────

func TestHandleAddSearchTerm(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/search-terms", `{"term":"Staff Engineer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got model.SearchTerm
	decodeBody(t, w, &got)
	if got.Term != "Staff Engineer" || got.ID == 0 {
		t.Errorf("term = %+v", got)
	}
}

func TestHandleAddSearchTerm_Validation(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/search-terms", `{"term":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty term: status = %d, want 400", w.Code)
	}

	long := strings.Repeat("x", 101)
	w = e.do(t, http.MethodPost, "/api/search-terms", `{"term":"`+long+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversized term: status = %d, want 400", w.Code)
	}
}

func TestHandleAddSearchTerm_Duplicate(t *testing.T) {
	e := newEnv(t)
	e.store.addTermErr = store.ErrDuplicateTerm

	w := e.do(t, http.MethodPost, "/api/search-terms", `{"term":"CTO"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestHandleDeleteSearchTerm(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodDelete, "/api/search-terms", `{"id":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(e.store.deletedIDs) != 1 || e.store.deletedIDs[0] != 7 {
		t.Errorf("deleted ids = %v, want [7]", e.store.deletedIDs)
	}

	w = e.do(t, http.MethodDelete, "/api/search-terms", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing id: status = %d, want 400", w.Code)
	}
}

// ── seniority filters ──────────────────────────────────────────────────

func TestHandleSetSeniorityFilters(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/seniority-filters", `{"values":["cxo","director"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(e.store.setLevels) != 1 || len(e.store.setLevels[0]) != 2 {
		t.Errorf("stored levels = %v", e.store.setLevels)
	}

	// Explicit empty list is an allowed reset; a missing field is not.
	w = e.do(t, http.MethodPost, "/api/seniority-filters", `{"values":[]}`)
	if w.Code != http.StatusOK {
		t.Errorf("empty list: status = %d, want 200", w.Code)
	}
	w = e.do(t, http.MethodPost, "/api/seniority-filters", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing values: status = %d, want 400", w.Code)
	}
}

// ── notifications ──────────────────────────────────────────────────────

func TestHandleNotifications_TakeMarksRead(t *testing.T) {
	e := newEnv(t)
	e.store.notifications = []model.Notification{
		{ID: 2, Timestamp: time.Now().UTC(), Inserted: 7, Skipped: 3},
		{ID: 1, Timestamp: time.Now().UTC().Add(-time.Hour), Inserted: 1, Skipped: 0},
	}

	w := e.do(t, http.MethodGet, "/api/notifications", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got struct {
		Notifications []model.Notification `json:"notifications"`
	}
	decodeBody(t, w, &got)
	if len(got.Notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got.Notifications))
	}

	// Second take: everything was marked read by the first.
	w = e.do(t, http.MethodGet, "/api/notifications", "")
	decodeBody(t, w, &got)
	if got.Notifications == nil {
		t.Fatal("drained take must return an empty array, not null")
	}
	if len(got.Notifications) != 0 {
		t.Errorf("second take returned %d notifications, want 0", len(got.Notifications))
	}
}

func TestHandleAddNotification(t *testing.T) {
	e := newEnv(t)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := e.do(t, http.MethodPost, "/api/notifications",
		`{"timestamp":"2025-06-01T12:00:00Z","inserted":4,"skipped":9}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(e.store.addedNotifs) != 1 {
		t.Fatalf("stored %d notifications, want 1", len(e.store.addedNotifs))
	}
	n := e.store.addedNotifs[0]
	if !n.Timestamp.Equal(ts) || n.Inserted != 4 || n.Skipped != 9 {
		t.Errorf("stored notification = %+v", n)
	}

	// Timestamp defaults to now when omitted.
	before := time.Now().UTC()
	w = e.do(t, http.MethodPost, "/api/notifications", `{"inserted":1,"skipped":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	n = e.store.addedNotifs[1]
	if n.Timestamp.Before(before) {
		t.Errorf("defaulted timestamp %v predates the request", n.Timestamp)
	}
}

// ── health ─────────────────────────────────────────────────────────────

func TestHandleHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got map[string]string
	decodeBody(t, w, &got)
	if got["status"] != "ok" {
		t.Errorf("health payload = %v", got)
	}
}
