// Package ingest implements the multi-source ingestion orchestrator: for
// each firm and search term it drives the matching board handler through
// one fetch-transform-insert cycle, accumulates insert/skip counts, and
// publishes progress events.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"venturejobs/ingest-service/internal/board"
	"venturejobs/ingest-service/internal/catalog"
	"venturejobs/ingest-service/internal/model"
	"venturejobs/ingest-service/internal/progress"
)

// Store is what the orchestrator needs from the persistent store.
type Store interface {
	board.PostingStore
	SearchTerms(ctx context.Context) ([]string, error)
}

// NotificationStore persists scheduled-run outcomes.
type NotificationStore interface {
	AddNotification(ctx context.Context, timestamp time.Time, inserted, skipped int) error
}

// Publisher receives progress events. Satisfied by progress.Broadcaster.
type Publisher interface {
	Publish(event progress.Event)
	SetSearching(searching bool)
}

// SeenCache is an optional best-effort fast path for already-ingested
// keys. The store's uniqueness constraint stays authoritative; the cache
// only saves a round trip, and its failures are never fatal.
type SeenCache interface {
	Seen(ctx context.Context, source, externalID string) bool
	Mark(ctx context.Context, source, externalID string)
}

// Result is one run's aggregate counts. With per-firm error isolation the
// counts are meaningful even when Run also returns an error: they cover
// every firm that processed, fully or partially.
type Result struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Orchestrator runs the fetch-transform-insert loop over the firm catalog.
type Orchestrator struct {
	firms         []model.Firm
	registry      board.Registry
	store         Store
	notifications NotificationStore
	publisher     Publisher
	cache         SeenCache
}

// New constructs an Orchestrator over the given catalog. notifications and
// cache may be nil.
func New(firms []model.Firm, registry board.Registry, store Store, notifications NotificationStore, publisher Publisher, cache SeenCache) *Orchestrator {
	if firms == nil {
		firms = catalog.Firms
	}
	return &Orchestrator{
		firms:         firms,
		registry:      registry,
		store:         store,
		notifications: notifications,
		publisher:     publisher,
		cache:         cache,
	}
}

// Run executes one full pass. An explicit firmNames subset overrides the
// enabled filter; otherwise every enabled firm is processed in catalog
// order. Search terms are snapshotted once for the whole run.
//
// One firm's failure aborts that firm's remaining terms only: the error is
// logged, collected, and the run continues with the next firm. The
// returned error joins every per-firm failure; the Result always carries
// the counts that were actually committed.
func (o *Orchestrator) Run(ctx context.Context, firmNames []string) (Result, error) {
	firms := o.resolveFirms(firmNames)

	terms, err := o.store.SearchTerms(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load search terms: %w", err)
	}

	o.publisher.SetSearching(true)

	var total Result
	var errs []error
	for _, firm := range firms {
		handler, ok := o.registry.Lookup(firm.Platform)
		if !ok {
			log.Printf("[ingest] No handler for platform %q — skipping %s", firm.Platform, firm.Name)
			continue
		}

		o.publisher.Publish(progress.Event{Type: progress.EventSearching, FirmName: firm.Name})
		log.Printf("[ingest] Searching %s (%d terms)", firm.Name, len(terms))

		inserted, skipped, err := o.searchFirm(ctx, handler, firm, terms)
		total.Inserted += inserted
		total.Skipped += skipped
		if err != nil {
			log.Printf("[ingest] Firm %s failed: %v — continuing with remaining firms", firm.Name, err)
			errs = append(errs, fmt.Errorf("firm %s: %w", firm.Name, err))
			continue
		}

		o.publisher.Publish(progress.Event{
			Type:          progress.EventFound,
			FirmName:      firm.Name,
			Inserted:      inserted,
			Skipped:       skipped,
			TotalInserted: total.Inserted,
			TotalSkipped:  total.Skipped,
		})
		log.Printf("[ingest] %s done — inserted=%d skipped=%d", firm.Name, inserted, skipped)
	}

	o.publisher.Publish(progress.Event{
		Type:          progress.EventSummary,
		TotalInserted: total.Inserted,
		TotalSkipped:  total.Skipped,
	})
	o.publisher.SetSearching(false)

	log.Printf("[ingest] Run complete — inserted=%d skipped=%d firms=%d failures=%d",
		total.Inserted, total.Skipped, len(firms), len(errs))
	return total, errors.Join(errs...)
}

// searchFirm queries one firm once per term, sequentially, inserting every
// record idempotently. The first term error aborts the firm's remaining
// terms; counts committed so far are still returned.
func (o *Orchestrator) searchFirm(ctx context.Context, handler board.Handler, firm model.Firm, terms []string) (inserted, skipped int, err error) {
	for _, term := range terms {
		records, err := handler.Search(ctx, firm, term)
		if err != nil {
			return inserted, skipped, fmt.Errorf("term %q: %w", term, err)
		}

		for _, rec := range records {
			if o.cache != nil && o.cache.Seen(ctx, firm.Name, rec.Job.ExternalID) {
				skipped++
				continue
			}

			wasInserted, err := board.InsertIfNew(ctx, o.store, rec, firm.Name)
			if err != nil {
				return inserted, skipped, fmt.Errorf("term %q: insert %s: %w", term, rec.Job.ExternalID, err)
			}
			if wasInserted {
				inserted++
			} else {
				skipped++
			}
			if o.cache != nil {
				o.cache.Mark(ctx, firm.Name, rec.Job.ExternalID)
			}
		}
	}
	return inserted, skipped, nil
}

func (o *Orchestrator) resolveFirms(firmNames []string) []model.Firm {
	if len(firmNames) > 0 {
		return subset(o.firms, firmNames)
	}
	var out []model.Firm
	for _, f := range o.firms {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

func subset(firms []model.Firm, names []string) []model.Firm {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []model.Firm
	for _, f := range firms {
		if want[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// RunAutomated wraps Run for timer-driven triggers. It never propagates
// errors past its own boundary: failures are logged, and the run's
// (possibly partial) totals are persisted as a notification so a run that
// completed with no live observer can be surfaced later.
func (o *Orchestrator) RunAutomated(ctx context.Context) Result {
	log.Printf("[ingest] Automated run starting")

	result, err := o.Run(ctx, nil)
	if err != nil {
		log.Printf("[ingest] Automated run completed with errors: %v", err)
	} else {
		log.Printf("[ingest] Automated run completed — inserted=%d skipped=%d", result.Inserted, result.Skipped)
	}

	if o.notifications != nil {
		if err := o.notifications.AddNotification(ctx, time.Now().UTC(), result.Inserted, result.Skipped); err != nil {
			log.Printf("[ingest] Storing run notification failed: %v", err)
		}
	}
	return result
}
