// Package board defines the platform handler abstraction shared by all
// job-board backends, plus the registry that maps a platform identifier
// to its handler. Adding a platform means registering a new Handler
// implementation, never branching on a string elsewhere.
package board

import (
	"context"
	"time"

	"venturejobs/ingest-service/internal/model"
)

// JobRecord is the platform-agnostic shape of one job, produced by a
// handler's transform stage from the platform-native response.
type JobRecord struct {
	ExternalID string
	Title      string
	ApplyURL   string
	Location   *string
	Remote     *bool
	PostedAt   *time.Time
	SalaryMin  *float64
	SalaryMax  *float64
	Currency   *string
}

// CompanyRecord is the company half of a transformed pair.
type CompanyRecord struct {
	Name    string
	Slug    *string
	LogoURL *string
}

// Record is one flattened (job, company) pair in upstream response order.
type Record struct {
	Job     JobRecord
	Company CompanyRecord
}

// Posting maps the record onto the canonical persisted shape for source,
// the firm name the record was fetched for.
func (r Record) Posting(source string) model.Posting {
	return model.Posting{
		Source:      source,
		ExternalID:  r.Job.ExternalID,
		CompanyName: r.Company.Name,
		CompanySlug: r.Company.Slug,
		Title:       r.Job.Title,
		ApplyURL:    r.Job.ApplyURL,
		Location:    r.Job.Location,
		Remote:      r.Job.Remote,
		PostedAt:    r.Job.PostedAt,
		SalaryMin:   r.Job.SalaryMin,
		SalaryMax:   r.Job.SalaryMax,
		Currency:    r.Job.Currency,
		LogoURL:     r.Company.LogoURL,
	}
}

// Handler is the capability a platform implementation provides to the
// orchestrator: one request cycle (build payload, POST, validate, flatten)
// against a firm's board for a single search term. Records come back in
// upstream response order. Errors identify the failing stage; a firm
// missing a required platform field fails here, before any network call.
type Handler interface {
	Search(ctx context.Context, firm model.Firm, term string) ([]Record, error)
}

// PostingStore is the insert side of the persistent store. InsertPosting
// reports false when the (source, externalId) pair already exists; that is
// the expected duplicate signal, not an error. Every other store failure
// propagates.
type PostingStore interface {
	InsertPosting(ctx context.Context, p model.Posting) (bool, error)
}

// InsertIfNew maps rec onto the canonical posting for source and performs
// the unique-constrained insert. Returns true when a new row was created,
// false when the pair was already ingested.
func InsertIfNew(ctx context.Context, store PostingStore, rec Record, source string) (bool, error) {
	return store.InsertPosting(ctx, rec.Posting(source))
}

// Registry maps a platform identifier to its Handler.
type Registry map[model.Platform]Handler

// Lookup resolves the handler for platform; ok is false when no handler
// is registered, which callers treat as log-and-skip, never fatal.
func (r Registry) Lookup(platform model.Platform) (Handler, bool) {
	h, ok := r[platform]
	return h, ok
}
