// Package getro implements the board handler for Getro-backed job boards.
// Getro returns a flat job list with the organization embedded in each
// job, Unix-epoch timestamps, and cents-denominated compensation.
package getro

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"venturejobs/ingest-service/internal/board"
	"venturejobs/ingest-service/internal/model"
)

const hitsPerPage = 20

// DefaultSeniorities is the filter applied when no seniority preference
// has been stored yet, or when reading the stored set fails mid-run.
var DefaultSeniorities = []string{"vice_president", "cxo"}

// FilterSource supplies the current seniority allow-list. It is consulted
// on every Search call, never cached at handler construction, so a
// settings change mid-run takes effect on the next outbound request.
type FilterSource interface {
	SeniorityFilters(ctx context.Context) ([]string, error)
}

// Payload is the request body the Getro search API expects.
type Payload struct {
	HitsPerPage int     `json:"hitsPerPage"`
	Page        int     `json:"page"`
	Filters     Filters `json:"filters"`
	Query       string  `json:"query"`
}

type Filters struct {
	Seniority          []string `json:"seniority"`
	SearchableLocation []string `json:"searchable_location_option"`
	Q                  string   `json:"q"`
}

// BuildPayload produces the search request for one term with the given
// seniority allow-list. An empty list falls back to DefaultSeniorities.
func BuildPayload(term string, seniorities []string) Payload {
	if len(seniorities) == 0 {
		seniorities = DefaultSeniorities
	}
	return Payload{
		HitsPerPage: hitsPerPage,
		Page:        0,
		Filters: Filters{
			Seniority:          seniorities,
			SearchableLocation: []string{"remote"},
			Q:                  term,
		},
		Query: term,
	}
}

// Response mirrors the subset of the Getro search response the pipeline
// consumes. Unknown fields are ignored (forward-compatible).
type Response struct {
	Results Results `json:"results"`
}

type Results struct {
	Jobs  []Job `json:"jobs"`
	Count int   `json:"count"`
}

type Job struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	URL          string       `json:"url"`
	CreatedAt    int64        `json:"created_at"` // Unix seconds
	WorkMode     string       `json:"work_mode"`
	Locations    []string     `json:"locations"`
	MinCents     *float64     `json:"compensation_amount_min_cents"`
	MaxCents     *float64     `json:"compensation_amount_max_cents"`
	Currency     *string      `json:"compensation_currency"`
	Organization Organization `json:"organization"`
}

type Organization struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	LogoURL string `json:"logo_url"`
}

// Parse decodes and validates raw. Missing required fields fail with an
// error naming the offending field path.
func Parse(raw []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode getro response: %w", err)
	}
	for i, job := range resp.Results.Jobs {
		switch {
		case job.ID == 0:
			return nil, fmt.Errorf("invalid getro response: results.jobs[%d].id is missing", i)
		case job.Title == "":
			return nil, fmt.Errorf("invalid getro response: results.jobs[%d].title is missing", i)
		case job.URL == "":
			return nil, fmt.Errorf("invalid getro response: results.jobs[%d].url is missing", i)
		case job.CreatedAt == 0:
			return nil, fmt.Errorf("invalid getro response: results.jobs[%d].created_at is missing", i)
		case job.Organization.Name == "":
			return nil, fmt.Errorf("invalid getro response: results.jobs[%d].organization.name is missing", i)
		case job.Organization.Slug == "":
			return nil, fmt.Errorf("invalid getro response: results.jobs[%d].organization.slug is missing", i)
		}
	}
	return &resp, nil
}

// Transform maps the flat job list into records in response order,
// splitting the embedded organization off as the company half. Cents
// amounts convert to whole currency units and epoch seconds to UTC time.
func Transform(resp *Response) []board.Record {
	var records []board.Record
	for _, job := range resp.Results.Jobs {
		records = append(records, board.Record{
			Job:     toJob(job),
			Company: toCompany(job.Organization),
		})
	}
	return records
}

func toCompany(org Organization) board.CompanyRecord {
	rec := board.CompanyRecord{Name: org.Name}
	if org.Slug != "" {
		slug := org.Slug
		rec.Slug = &slug
	}
	if org.LogoURL != "" {
		logo := org.LogoURL
		rec.LogoURL = &logo
	}
	return rec
}

func toJob(j Job) board.JobRecord {
	remote := j.WorkMode == "remote"
	posted := time.Unix(j.CreatedAt, 0).UTC()
	rec := board.JobRecord{
		ExternalID: strconv.FormatInt(j.ID, 10),
		Title:      j.Title,
		ApplyURL:   j.URL,
		Remote:     &remote,
		PostedAt:   &posted,
		Currency:   j.Currency,
	}
	if len(j.Locations) > 0 && j.Locations[0] != "" {
		loc := j.Locations[0]
		rec.Location = &loc
	}
	if j.MinCents != nil {
		min := *j.MinCents / 100
		rec.SalaryMin = &min
	}
	if j.MaxCents != nil {
		max := *j.MaxCents / 100
		rec.SalaryMax = &max
	}
	return rec
}

// Handler implements board.Handler for the Getro platform.
type Handler struct {
	client  *http.Client
	filters FilterSource
	origin  string
}

// New constructs a Handler. filters may be nil, in which case
// DefaultSeniorities is always applied.
func New(client *http.Client, filters FilterSource) *Handler {
	return &Handler{
		client:  client,
		filters: filters,
		// The Getro API rejects requests without a board origin.
		origin: "https://jobs.accel.com",
	}
}

// Search runs one request cycle. The seniority allow-list is re-read from
// the filter source on every call.
func (h *Handler) Search(ctx context.Context, firm model.Firm, term string) ([]board.Record, error) {
	if firm.BoardID == "" {
		return nil, fmt.Errorf("missing collection id for firm %q", firm.Name)
	}

	seniorities := h.currentSeniorities(ctx)
	body, err := json.Marshal(BuildPayload(term, seniorities))
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	raw, err := board.PostJSON(ctx, h.client, firm.Endpoint, body, map[string]string{"Origin": h.origin})
	if err != nil {
		return nil, err
	}
	resp, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Transform(resp), nil
}

func (h *Handler) currentSeniorities(ctx context.Context) []string {
	if h.filters == nil {
		return DefaultSeniorities
	}
	values, err := h.filters.SeniorityFilters(ctx)
	if err != nil {
		log.Printf("[getro] Reading seniority filters failed: %v — using defaults", err)
		return DefaultSeniorities
	}
	return values
}
