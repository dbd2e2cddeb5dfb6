// Package model defines shared data structures for the ingest service.
package model

import "time"

// Platform identifies the job-board backend a firm publishes through.
// It selects which board handler applies.
type Platform string

const (
	PlatformConsider Platform = "consider"
	PlatformGetro    Platform = "getro"
)

// Firm is one catalog entry: an upstream organization whose job board we
// ingest. Static configuration, loaded once at startup.
type Firm struct {
	Name     string // unique slug, e.g. "sequoia"
	Platform Platform
	Enabled  bool
	Endpoint string // board search API URL; empty for disabled stubs
	BoardID  string // platform-specific board/collection id
}

// SearchTerm mirrors a search_terms table row.
type SearchTerm struct {
	ID        int64     `json:"id"`
	Term      string    `json:"term"`
	CreatedAt time.Time `json:"createdAt"`
}

// Posting is one normalized, persisted job listing. The pair
// (Source, ExternalID) is unique and is the sole deduplication key;
// postings are created exactly once and never updated by the pipeline.
type Posting struct {
	ID          int64      `json:"id"`
	Source      string     `json:"source"`     // firm name
	ExternalID  string     `json:"externalId"` // platform-native job id
	CompanyName string     `json:"companyName"`
	CompanySlug *string    `json:"companySlug,omitempty"`
	Title       string     `json:"title"`
	ApplyURL    string     `json:"applyUrl"`
	Location    *string    `json:"location,omitempty"`
	Remote      *bool      `json:"remote,omitempty"`
	PostedAt    *time.Time `json:"postedAt,omitempty"`
	SalaryMin   *float64   `json:"salaryMin,omitempty"`
	SalaryMax   *float64   `json:"salaryMax,omitempty"`
	Currency    *string    `json:"currency,omitempty"`
	LogoURL     *string    `json:"logoUrl,omitempty"`
	InsertedAt  time.Time  `json:"insertedAt"`
}

// Settings is the singleton job-search settings record. Read by the
// scheduler on every tick and by the orchestrator at run start.
type Settings struct {
	Scheduled       bool     `json:"scheduled"`
	SearchTerms     []string `json:"searchTerms"`
	SeniorityLevels []string `json:"seniorityLevels"`
}

// Notification records the outcome of a scheduled run so it can be
// surfaced later when no live observer was connected.
type Notification struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Read      bool      `json:"read"`
}
