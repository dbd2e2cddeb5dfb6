// Package consider implements the board handler for Consider-backed job
// boards. Consider groups jobs under companies; the transform stage
// flattens those groups into (job, company) pairs in response order.
package consider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"venturejobs/ingest-service/internal/board"
	"venturejobs/ingest-service/internal/model"
)

const pageSize = 500

// Payload is the request body the Consider search API expects.
type Payload struct {
	Meta    Meta    `json:"meta"`
	Board   Board   `json:"board"`
	Query   Query   `json:"query"`
	Grouped bool    `json:"grouped"`
}

type Meta struct {
	Size int `json:"size"`
}

type Board struct {
	ID       string `json:"id"`
	IsParent bool   `json:"isParent"`
}

type Query struct {
	RemoteOnly         bool   `json:"remoteOnly"`
	HybridOnly         bool   `json:"hybridOnly"`
	HybridOrRemoteOnly bool   `json:"hybridOrRemoteOnly"`
	TitlePrefix        string `json:"titlePrefix"`
	PromoteFeatured    bool   `json:"promoteFeatured"`
}

// BuildPayload produces the search request for one firm and term. Fails
// when the firm has no board id configured.
func BuildPayload(firm model.Firm, term string) (Payload, error) {
	if firm.BoardID == "" {
		return Payload{}, fmt.Errorf("missing board id for firm %q", firm.Name)
	}
	return Payload{
		Meta:  Meta{Size: pageSize},
		Board: Board{ID: firm.BoardID, IsParent: true},
		Query: Query{
			RemoteOnly:      true,
			TitlePrefix:     term,
			PromoteFeatured: true,
		},
		Grouped: true,
	}, nil
}

// Response mirrors the subset of the Consider search response the
// pipeline consumes. Unknown fields are ignored, which keeps the decode
// forward-compatible with upstream additions.
type Response struct {
	Jobs []JobGroup `json:"jobs"`
}

type JobGroup struct {
	Company Company `json:"company"`
	Jobs    []Job   `json:"jobs"`
}

type Company struct {
	Name  string          `json:"name"`
	Slug  string          `json:"slug"`
	Logos map[string]Logo `json:"logos"`
}

type Logo struct {
	Src string `json:"src"`
}

type Job struct {
	Title     string   `json:"title"`
	JobID     string   `json:"jobId"`
	ApplyURL  string   `json:"applyUrl"`
	TimeStamp string   `json:"timeStamp"`
	Locations []string `json:"locations"`
	Remote    bool     `json:"remote"`
	Salary    *Salary  `json:"salary"`
}

type Salary struct {
	MinValue float64    `json:"minValue"`
	MaxValue float64    `json:"maxValue"`
	Currency LabelValue `json:"currency"`
}

type LabelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Parse decodes and validates raw. Missing required fields fail with an
// error naming the offending field path.
func Parse(raw []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode consider response: %w", err)
	}
	for i, group := range resp.Jobs {
		if group.Company.Name == "" {
			return nil, fmt.Errorf("invalid consider response: jobs[%d].company.name is missing", i)
		}
		if group.Company.Slug == "" {
			return nil, fmt.Errorf("invalid consider response: jobs[%d].company.slug is missing", i)
		}
		for j, job := range group.Jobs {
			switch {
			case job.Title == "":
				return nil, fmt.Errorf("invalid consider response: jobs[%d].jobs[%d].title is missing", i, j)
			case job.JobID == "":
				return nil, fmt.Errorf("invalid consider response: jobs[%d].jobs[%d].jobId is missing", i, j)
			case job.ApplyURL == "":
				return nil, fmt.Errorf("invalid consider response: jobs[%d].jobs[%d].applyUrl is missing", i, j)
			case job.TimeStamp == "":
				return nil, fmt.Errorf("invalid consider response: jobs[%d].jobs[%d].timeStamp is missing", i, j)
			}
		}
	}
	return &resp, nil
}

// Transform flattens the company→jobs grouping into records, preserving
// response order: every job of the first group, then the second, and so on.
func Transform(resp *Response) []board.Record {
	var records []board.Record
	for _, group := range resp.Jobs {
		company := toCompany(group.Company)
		for _, job := range group.Jobs {
			records = append(records, board.Record{
				Job:     toJob(job),
				Company: company,
			})
		}
	}
	return records
}

func toCompany(c Company) board.CompanyRecord {
	rec := board.CompanyRecord{Name: c.Name}
	if c.Slug != "" {
		slug := c.Slug
		rec.Slug = &slug
	}
	// Prefer a manually curated logo over the LinkedIn-sourced one.
	for _, key := range []string{"manual", "linkedin"} {
		if logo, ok := c.Logos[key]; ok && logo.Src != "" {
			src := logo.Src
			rec.LogoURL = &src
			break
		}
	}
	return rec
}

func toJob(j Job) board.JobRecord {
	remote := j.Remote
	rec := board.JobRecord{
		ExternalID: j.JobID,
		Title:      j.Title,
		ApplyURL:   j.ApplyURL,
		Remote:     &remote,
	}
	if len(j.Locations) > 0 && j.Locations[0] != "" {
		loc := j.Locations[0]
		rec.Location = &loc
	}
	if ts, err := time.Parse(time.RFC3339, j.TimeStamp); err == nil {
		utc := ts.UTC()
		rec.PostedAt = &utc
	}
	if j.Salary != nil {
		min, max := j.Salary.MinValue, j.Salary.MaxValue
		rec.SalaryMin = &min
		rec.SalaryMax = &max
		if j.Salary.Currency.Value != "" {
			cur := j.Salary.Currency.Value
			rec.Currency = &cur
		}
	}
	return rec
}

// Handler implements board.Handler for the Consider platform.
type Handler struct {
	client *http.Client
}

// New constructs a Handler sharing client across requests.
func New(client *http.Client) *Handler {
	return &Handler{client: client}
}

// Search runs one request cycle: build payload, POST, validate, flatten.
func (h *Handler) Search(ctx context.Context, firm model.Firm, term string) ([]board.Record, error) {
	payload, err := BuildPayload(firm, term)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	raw, err := board.PostJSON(ctx, h.client, firm.Endpoint, body, nil)
	if err != nil {
		return nil, err
	}
	resp, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Transform(resp), nil
}
