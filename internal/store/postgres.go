// Package store implements persistence for postings, search terms,
// seniority filters, settings, and scheduled-run notifications on
// PostgreSQL, plus a best-effort Redis cache of already-ingested keys.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"venturejobs/ingest-service/internal/model"
)

// ErrDuplicateTerm is returned when adding a search term that already
// exists.
var ErrDuplicateTerm = errors.New("search term already exists")

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint hit.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation.
// For postings this is the expected "already ingested" signal.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var defaultSearchTerms = []string{
	"Software Engineer",
	"Machine Learning Engineer",
	"Product Manager",
	"Data Scientist",
	"Backend Engineer",
	"Frontend Engineer",
	"CTO",
	"VP Engineering",
	"Director of Engineering",
}

var allSeniorityOptions = []string{
	"cxo",
	"vice_president",
	"director",
	"senior",
	"mid_senior",
	"associate",
	"entry_level",
	"internship",
}

const schema = `
CREATE TABLE IF NOT EXISTS postings (
  id BIGSERIAL PRIMARY KEY,
  source TEXT NOT NULL,
  external_id TEXT NOT NULL,
  company_name TEXT NOT NULL,
  company_slug TEXT,
  title TEXT NOT NULL,
  apply_url TEXT NOT NULL,
  location TEXT,
  remote BOOLEAN,
  posted_at TIMESTAMPTZ,
  salary_min DOUBLE PRECISION,
  salary_max DOUBLE PRECISION,
  currency TEXT,
  logo_url TEXT,
  inserted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (source, external_id)
);

CREATE TABLE IF NOT EXISTS search_terms (
  id BIGSERIAL PRIMARY KEY,
  term TEXT NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS seniority_filters (
  id BIGSERIAL PRIMARY KEY,
  value TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS settings (
  id SMALLINT PRIMARY KEY CHECK (id = 1),
  scheduled BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS notifications (
  id BIGSERIAL PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL,
  inserted INT NOT NULL,
  skipped INT NOT NULL,
  read BOOLEAN NOT NULL DEFAULT false
);
`

// Postgres is the pgxpool-backed store.
type Postgres struct {
	pool *pgxpool.Pool
}

// New bootstraps the schema, ensures the settings singleton row exists,
// seeds default search terms and seniority options into empty tables, and
// returns the store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Postgres{pool: pool}

	if _, err := pool.Exec(ctx,
		`INSERT INTO settings (id, scheduled) VALUES (1, false) ON CONFLICT (id) DO NOTHING`,
	); err != nil {
		return nil, fmt.Errorf("seed settings: %w", err)
	}
	if err := s.seed(ctx, "search_terms", "term", defaultSearchTerms); err != nil {
		return nil, err
	}
	if err := s.seed(ctx, "seniority_filters", "value", allSeniorityOptions); err != nil {
		return nil, err
	}

	return s, nil
}

// seed inserts values into an empty table; a table that already has rows
// is left alone so user edits survive restarts.
func (s *Postgres) seed(ctx context.Context, table, column string, values []string) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if count > 0 {
		return nil
	}
	for _, v := range values {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO `+table+` (`+column+`) VALUES ($1) ON CONFLICT DO NOTHING`, v,
		); err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
	}
	return nil
}

// ── Postings ───────────────────────────────────────────────────────────

// InsertPosting performs the unique-constrained insert. A (source,
// external_id) constraint violation reports (false, nil) — the expected
// duplicate signal. Every other failure propagates.
func (s *Postgres) InsertPosting(ctx context.Context, p model.Posting) (bool, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO postings (
		   source, external_id, company_name, company_slug, title, apply_url,
		   location, remote, posted_at, salary_min, salary_max, currency, logo_url
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.Source, p.ExternalID, p.CompanyName, p.CompanySlug, p.Title, p.ApplyURL,
		p.Location, p.Remote, p.PostedAt, p.SalaryMin, p.SalaryMax, p.Currency, p.LogoURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert posting: %w", err)
	}
	return true, nil
}

// ListPostings returns every persisted posting, newest first.
func (s *Postgres) ListPostings(ctx context.Context) ([]model.Posting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, external_id, company_name, company_slug, title, apply_url,
		        location, remote, posted_at, salary_min, salary_max, currency, logo_url, inserted_at
		 FROM postings
		 ORDER BY inserted_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var p model.Posting
		if err := rows.Scan(
			&p.ID, &p.Source, &p.ExternalID, &p.CompanyName, &p.CompanySlug, &p.Title, &p.ApplyURL,
			&p.Location, &p.Remote, &p.PostedAt, &p.SalaryMin, &p.SalaryMax, &p.Currency, &p.LogoURL, &p.InsertedAt,
		); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// ── Search terms ───────────────────────────────────────────────────────

// SearchTerms returns the term texts in creation order, the snapshot the
// orchestrator takes at run start.
func (s *Postgres) SearchTerms(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT term FROM search_terms ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query search terms: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("scan search term: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// ListSearchTerms returns full rows for the CRUD surface.
func (s *Postgres) ListSearchTerms(ctx context.Context) ([]model.SearchTerm, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, term, created_at FROM search_terms ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query search terms: %w", err)
	}
	defer rows.Close()

	var terms []model.SearchTerm
	for rows.Next() {
		var t model.SearchTerm
		if err := rows.Scan(&t.ID, &t.Term, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// AddSearchTerm inserts a new term; a duplicate reports ErrDuplicateTerm.
func (s *Postgres) AddSearchTerm(ctx context.Context, term string) (model.SearchTerm, error) {
	var t model.SearchTerm
	err := s.pool.QueryRow(ctx,
		`INSERT INTO search_terms (term) VALUES ($1) RETURNING id, term, created_at`, term,
	).Scan(&t.ID, &t.Term, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.SearchTerm{}, ErrDuplicateTerm
		}
		return model.SearchTerm{}, fmt.Errorf("insert search term: %w", err)
	}
	return t, nil
}

// DeleteSearchTerm removes a term by id; deleting a missing id is a no-op.
func (s *Postgres) DeleteSearchTerm(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM search_terms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete search term: %w", err)
	}
	return nil
}

// SetSearchTerms replaces the whole term list atomically. Used by the
// settings surface; the CRUD surface edits terms one at a time.
func (s *Postgres) SetSearchTerms(ctx context.Context, terms []string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM search_terms`); err != nil {
			return fmt.Errorf("clear search terms: %w", err)
		}
		for _, term := range terms {
			if _, err := tx.Exec(ctx, `INSERT INTO search_terms (term) VALUES ($1)`, term); err != nil {
				return fmt.Errorf("insert search term %q: %w", term, err)
			}
		}
		return nil
	})
}

// ── Seniority filters ──────────────────────────────────────────────────

// SeniorityFilters returns the current allow-list. Read fresh by the
// getro handler on every outbound request.
func (s *Postgres) SeniorityFilters(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT value FROM seniority_filters ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query seniority filters: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan seniority filter: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// SetSeniorityFilters replaces the allow-list atomically.
func (s *Postgres) SetSeniorityFilters(ctx context.Context, values []string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM seniority_filters`); err != nil {
			return fmt.Errorf("clear seniority filters: %w", err)
		}
		for _, v := range values {
			if _, err := tx.Exec(ctx, `INSERT INTO seniority_filters (value) VALUES ($1)`, v); err != nil {
				return fmt.Errorf("insert seniority filter %q: %w", v, err)
			}
		}
		return nil
	})
}

// ── Settings ───────────────────────────────────────────────────────────

// Settings assembles the singleton settings record: the scheduled flag
// plus the current term and seniority lists.
func (s *Postgres) Settings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	if err := s.pool.QueryRow(ctx, `SELECT scheduled FROM settings WHERE id = 1`).Scan(&settings.Scheduled); err != nil {
		return model.Settings{}, fmt.Errorf("query settings: %w", err)
	}

	terms, err := s.SearchTerms(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	settings.SearchTerms = terms

	levels, err := s.SeniorityFilters(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	settings.SeniorityLevels = levels

	return settings, nil
}

// SetScheduled flips the scheduled-search flag.
func (s *Postgres) SetScheduled(ctx context.Context, scheduled bool) error {
	if _, err := s.pool.Exec(ctx, `UPDATE settings SET scheduled = $1 WHERE id = 1`, scheduled); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// ── Notifications ──────────────────────────────────────────────────────

// AddNotification persists one scheduled-run outcome.
func (s *Postgres) AddNotification(ctx context.Context, timestamp time.Time, inserted, skipped int) error {
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (created_at, inserted, skipped) VALUES ($1, $2, $3)`,
		timestamp, inserted, skipped,
	); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// TakeUnreadNotifications returns every unread notification, newest
// first, and marks them read in the same transaction so each outcome is
// surfaced exactly once.
func (s *Postgres) TakeUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id, created_at, inserted, skipped, read
			 FROM notifications
			 WHERE read = false
			 ORDER BY created_at DESC`,
		)
		if err != nil {
			return fmt.Errorf("query notifications: %w", err)
		}

		var ids []int64
		for rows.Next() {
			var n model.Notification
			if err := rows.Scan(&n.ID, &n.Timestamp, &n.Inserted, &n.Skipped, &n.Read); err != nil {
				rows.Close()
				return fmt.Errorf("scan notification: %w", err)
			}
			notifications = append(notifications, n)
			ids = append(ids, n.ID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(ids) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE notifications SET read = true WHERE id = ANY($1)`, ids); err != nil {
			return fmt.Errorf("mark notifications read: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
