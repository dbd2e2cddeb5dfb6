package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "postings_source_external_id_key"},
			want: true,
		},
		{
			name: "wrapped unique violation",
			err:  fmt.Errorf("insert posting: %w", &pgconn.PgError{Code: "23505"}),
			want: true,
		},
		{
			name: "other pg error",
			err:  &pgconn.PgError{Code: "23502"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSeedLists(t *testing.T) {
	if len(defaultSearchTerms) == 0 {
		t.Fatal("default search terms must not be empty")
	}
	if len(allSeniorityOptions) == 0 {
		t.Fatal("seniority options must not be empty")
	}

	seen := make(map[string]bool)
	for _, term := range defaultSearchTerms {
		if seen[term] {
			t.Errorf("duplicate default search term %q would hit the unique constraint on seed", term)
		}
		seen[term] = true
	}

	// The getro defaults must be expressible by the seeded option set.
	options := make(map[string]bool)
	for _, v := range allSeniorityOptions {
		options[v] = true
	}
	for _, want := range []string{"vice_president", "cxo"} {
		if !options[want] {
			t.Errorf("seniority option %q missing from seed list", want)
		}
	}
}
