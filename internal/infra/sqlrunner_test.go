package infra

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		marker  string
		body    string
		wantErr bool
	}{
		{
			name:   "valid",
			query:  "--sql 7f3c2e91-5b1d-4c8a-9e64-2d0b8a51c3f7\nselect 1;",
			marker: "7f3c2e91-5b1d-4c8a-9e64-2d0b8a51c3f7",
			body:   "select 1;",
		},
		{
			name:   "leading whitespace",
			query:  "\n  --sql 7f3c2e91-5b1d-4c8a-9e64-2d0b8a51c3f7\nselect 1\nfrom t;",
			marker: "7f3c2e91-5b1d-4c8a-9e64-2d0b8a51c3f7",
			body:   "select 1\nfrom t;",
		},
		{name: "missing marker", query: "select 1;", wantErr: true},
		{name: "bad uuid", query: "--sql not-a-uuid\nselect 1;", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, body, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker returned error: %v", err)
			}
			if marker != tc.marker || body != tc.body {
				t.Fatalf("got (%q, %q) want (%q, %q)", marker, body, tc.marker, tc.body)
			}
		})
	}
}

func TestSQLRunnerRejectsUnmarkedQueries(t *testing.T) {
	runner := NewSQLRunner(nil, zerolog.Nop())
	if err := runner.QueryRow(context.Background(), "select 1").Scan(); err == nil {
		t.Fatalf("expected marker error")
	}
	if _, err := runner.Query(context.Background(), "select 1"); err == nil {
		t.Fatalf("expected marker error")
	}
}
