package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintPathsFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package q\n\nconst QOne = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n\nconst QBare = `select 2;`\n")
	writeGo(t, dir, "b.go", "package q\n\nconst QTwo = `--sql 11111111-2222-4333-8444-555555555555\nselect 3;`\n\nconst Label = \"not sql at all\"\n")

	violations, err := lintPaths([]string{dir})
	if err != nil {
		t.Fatalf("lintPaths returned error: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %+v", violations)
	}
	var messages []string
	for _, v := range violations {
		messages = append(messages, v.name+": "+v.message)
	}
	joined := strings.Join(messages, "\n")
	if !strings.Contains(joined, "QBare: missing") || !strings.Contains(joined, "QTwo: marker already used by QOne") {
		t.Fatalf("unexpected violations:\n%s", joined)
	}
}

func TestRepositoryQueriesAreMarked(t *testing.T) {
	violations, err := lintPaths([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lintPaths returned error: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
}
