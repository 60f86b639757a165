package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/papercheck/papercheck/internal/model"
)

// mockChecker implements Checker.
type mockChecker struct {
	shouldError bool
}

func (m *mockChecker) CheckFiles(ctx context.Context, paperPath, bibPath string) (*model.Report, error) {
	time.Sleep(10 * time.Millisecond)
	if m.shouldError {
		return nil, errors.New("check error")
	}
	return &model.Report{Subject: paperPath}, nil
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessorProcessEntries(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, 2)

	entries := []Entry{
		{PaperPath: "a.md"},
		{PaperPath: "b.md", BibPath: "b.bib"},
		{PaperPath: "c.md"},
	}

	results := processor.ProcessEntries(context.Background(), entries)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Entry.PaperPath, res.Error)
		}
		if res.Report == nil {
			t.Errorf("expected report for %s", res.Entry.PaperPath)
		}
	}
}

func TestBatchProcessorPropagatesErrors(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{shouldError: true}, 2)

	results := processor.ProcessEntries(context.Background(), []Entry{{PaperPath: "a.md"}})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].GetError() == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessorEmpty(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, 2)
	results := processor.ProcessEntries(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadEntriesFromFile(t *testing.T) {
	path := writeList(t, `paper-a.md
# a comment
paper-b.md refs/b.bib

paper-c.md   `)

	entries, err := ReadEntriesFromFile(path)
	if err != nil {
		t.Fatalf("ReadEntriesFromFile failed: %v", err)
	}

	expected := []Entry{
		{PaperPath: "paper-a.md"},
		{PaperPath: "paper-b.md", BibPath: "refs/b.bib"},
		{PaperPath: "paper-c.md"},
	}
	if len(entries) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(entries))
	}
	for i, e := range entries {
		if e != expected[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, expected[i], e)
		}
	}
}

func TestReadEntriesFromFileDeduplicates(t *testing.T) {
	path := writeList(t, "paper.md\npaper.md other.bib\n")

	entries, err := ReadEntriesFromFile(path)
	if err != nil {
		t.Fatalf("ReadEntriesFromFile failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after deduplication, got %d", len(entries))
	}
	if entries[0].BibPath != "" {
		t.Errorf("expected the first occurrence to win, got bib %q", entries[0].BibPath)
	}
}

func TestReadEntriesFromFileTooManyFields(t *testing.T) {
	path := writeList(t, "paper.md refs.bib extra.txt\n")

	if _, err := ReadEntriesFromFile(path); err == nil {
		t.Error("expected error for a three-field line, got nil")
	}
}

func TestReadEntriesFromFileNonExistent(t *testing.T) {
	if _, err := ReadEntriesFromFile("no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessorProcessFile(t *testing.T) {
	path := writeList(t, "a.md\nb.md b.bib\n# skip\n\nc.md\n")

	processor := NewBatchProcessor(&mockChecker{}, 2)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessorProcessFileNonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, 2)
	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
