package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Expected no error writing fixture, got %v", err)
	}
	return path
}

func TestFileProvider_Search(t *testing.T) {
	path := writeFixture(t, `[
		{"title": "Deep Residual Learning for Image Recognition", "url": "https://example.org/resnet", "snippet": "Deeper neural networks"},
		{"title": "Unrelated Cooking Blog", "url": "https://example.org/food", "snippet": "Pasta recipes"},
		{"title": "Residual Networks Revisited", "url": "https://example.org/resnet2", "snippet": "A follow-up study"}
	]`)

	p := &FileProvider{Path: path}
	results, err := p.Search(context.Background(), "residual learning", 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 matching results, got %d: %v", len(results), results)
	}
	if results[0].Title != "Deep Residual Learning for Image Recognition" {
		t.Errorf("Expected file order preserved, got %q first", results[0].Title)
	}
	if results[0].Source != "file" {
		t.Errorf("Expected file source, got %q", results[0].Source)
	}
}

func TestFileProvider_LimitApplied(t *testing.T) {
	path := writeFixture(t, `[
		{"title": "Paper One", "url": "u1", "snippet": "shared topic"},
		{"title": "Paper Two", "url": "u2", "snippet": "shared topic"},
		{"title": "Paper Three", "url": "u3", "snippet": "shared topic"}
	]`)

	p := &FileProvider{Path: path}
	results, err := p.Search(context.Background(), "shared", 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}
}

func TestFileProvider_NoMatch(t *testing.T) {
	path := writeFixture(t, `[{"title": "Quantum Entanglement Studies", "url": "u", "snippet": "physics"}]`)

	p := &FileProvider{Path: path}
	results, err := p.Search(context.Background(), "medieval poetry", 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no matches, got %v", results)
	}
}

func TestFileProvider_UntitledEntriesSkipped(t *testing.T) {
	path := writeFixture(t, `[
		{"title": "", "url": "u1", "snippet": "topic"},
		{"title": "Titled Paper", "url": "u2", "snippet": "topic"}
	]`)

	p := &FileProvider{Path: path}
	results, err := p.Search(context.Background(), "topic", 5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 1 || results[0].Title != "Titled Paper" {
		t.Errorf("Expected only the titled entry, got %v", results)
	}
}

func TestFileProvider_MissingFile(t *testing.T) {
	p := &FileProvider{Path: filepath.Join(t.TempDir(), "absent.json")}

	if _, err := p.Search(context.Background(), "anything", 3); err == nil {
		t.Error("Expected an error for a missing fixture")
	}
}

func TestFileProvider_InvalidJSON(t *testing.T) {
	path := writeFixture(t, "not json")

	p := &FileProvider{Path: path}
	_, err := p.Search(context.Background(), "anything", 3)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Expected ErrInvalidResponse, got %v", err)
	}
}
