package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

// Checker runs one paper check. The pipeline satisfies this.
type Checker interface {
	CheckFiles(ctx context.Context, paperPath, bibPath string) (*model.Report, error)
}

// Entry is one line of a batch list: a paper and its optional bibliography.
type Entry struct {
	PaperPath string
	BibPath   string
}

// CheckJob checks one paper.
type CheckJob struct {
	Entry   Entry
	Checker Checker
}

// Execute runs the check.
func (j *CheckJob) Execute(ctx context.Context) Result {
	report, err := j.Checker.CheckFiles(ctx, j.Entry.PaperPath, j.Entry.BibPath)
	return &CheckResult{
		Entry:  j.Entry,
		Report: report,
		Error:  err,
	}
}

// CheckResult is the outcome of one paper check.
type CheckResult struct {
	Entry  Entry
	Report *model.Report
	Error  error
}

// GetError returns the check error, nil when a report was produced.
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many papers concurrently.
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessEntries checks all entries and returns results in completion order.
func (b *BatchProcessor) ProcessEntries(ctx context.Context, entries []Entry) []*CheckResult {
	if len(entries) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Caller cancellation shuts the pool down so queued jobs stop being
	// picked up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, entry := range entries {
		pool.Submit(&CheckJob{Entry: entry, Checker: b.checker})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(results))
	for i, result := range results {
		checkResults[i] = result.(*CheckResult)
	}
	return checkResults
}

// ProcessFile reads a batch list and checks every paper in it.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*CheckResult, error) {
	entries, err := ReadEntriesFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read batch list: %w", err)
	}
	return b.ProcessEntries(ctx, entries), nil
}

// ReadEntriesFromFile parses a batch list: one paper per line, optionally
// followed by its bibliography path, whitespace separated. Blank lines and
// lines starting with # are skipped; duplicate paper paths keep the first
// occurrence.
func ReadEntriesFromFile(listPath string) ([]Entry, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []Entry
	seen := make(map[string]bool)
	lineNo := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected \"paper [bibliography]\", got %d fields", lineNo, len(fields))
		}

		entry := Entry{PaperPath: fields[0]}
		if len(fields) == 2 {
			entry.BibPath = fields[1]
		}

		if !seen[entry.PaperPath] {
			seen[entry.PaperPath] = true
			entries = append(entries, entry)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return entries, nil
}
