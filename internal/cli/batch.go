package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/pipeline"
	"github.com/papercheck/papercheck/internal/report"
	"github.com/papercheck/papercheck/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// noCache, noFooter, noVerify, onlyChecks are defined in check.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list.txt>",
	Short: "Check multiple papers from a list in parallel",
	Long: `Batch checks many papers concurrently:
- Read papers from a list file, one per line ("paper.md" or "paper.md refs.bib")
- Blank lines and lines starting with # are skipped
- Process papers in parallel with a configurable worker count
- Write a Markdown and a JSON report per paper into the output directory

Example:
  papercheck batch papers.txt
  papercheck batch papers.txt --concurrency 8 --output-dir ./reports
  papercheck batch papers.txt --no-verify --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./papercheck-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from the check command
	batchCmd.Flags().StringSliceVar(&onlyChecks, "only", nil, "run only the named checks (comma-separated category names)")
	batchCmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip bibliography authenticity verification")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache (force fresh searches)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "append an advisory LLM summary to each report")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider default)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	listPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Papercheck Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", listPath)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := checkConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "\n")
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Checking papers with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, listPath)
	if err != nil {
		return fmt.Errorf("process list: %w", err)
	}

	passCount := 0
	failCount := 0
	errorCount := 0

	for _, result := range results {
		if result.Error != nil {
			errorCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Entry.PaperPath, result.Error)
			continue
		}

		rep := result.Report
		slug := sanitizeFilename(rep.Subject)
		if err := writeBatchReports(rep, slug, cfg.Output.IncludeFooter); err != nil {
			errorCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Entry.PaperPath, err)
			continue
		}

		if rep.Summary.Pass {
			passCount++
			fmt.Fprintf(os.Stderr, "✓ %s: PASS (%d warnings)\n", rep.Subject, rep.Summary.Warnings)
		} else {
			failCount++
			fmt.Fprintf(os.Stderr, "✗ %s: FAIL (%d errors, %d warnings)\n", rep.Subject, rep.Summary.Errors, rep.Summary.Warnings)
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d papers\n", len(results))
	fmt.Fprintf(os.Stderr, "  Passed:    %d\n", passCount)
	fmt.Fprintf(os.Stderr, "  Failed:    %d\n", failCount)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errorCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failCount+errorCount > 0 {
		return ErrChecksFailed
	}
	return nil
}

// writeBatchReports writes the Markdown and JSON renderings of one report
// into the output directory.
func writeBatchReports(rep *model.Report, slug string, footer bool) error {
	jsonData, err := report.RenderJSON(rep)
	if err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, slug+".json"), jsonData, 0644); err != nil {
		return fmt.Errorf("write JSON report: %w", err)
	}

	md := report.RenderMarkdown(rep, report.RenderOptions{Footer: footer})
	if err := os.WriteFile(filepath.Join(outputDir, slug+".md"), []byte(md), 0644); err != nil {
		return fmt.Errorf("write Markdown report: %w", err)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a subject for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}
