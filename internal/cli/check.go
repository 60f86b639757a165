package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	bibFile       string
	onlyChecks    []string
	minReferences int
	outFormat     string
	outPath       string
	noCache       bool
	noFooter      bool
	noVerify      bool
	checkTimeout  time.Duration
	llmEnabled    bool
	llmProvider   string
	llmModel      string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <paper.md>",
	Short: "Check a paper and verify its bibliography",
	Long: `Check runs every detector over a paper manuscript:
- Score paragraph density and flag sparse content
- Count templated phrases and stereotyped structure
- Find unrendered formulas, malformed citations and broken image links
- Flag leftover code fences and thin bibliographies
- Verify that each cited work can be found by web search

The bibliography is taken from --bib, or discovered next to the paper
(<paper>.bib first, then references.bib).

Example:
  papercheck check paper.md
  papercheck check paper.md --bib refs.bib --format json --output report.json
  papercheck check paper.md --only formula,citation,image
  papercheck check paper.md --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Input flags
	checkCmd.Flags().StringVar(&bibFile, "bib", "", "bibliography file (default: discovered next to the paper)")
	checkCmd.Flags().StringSliceVar(&onlyChecks, "only", nil, "run only the named checks (comma-separated category names)")
	checkCmd.Flags().IntVar(&minReferences, "min-references", 0, "minimum distinct cited references (0 = configured default)")

	// Output flags
	checkCmd.Flags().StringVar(&outFormat, "format", "", "report format: markdown or json (default: configured format)")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "write the report to a file instead of stdout")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Verification flags
	checkCmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip bibliography authenticity verification")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache (force fresh searches)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")

	// LLM flags
	checkCmd.Flags().BoolVar(&llmEnabled, "llm", false, "append an advisory LLM summary to the report")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider default)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	paperPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg, err := checkConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", paperPath)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", checkTimeout)
		fmt.Fprintf(os.Stderr, "Verify: %v\n", cfg.Verify.Enabled)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	rep, err := p.CheckFiles(ctx, paperPath, bibFile)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d findings across %d categories\n", rep.Summary.TotalFindings, len(rep.Categories))
		if rep.Stats.Active > 0 {
			fmt.Fprintf(os.Stderr, "✓ Verified %d/%d bibliography entries\n", rep.Stats.Verified, rep.Stats.Active)
		}
		if rep.Advisory != nil {
			fmt.Fprintf(os.Stderr, "✓ Generated advisory summary using %s/%s\n", rep.Advisory.Provider, rep.Advisory.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	out, err := p.Render(rep)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if err := writeReport(out, outPath); err != nil {
		return err
	}

	if !rep.Summary.Pass {
		return ErrChecksFailed
	}
	return nil
}

// checkConfig layers the check command's flags over the loaded configuration.
func checkConfig() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if len(onlyChecks) > 0 {
		only, err := cfg.WithOnly(onlyChecks)
		if err != nil {
			return nil, err
		}
		*cfg = only
	}
	if minReferences > 0 {
		cfg.Detectors.ReferenceCount.Minimum = minReferences
	}
	if outFormat != "" {
		cfg.Output.Format = outFormat
	}
	if noVerify {
		cfg.Verify.Enabled = false
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	cfg.Output.IncludeFooter = cfg.Output.IncludeFooter && !noFooter

	if err := applyLLMFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLLMFlags enables the advisory summarizer when --llm is set. API keys
// come from the environment, never from flags.
func applyLLMFlags(cfg *model.Config) error {
	if !llmEnabled {
		return nil
	}
	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	switch llmProvider {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("ollama requires --llm-model (e.g. llama3.1:8b)")
		}
	}
	return nil
}

// writeReport sends a rendered report to a file or stdout.
func writeReport(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote report: %s\n", path)
	}
	return nil
}
