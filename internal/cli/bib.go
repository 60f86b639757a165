package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/papercheck/papercheck/internal/pipeline"
	"github.com/spf13/cobra"
)

var bibPaper string

// bibCmd represents the bib command
var bibCmd = &cobra.Command{
	Use:   "bib <references.bib>",
	Short: "Verify a bibliography on its own",
	Long: `Bib verifies the authenticity of a bibliography without checking a
manuscript. Every entry is searched on the public web and graded
verified, ambiguous or unverified.

With --paper, only the entries the paper actually cites are verified.

Example:
  papercheck bib references.bib
  papercheck bib references.bib --paper paper.md --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBib,
}

func init() {
	rootCmd.AddCommand(bibCmd)

	bibCmd.Flags().StringVar(&bibPaper, "paper", "", "restrict verification to entries cited by this paper")
	bibCmd.Flags().StringVar(&outFormat, "format", "", "report format: markdown or json (default: configured format)")
	bibCmd.Flags().StringVarP(&outPath, "output", "o", "", "write the report to a file instead of stdout")
	bibCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	bibCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache (force fresh searches)")
	bibCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall verification timeout")
}

func runBib(cmd *cobra.Command, args []string) error {
	bibPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Verify.Enabled = true
	if outFormat != "" {
		cfg.Output.Format = outFormat
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	cfg.Output.IncludeFooter = cfg.Output.IncludeFooter && !noFooter

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying bibliography: %s\n", bibPath)
		if bibPaper != "" {
			fmt.Fprintf(os.Stderr, "Restricting to entries cited by: %s\n", bibPaper)
		}
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	rep, err := p.CheckBibliography(ctx, bibPath, bibPaper)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Verified %d/%d entries\n", rep.Stats.Verified, rep.Stats.Active)
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
