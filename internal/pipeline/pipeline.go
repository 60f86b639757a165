// Package pipeline wires parsing, detection, verification, and reporting into
// the end-to-end paper check. The pipeline owns collaborator construction;
// callers hand it file paths or raw text and get back a complete report.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/papercheck/papercheck/internal/bibtex"
	"github.com/papercheck/papercheck/internal/cache"
	"github.com/papercheck/papercheck/internal/detect"
	"github.com/papercheck/papercheck/internal/llm"
	"github.com/papercheck/papercheck/internal/markup"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/report"
	"github.com/papercheck/papercheck/internal/search"
	"github.com/papercheck/papercheck/internal/verify"
)

// Pipeline orchestrates the complete check.
type Pipeline struct {
	cfg        *model.Config
	detectors  []detect.Detector
	verifier   *verify.Verifier
	summarizer *llm.Summarizer // nil when no provider is configured
	missingKey bool            // serper configured without an API key
}

// New builds a pipeline from validated configuration. Configuration problems
// are fatal here; nothing later in the run aborts the report.
func New(cfg *model.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	p := &Pipeline{
		cfg:       cfg,
		detectors: detect.Build(cfg.Detectors),
	}

	if cfg.Verify.Enabled {
		provider, err := search.NewProvider(cfg.Search)
		if err != nil {
			return nil, fmt.Errorf("configuration: %w", err)
		}
		p.missingKey = cfg.Search.Provider == "serper" && cfg.Search.APIKey == ""

		var store cache.Cache
		if cfg.Cache.Enabled {
			store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		}
		p.verifier = verify.New(provider, store, cfg.Verify, cfg.Search.MaxResults, 0)
	}

	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			log.Warn().Err(err).Msg("advisory summarizer disabled")
		} else {
			p.summarizer = s
		}
	}

	return p, nil
}

// Input is one check request with already-loaded text.
type Input struct {
	Subject      string
	Document     string
	Bibliography string
	HasBib       bool
}

// Check runs the full verification over in-memory inputs. It always returns
// a report: detector and lookup problems become findings and verdicts, never
// errors.
func (p *Pipeline) Check(ctx context.Context, in Input) *model.Report {
	doc := markup.Parse(in.Subject, in.Document)

	var bib *model.Bibliography
	if in.HasBib {
		bib = bibtex.Parse(in.Bibliography)
	}

	var (
		findings   []model.Finding
		verdicts   []model.Verdict
		stats      model.VerificationStats
		incomplete bool
	)

	skipNote := p.verifySkipNote(in.HasBib)

	// Detection and verification are independent; run them side by side.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		findings = detect.Run(doc, bib, p.detectors)
	}()
	if skipNote == "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries := bib.ActiveEntries(doc.ActiveKeys())
			verdicts, stats, incomplete = p.verifier.VerifyEntries(ctx, entries)
		}()
	}
	wg.Wait()

	anomalies := doc.Anomalies
	if bib != nil {
		anomalies = append(anomalies, bib.Anomalies...)
	}

	rep := report.Build(report.Options{
		Subject:     in.Subject,
		Findings:    findings,
		Anomalies:   anomalies,
		Verdicts:    verdicts,
		Stats:       stats,
		Incomplete:  incomplete,
		Enabled:     detect.Enabled(p.cfg.Detectors),
		BibSkipNote: skipNote,
	})

	p.attachAdvisory(ctx, rep)
	return rep
}

// CheckFiles loads the paper and bibliography from disk and runs Check. An
// empty bibPath triggers sibling discovery; finding nothing is not an error.
func (p *Pipeline) CheckFiles(ctx context.Context, paperPath, bibPath string) (*model.Report, error) {
	paper, err := LoadDocument(paperPath)
	if err != nil {
		return nil, err
	}

	if bibPath == "" {
		if found := FindBibliography(paperPath); found != "" {
			log.Debug().Str("path", found).Msg("discovered bibliography")
			bibPath = found
		}
	}

	in := Input{Subject: paper.Subject, Document: paper.Text}
	if bibPath != "" {
		bib, err := LoadBibliography(bibPath)
		if err != nil {
			return nil, err
		}
		in.Bibliography = bib.Text
		in.HasBib = true
	}

	return p.Check(ctx, in), nil
}

// CheckBibliography verifies a bibliography on its own; the content detectors
// are reported as not applicable. Every entry counts as active unless a
// paperPath is given, in which case only entries that paper cites are
// verified.
func (p *Pipeline) CheckBibliography(ctx context.Context, bibPath, paperPath string) (*model.Report, error) {
	loaded, err := LoadBibliography(bibPath)
	if err != nil {
		return nil, err
	}
	bib := bibtex.Parse(loaded.Text)

	entries := bib.Entries
	if paperPath != "" {
		paper, err := LoadDocument(paperPath)
		if err != nil {
			return nil, err
		}
		doc := markup.Parse(paper.Subject, paper.Text)
		entries = bib.ActiveEntries(doc.ActiveKeys())
	}

	var (
		verdicts   []model.Verdict
		stats      model.VerificationStats
		incomplete bool
	)
	skipNote := p.verifySkipNote(true)
	if skipNote == "" {
		verdicts, stats, incomplete = p.verifier.VerifyEntries(ctx, entries)
	}

	rep := report.Build(report.Options{
		Subject:          loaded.Subject,
		Anomalies:        bib.Anomalies,
		Verdicts:         verdicts,
		Stats:            stats,
		Incomplete:       incomplete,
		BibSkipNote:      skipNote,
		DetectorSkipNote: "not applicable to a bibliography-only check",
	})

	p.attachAdvisory(ctx, rep)
	return rep, nil
}

// Render serializes a report in the configured output format.
func (p *Pipeline) Render(rep *model.Report) ([]byte, error) {
	if p.cfg.Output.Format == "json" {
		return report.RenderJSON(rep)
	}
	md := report.RenderMarkdown(rep, report.RenderOptions{Footer: p.cfg.Output.IncludeFooter})
	return []byte(md), nil
}

// verifySkipNote returns the reason bibliography verification cannot run, or
// "" when it can.
func (p *Pipeline) verifySkipNote(hasBib bool) string {
	switch {
	case !hasBib:
		return "no bibliography supplied"
	case !p.cfg.Verify.Enabled:
		return "verification disabled"
	case p.missingKey:
		return "no search API key configured; set PAPERCHECK_SEARCH_API_KEY or search.api_key"
	default:
		return ""
	}
}

// attachAdvisory adds the optional LLM summary. It runs after aggregation and
// can only ever annotate: a summarizer failure is logged and dropped.
func (p *Pipeline) attachAdvisory(ctx context.Context, rep *model.Report) {
	if p.summarizer == nil {
		return
	}
	adv, err := p.summarizer.Summarize(ctx, rep)
	if err != nil {
		log.Warn().Err(err).Msg("advisory summary failed")
		return
	}
	rep.Advisory = adv
}
