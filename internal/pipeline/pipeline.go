// Package pipeline orchestrates the extraction run: normalize page text,
// generate candidates, locate definitions, validate, aggregate.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/developer-hhiotsystems/termbase/internal/aggregate"
	"github.com/developer-hhiotsystems/termbase/internal/extract"
	"github.com/developer-hhiotsystems/termbase/internal/llm"
	"github.com/developer-hhiotsystems/termbase/internal/model"
	"github.com/developer-hhiotsystems/termbase/internal/normalize"
	"github.com/developer-hhiotsystems/termbase/internal/validate"
)

// Pipeline wires the extraction stages. The aggregator is the only stage
// with shared mutable state; everything else is a pure function over page
// text, so documents process in parallel without coordination.
type Pipeline struct {
	normalizer *normalize.Normalizer
	registry   *extract.Registry
	locator    *extract.Locator
	engine     *validate.Engine
	aggregator *aggregate.Aggregator
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	config     *model.Config
	logger     *zap.Logger

	languages map[string]bool
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			logger.Warn("llm summarizer disabled", zap.Error(err))
		} else {
			summarizer = s
		}
	}

	languages := make(map[string]bool, len(cfg.Extraction.Languages))
	for _, l := range cfg.Extraction.Languages {
		languages[l] = true
	}

	return &Pipeline{
		normalizer: normalize.New(),
		registry:   extract.NewRegistry(cfg.Extraction.Strategy),
		locator:    extract.NewLocator(),
		engine:     validate.NewEngine(cfg),
		aggregator: aggregate.New(cfg, logger),
		summarizer: summarizer,
		config:     cfg,
		logger:     logger,
		languages:  languages,
	}
}

// ProcessDocument runs the extraction stages over every page of one
// document and merges accepted terms into the aggregator.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc model.Document) (model.DocumentSummary, error) {
	summary := model.DocumentSummary{Provenance: doc.Provenance}
	if !p.languages[doc.Provenance.Language] {
		return summary, fmt.Errorf("language %q not configured (have %v)", doc.Provenance.Language, p.config.Extraction.Languages)
	}

	strategy := p.registry.ForLanguage(doc.Provenance.Language)
	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Pages++

		text, fixes := p.normalizer.Normalize(page.Text)
		for _, f := range fixes {
			if f.Kind == normalize.FixUnparseable {
				summary.Flagged++
			}
		}

		ref := model.PageRef{DocumentID: doc.Provenance.DocumentID, Page: page.Page}
		candidates := strategy.Candidates(text, ref, doc.Provenance.Language)
		summary.Candidates += len(candidates)

		for _, cand := range candidates {
			verdict := p.Ingest(cand, doc.Provenance, text)
			if verdict.Accepted {
				summary.Accepted++
			} else {
				summary.Rejected++
			}
		}
	}

	p.logger.Debug("document processed",
		zap.String("document", doc.Provenance.DocumentID),
		zap.String("language", doc.Provenance.Language),
		zap.Int("pages", summary.Pages),
		zap.Int("candidates", summary.Candidates),
		zap.Int("accepted", summary.Accepted))
	return summary, nil
}

// Ingest validates one candidate against the normalized page text it came
// from. Accepted candidates are upserted into the aggregator together
// with their located definitions; rejected ones are recorded for the
// audit report. The verdict is returned either way.
func (p *Pipeline) Ingest(cand model.CandidateTerm, prov model.Provenance, pageText string) model.ValidationVerdict {
	verdict := p.engine.Validate(cand)
	if !verdict.Accepted {
		p.aggregator.RecordRejection(verdict, cand.Page)
		return verdict
	}

	defs := p.locator.Locate(cand.Text, pageText, cand.Page, cand.Language)
	p.aggregator.Upsert(aggregate.Occurrence{
		Verdict:     verdict,
		Definitions: defs,
		Provenance:  prov,
		Page:        cand.Page,
		Excerpt:     excerptFor(cand, defs),
	})
	return verdict
}

// ProcessDocuments runs all documents through the pipeline with bounded
// parallelism and assembles the run report.
func (p *Pipeline) ProcessDocuments(ctx context.Context, docs []model.Document) (*model.RunReport, error) {
	started := time.Now().UTC()
	summaries := make([]model.DocumentSummary, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	workers := p.config.Concurrency.DocumentWorkers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range docs {
		g.Go(func() error {
			s, err := p.ProcessDocument(gctx, docs[i])
			if err != nil {
				return fmt.Errorf("document %s: %w", docs[i].Provenance.DocumentID, err)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := p.BuildReport(started, summaries)
	p.ApplySummary(ctx, report)
	return report, nil
}

// ApplySummary attaches the optional LLM narrative to the report. It runs
// after all counting and never affects it; failures only log.
func (p *Pipeline) ApplySummary(ctx context.Context, report *model.RunReport) {
	if p.summarizer == nil || !p.summarizer.IsEnabled() {
		return
	}
	summary, err := p.summarizer.Summarize(ctx, report)
	if err != nil {
		p.logger.Warn("llm summary failed", zap.Error(err))
		return
	}
	report.Summary = summary
}

// BuildReport assembles a run report from per-document summaries and the
// current aggregate state.
func (p *Pipeline) BuildReport(started time.Time, summaries []model.DocumentSummary) *model.RunReport {
	report := &model.RunReport{
		StartedAt:          started,
		FinishedAt:         time.Now().UTC(),
		Documents:          summaries,
		RejectionsByReason: p.aggregator.Rejections().CountByReason(),
		Terms:              p.aggregator.Snapshot(),
	}
	for _, s := range summaries {
		report.TotalPages += s.Pages
		report.Candidates += s.Candidates
		report.Accepted += s.Accepted
		report.Rejected += s.Rejected
	}
	return report
}

// Seed preloads the aggregator with previously persisted glossary state,
// so reruns increment frequencies and append pages instead of replacing
// the durable record.
func (p *Pipeline) Seed(terms []model.AggregatedTerm) {
	p.aggregator.Seed(terms)
}

// Terms returns the aggregated state accumulated so far.
func (p *Pipeline) Terms() []model.AggregatedTerm {
	return p.aggregator.Snapshot()
}

// Rejections exposes the transient rejection records of the run.
func (p *Pipeline) Rejections() []model.RejectionRecord {
	return p.aggregator.Rejections().List()
}

// excerptFor picks the context excerpt stored with an occurrence: the
// surrounding sentence when the locator found one, the surface text
// otherwise.
func excerptFor(cand model.CandidateTerm, defs []model.DefinitionCandidate) string {
	for _, d := range defs {
		if d.Kind == model.PatternContext {
			return d.Sentence
		}
	}
	if len(defs) > 0 {
		return defs[0].Sentence
	}
	return cand.Text
}
