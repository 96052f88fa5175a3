package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/developer-hhiotsystems/termbase/internal/logger"
	"github.com/developer-hhiotsystems/termbase/internal/model"
	"github.com/developer-hhiotsystems/termbase/internal/pipeline"
	"github.com/developer-hhiotsystems/termbase/internal/store"
	"github.com/developer-hhiotsystems/termbase/internal/worker"
)

var (
	batchLang        string
	batchClass       string
	batchConcurrency int
	batchJSON        string
	batchMD          string
	batchNoFooter    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Process multiple documents from a manifest file",
	Long: `Batch processes all documents listed in a manifest file concurrently.

Each manifest line names a document path with optional language and
provenance class columns:

  docs/manual.txt
  docs/handbuch.txt de
  docs/vendor-spec.txt en vendor

Empty lines and # comments are skipped.

Example:
  termbase batch manuals.txt --concurrency 8 --json report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchLang, "lang", "en", "default language for manifest lines without one")
	batchCmd.Flags().StringVar(&batchClass, "class", string(model.ProvenanceInternal), "default provenance class")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel documents (default: configured document workers)")
	batchCmd.Flags().StringVar(&batchJSON, "json", "", "output JSON report path")
	batchCmd.Flags().StringVar(&batchMD, "md", "", "output Markdown report path")
	batchCmd.Flags().BoolVar(&batchNoFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.IncludeFooter = !batchNoFooter
	cfg.LLM.Provider = "" // batch runs stay summary-free

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	concurrency := batchConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.DocumentWorkers
	}

	p := pipeline.NewPipeline(cfg, log)
	processor := worker.NewBatchProcessor(p, concurrency)

	started := time.Now().UTC()
	ctx := logger.ContextWithLogger(context.Background(), log)
	st, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open term database: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := seedPipeline(ctx, st, p); err != nil {
		return err
	}

	results, err := processor.ProcessManifest(ctx, args[0], batchLang, model.ProvenanceClass(batchClass))
	if err != nil {
		return err
	}

	var summaries []model.DocumentSummary
	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", r.Source.Path, r.Error)
			continue
		}
		summaries = append(summaries, r.Summary)
	}

	report := p.BuildReport(started, summaries)

	if err := st.SaveTerms(ctx, report.Terms); err != nil {
		return fmt.Errorf("save terms: %w", err)
	}

	if err := renderReport(cfg, report, batchJSON, batchMD); err != nil {
		return err
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(results))
	}
	return nil
}
