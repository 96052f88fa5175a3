package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/developer-hhiotsystems/termbase/internal/logger"
	"github.com/developer-hhiotsystems/termbase/internal/model"
	"github.com/developer-hhiotsystems/termbase/internal/pipeline"
	"github.com/developer-hhiotsystems/termbase/internal/store"
	"github.com/developer-hhiotsystems/termbase/internal/worker"
)

var (
	ingestLang  string
	ingestClass string
	ingestDocID string
	outJSON     string
	outMD       string
	noFooter    bool
	llmEnabled  bool
	llmModel    string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Extract and validate terminology from document text files",
	Long: `Ingest runs extracted document text through the full pipeline:
- Repair rendering artifacts (doubled characters, letter spacing, encoding markers)
- Generate candidate terms per language
- Locate definition sentences
- Validate candidates against the ordered rule set
- Aggregate accepted terms into the durable glossary

Input files are plain text with form feeds as page breaks, the output
convention of pdftotext.

Example:
  termbase ingest docs/manual.txt --lang en
  termbase ingest docs/handbuch.txt --lang de --class vendor --json report.json
  termbase ingest docs/manual.txt --llm --llm-model gpt-4o-mini`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestLang, "lang", "en", "document language tag")
	ingestCmd.Flags().StringVar(&ingestClass, "class", string(model.ProvenanceInternal), "provenance class (internal, vendor, standard, ...)")
	ingestCmd.Flags().StringVar(&ingestDocID, "doc-id", "", "document identifier (default: file name, single file only)")

	ingestCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path")
	ingestCmd.Flags().StringVar(&outMD, "md", "", "output Markdown report path")
	ingestCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	ingestCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM run summary")
	ingestCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestDocID != "" && len(args) > 1 {
		return fmt.Errorf("--doc-id applies to a single file, got %d", len(args))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.IncludeFooter = !noFooter
	if llmEnabled {
		cfg.LLM.Provider = "openai"
		cfg.LLM.Model = llmModel
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	} else {
		cfg.LLM.Provider = ""
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var docs []model.Document
	for _, path := range args {
		doc, err := worker.LoadDocument(worker.DocumentSource{
			Path:     path,
			Language: ingestLang,
			Class:    model.ProvenanceClass(ingestClass),
		})
		if err != nil {
			return err
		}
		if ingestDocID != "" {
			doc.Provenance.DocumentID = ingestDocID
			for i := range doc.Pages {
				doc.Pages[i].DocumentID = ingestDocID
			}
		}
		docs = append(docs, doc)
	}

	p := pipeline.NewPipeline(cfg, log)

	ctx := logger.ContextWithLogger(context.Background(), log)
	st, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open term database: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := seedPipeline(ctx, st, p); err != nil {
		return err
	}

	report, err := p.ProcessDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if err := st.SaveTerms(ctx, report.Terms); err != nil {
		return fmt.Errorf("save terms: %w", err)
	}

	return renderReport(cfg, report, outJSON, outMD)
}

// seedPipeline preloads the durable glossary so a rerun merges into prior
// state (frequency increments, page appends) instead of replacing it.
func seedPipeline(ctx context.Context, st *store.Store, p *pipeline.Pipeline) error {
	terms, err := st.LoadTerms(ctx)
	if err != nil {
		return fmt.Errorf("load terms: %w", err)
	}
	p.Seed(terms)
	return nil
}

// renderReport writes the requested report outputs and a stdout summary.
func renderReport(cfg *model.Config, report *model.RunReport, jsonPath, mdPath string) error {
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	if jsonPath != "" {
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", mdPath)
		}
	}

	renderer.RenderSummary(report)
	return nil
}
