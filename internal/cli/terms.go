package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/developer-hhiotsystems/termbase/internal/model"
	"github.com/developer-hhiotsystems/termbase/internal/store"
)

var (
	termsState    string
	termsLimit    int
	termsShowRels bool
	purgeLang     string
	purgeClass    string
)

// termsCmd represents the terms command
var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "List the aggregated glossary",
	Long: `Terms lists the durable glossary built from previous ingest runs,
ordered as stored. Filter by sync state to find terms the relationship
sync could not push.

Example:
  termbase terms
  termbase terms --state failed
  termbase terms --relationships`,
	RunE: runTerms,
}

var termsPurgeCmd = &cobra.Command{
	Use:   "purge <term>",
	Short: "Remove a term and its relationships from the glossary",
	Long: `Purge is the administrative removal path: it deletes the term record
and every relationship touching it. Aggregation never deletes terms on
its own.`,
	Args: cobra.ExactArgs(1),
	RunE: runTermsPurge,
}

func init() {
	rootCmd.AddCommand(termsCmd)
	termsCmd.AddCommand(termsPurgeCmd)

	termsCmd.Flags().StringVar(&termsState, "state", "", "filter by sync state (pending, retrying, synced, failed)")
	termsCmd.Flags().IntVar(&termsLimit, "limit", 0, "maximum rows to print (0: all)")
	termsCmd.Flags().BoolVar(&termsShowRels, "relationships", false, "list stored relationships instead of terms")

	termsPurgeCmd.Flags().StringVar(&purgeLang, "lang", "en", "language tag of the term to purge")
	termsPurgeCmd.Flags().StringVar(&purgeClass, "class", string(model.ProvenanceInternal), "provenance class of the term to purge")
}

func runTerms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open term database: %w", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	if termsShowRels {
		return printRelationships(ctx, st)
	}

	var terms []model.AggregatedTerm
	if termsState != "" {
		terms, err = st.TermsBySyncState(ctx, model.SyncState(termsState))
	} else {
		terms, err = st.LoadTerms(ctx)
	}
	if err != nil {
		return fmt.Errorf("load terms: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TERM\tLANG\tCLASS\tFREQ\tCONF\tDEFS\tSYNC")
	for i, t := range terms {
		if termsLimit > 0 && i >= termsLimit {
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%d\t%s\n",
			t.DisplayText, t.Key.Language, t.Key.Class, t.Frequency, t.Confidence, len(t.Definitions), t.SyncState)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d term(s)\n", len(terms))
	return nil
}

func printRelationships(ctx context.Context, st *store.Store) error {
	rels, err := st.LoadRelationships(ctx)
	if err != nil {
		return fmt.Errorf("load relationships: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FROM\tKIND\tTO\tSTRENGTH\tMETHOD")
	for i, r := range rels {
		if termsLimit > 0 && i >= termsLimit {
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", r.From, r.Kind, r.To, r.Strength, r.Method)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d relationship(s)\n", len(rels))
	return nil
}

func runTermsPurge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open term database: %w", err)
	}
	defer func() { _ = st.Close() }()

	key := model.NewTermKey(args[0], purgeLang, model.ProvenanceClass(purgeClass))
	if err := st.PurgeTerm(context.Background(), key); err != nil {
		return fmt.Errorf("purge %s: %w", key, err)
	}

	fmt.Printf("Purged %s\n", key)
	return nil
}
