package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/developer-hhiotsystems/termbase/internal/relate"
	"github.com/developer-hhiotsystems/termbase/internal/store"
)

var syncWatch bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synthesize relationships and push terms to the graph store",
	Long: `Sync sweeps terms in pending or retrying state: each term is merged
into the graph store together with the relationships the synthesizer
proposes for it (compounds, containment, similarity, translations).

Failures retry with exponential backoff per term; a term that exhausts
its retries is marked failed and surfaces in 'termbase terms --state
failed'. State survives restarts.

With TERMBASE_NEO4J_URI set (or sync.neo4j.uri configured) terms land in
Neo4j; without it an in-process store is used, which still exercises the
full state machine and persists relationships to SQLite.

Example:
  termbase sync
  termbase sync --watch`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep sweeping on the configured interval")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open term database: %w", err)
	}
	defer func() { _ = st.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var graph relate.GraphStore
	if cfg.Sync.Neo4j.URI != "" {
		g, err := relate.NewNeo4jGraph(ctx, cfg.Sync.Neo4j)
		if err != nil {
			return fmt.Errorf("connect graph store: %w", err)
		}
		graph = g
		log.Info("using neo4j graph store", zap.String("uri", cfg.Sync.Neo4j.URI))
	} else {
		graph = relate.NewMemoryGraph()
		log.Info("no neo4j configured, using in-process graph store")
	}
	defer func() { _ = graph.Close(context.Background()) }()

	syncer := relate.NewSyncer(st, graph, relate.NewSynthesizer(cfg), cfg, log)

	if syncWatch {
		err := syncer.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	}

	stats, err := syncer.SyncOnce(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Synced: %d  Failed: %d  New relationships: %d\n", stats.Synced, stats.Failed, stats.Relationships)
	if stats.Failed > 0 {
		fmt.Println("Inspect failures with: termbase terms --state failed")
	}
	return nil
}
