package relate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/developer-hhiotsystems/termbase/internal/model"
	"github.com/developer-hhiotsystems/termbase/internal/store"
)

func setupSyncer(t *testing.T, cfg *model.Config) (*Syncer, *store.Store, *MemoryGraph) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	graph := NewMemoryGraph()
	syncer := NewSyncer(st, graph, NewSynthesizer(cfg), cfg, nil)
	return syncer, st, graph
}

func fastConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Sync.MaxRetries = 3
	cfg.Sync.BackoffBase = time.Millisecond
	cfg.Sync.RatePerSec = 10000
	cfg.Sync.Burst = 100
	return cfg
}

func TestSyncOnceMarksTermsSynced(t *testing.T) {
	cfg := fastConfig()
	syncer, st, graph := setupSyncer(t, cfg)
	ctx := context.Background()

	en := term("Bioreactor", "en", model.PageRef{DocumentID: "manual-01", Page: 3})
	de := term("Bioreaktor", "de", model.PageRef{DocumentID: "manual-01", Page: 3})
	for _, tm := range []model.AggregatedTerm{en, de} {
		if err := st.SaveTerm(ctx, tm); err != nil {
			t.Fatalf("save term: %v", err)
		}
	}

	stats, err := syncer.SyncOnce(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if stats.Synced != 2 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 2 synced, 0 failed", stats)
	}
	if graph.TermCount() != 2 {
		t.Errorf("graph holds %d terms, want 2", graph.TermCount())
	}

	synced, err := st.TermsBySyncState(ctx, model.SyncSynced)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(synced) != 2 {
		t.Errorf("store reports %d synced terms, want 2", len(synced))
	}

	var found [2]bool
	for _, r := range graph.Relationships() {
		if r.Kind != model.KindTranslationOf {
			continue
		}
		if r.From == en.Key && r.To == de.Key {
			found[0] = true
		}
		if r.From == de.Key && r.To == en.Key {
			found[1] = true
		}
	}
	if !found[0] || !found[1] {
		t.Error("TRANSLATION_OF must land in the graph in both directions")
	}
}

func TestSyncRetriesTransientFailures(t *testing.T) {
	cfg := fastConfig()
	var slept []time.Duration
	syncSleepFunc = func(d time.Duration) { slept = append(slept, d) }
	defer func() { syncSleepFunc = time.Sleep }()

	syncer, st, graph := setupSyncer(t, cfg)
	ctx := context.Background()

	if err := st.SaveTerm(ctx, term("Bioreactor", "en", model.PageRef{DocumentID: "d", Page: 1})); err != nil {
		t.Fatalf("save term: %v", err)
	}
	graph.FailNext(2, errors.New("connection reset"))

	stats, err := syncer.SyncOnce(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if stats.Synced != 1 {
		t.Errorf("stats = %+v, want 1 synced after retries", stats)
	}
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(slept))
	}
	if slept[0] != cfg.Sync.BackoffBase || slept[1] != 2*cfg.Sync.BackoffBase {
		t.Errorf("backoff sequence %v, want doubling from %v", slept, cfg.Sync.BackoffBase)
	}
}

func TestSyncMarksFailedAfterRetriesExhausted(t *testing.T) {
	cfg := fastConfig()
	syncSleepFunc = func(time.Duration) {}
	defer func() { syncSleepFunc = time.Sleep }()

	syncer, st, graph := setupSyncer(t, cfg)
	ctx := context.Background()

	if err := st.SaveTerm(ctx, term("Bioreactor", "en", model.PageRef{DocumentID: "d", Page: 1})); err != nil {
		t.Fatalf("save term: %v", err)
	}
	graph.FailNext(100, errors.New("unavailable"))

	stats, err := syncer.SyncOnce(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if stats.Failed != 1 || stats.Synced != 0 {
		t.Errorf("stats = %+v, want 1 failed", stats)
	}

	failed, err := st.TermsBySyncState(ctx, model.SyncFailed)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("store reports %d failed terms, want 1", len(failed))
	}
	if failed[0].SyncAttempts != cfg.Sync.MaxRetries {
		t.Errorf("attempts = %d, want %d", failed[0].SyncAttempts, cfg.Sync.MaxRetries)
	}
	if failed[0].SyncError == "" {
		t.Error("failed term must retain the last error")
	}
}

func TestOneFailingTermDoesNotBlockOthers(t *testing.T) {
	cfg := fastConfig()
	cfg.Concurrency.SyncWorkers = 1 // deterministic order for failure injection
	syncSleepFunc = func(time.Duration) {}
	defer func() { syncSleepFunc = time.Sleep }()

	syncer, st, graph := setupSyncer(t, cfg)
	ctx := context.Background()

	if err := st.SaveTerm(ctx, term("Centrifuge", "en", model.PageRef{DocumentID: "d", Page: 1})); err != nil {
		t.Fatalf("save term: %v", err)
	}
	if err := st.SaveTerm(ctx, term("Bioreactor", "en", model.PageRef{DocumentID: "d", Page: 2})); err != nil {
		t.Fatalf("save term: %v", err)
	}

	// Enough failures to exhaust the first term, none left for the second.
	graph.FailNext(cfg.Sync.MaxRetries, errors.New("unavailable"))

	stats, err := syncer.SyncOnce(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if stats.Synced != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 synced and 1 failed", stats)
	}
}

func TestSyncOnceIsIdempotent(t *testing.T) {
	cfg := fastConfig()
	syncer, st, _ := setupSyncer(t, cfg)
	ctx := context.Background()

	if err := st.SaveTerm(ctx, term("Mixing Time", "en", model.PageRef{DocumentID: "d", Page: 1})); err != nil {
		t.Fatalf("save term: %v", err)
	}
	if err := st.SaveTerm(ctx, term("Mixing", "en", model.PageRef{DocumentID: "d", Page: 1})); err != nil {
		t.Fatalf("save term: %v", err)
	}

	first, err := syncer.SyncOnce(ctx)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Relationships == 0 {
		t.Fatal("first sweep should write relationships")
	}

	// Re-mark pending and sweep again; the relationship rows already exist.
	for _, tm := range []string{"mixing time", "mixing"} {
		key := model.NewTermKey(tm, "en", model.ProvenanceInternal)
		if err := st.UpdateSyncState(ctx, key, model.SyncPending, 0, ""); err != nil {
			t.Fatalf("reset state: %v", err)
		}
	}
	second, err := syncer.SyncOnce(ctx)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Relationships != 0 {
		t.Errorf("second sweep wrote %d new relationships, want 0", second.Relationships)
	}

	rels, err := st.LoadRelationships(ctx)
	if err != nil {
		t.Fatalf("load relationships: %v", err)
	}
	if len(rels) != first.Relationships {
		t.Errorf("store holds %d relationships, want %d", len(rels), first.Relationships)
	}
}

func TestSyncOnceWithNothingPending(t *testing.T) {
	syncer, _, graph := setupSyncer(t, fastConfig())
	stats, err := syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if graph.TermCount() != 0 {
		t.Error("empty sweep must not touch the graph")
	}
}
