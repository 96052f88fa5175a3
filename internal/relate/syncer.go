package relate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/developer-hhiotsystems/termbase/internal/model"
	"github.com/developer-hhiotsystems/termbase/internal/store"
	"github.com/developer-hhiotsystems/termbase/internal/worker"
)

// graphTarget is the rate limiter target name for graph store writes.
const graphTarget = "graph"

// syncSleepFunc is the sleep function used between retries (injectable for tests)
var syncSleepFunc = time.Sleep

// Syncer pushes pending terms and their relationships into the graph
// store. Each term carries its own retry state, so one failing term
// never blocks the others.
type Syncer struct {
	store   *store.Store
	graph   GraphStore
	synth   *Synthesizer
	limiter *worker.Limiter
	cfg     model.SyncConfig
	workers int
	logger  *zap.Logger
}

// Stats summarizes one synchronization sweep.
type Stats struct {
	Synced        int `json:"synced"`
	Failed        int `json:"failed"`
	Relationships int `json:"relationships"` // New relationship rows written
}

// NewSyncer wires a syncer over the term store and a graph store.
func NewSyncer(st *store.Store, graph GraphStore, synth *Synthesizer, cfg *model.Config, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Concurrency.SyncWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Syncer{
		store:   st,
		graph:   graph,
		synth:   synth,
		limiter: worker.NewLimiter(cfg.Sync.RatePerSec, cfg.Sync.Burst),
		cfg:     cfg.Sync,
		workers: workers,
		logger:  logger,
	}
}

// Run sweeps pending terms on the configured interval until the context
// is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		stats, err := s.SyncOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("sync sweep failed", zap.Error(err))
		} else if stats.Synced > 0 || stats.Failed > 0 {
			s.logger.Info("sync sweep complete",
				zap.Int("synced", stats.Synced),
				zap.Int("failed", stats.Failed),
				zap.Int("relationships", stats.Relationships))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SyncOnce performs a single sweep: every term in pending or retrying
// state is pushed to the graph store along with the relationships the
// synthesizer proposes for it.
func (s *Syncer) SyncOnce(ctx context.Context) (Stats, error) {
	universe, err := s.store.LoadTerms(ctx)
	if err != nil {
		return Stats{}, err
	}

	var due []model.AggregatedTerm
	for _, t := range universe {
		if t.SyncState == model.SyncPending || t.SyncState == model.SyncRetrying {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return Stats{}, nil
	}

	var (
		mu    sync.Mutex
		stats Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range due {
		term := due[i]
		g.Go(func() error {
			rels, err := s.syncTerm(gctx, &term, universe)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				stats.Failed++
				return nil
			}
			stats.Synced++
			stats.Relationships += rels
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// syncTerm retries transient failures with exponential backoff and
// persists the state transition after every attempt.
func (s *Syncer) syncTerm(ctx context.Context, term *model.AggregatedTerm, universe []model.AggregatedTerm) (int, error) {
	attempts := term.SyncAttempts
	for {
		rels, err := s.push(ctx, term, universe)
		if err == nil {
			if uerr := s.store.UpdateSyncState(ctx, term.Key, model.SyncSynced, attempts, ""); uerr != nil {
				return 0, uerr
			}
			return rels, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		attempts++
		if attempts >= s.cfg.MaxRetries {
			s.logger.Warn("term sync exhausted retries",
				zap.Stringer("term", term.Key),
				zap.Int("attempts", attempts),
				zap.Error(err))
			if uerr := s.store.UpdateSyncState(ctx, term.Key, model.SyncFailed, attempts, err.Error()); uerr != nil {
				return 0, uerr
			}
			return 0, err
		}

		if uerr := s.store.UpdateSyncState(ctx, term.Key, model.SyncRetrying, attempts, err.Error()); uerr != nil {
			return 0, uerr
		}
		syncSleepFunc(s.cfg.BackoffBase * time.Duration(1<<uint(attempts-1)))
	}
}

// push writes the term, its relationship counterparts and the proposed
// relationships in one pass. Symmetric pairs are emitted together, so a
// retry after a partial failure completes both directions.
func (s *Syncer) push(ctx context.Context, term *model.AggregatedTerm, universe []model.AggregatedTerm) (int, error) {
	if err := s.limiter.Wait(ctx, graphTarget); err != nil {
		return 0, err
	}
	if err := s.graph.MergeTerm(ctx, term); err != nil {
		return 0, err
	}

	rels := s.synth.ForTerm(*term, universe)
	byKey := indexByKey(universe)
	merged := map[model.TermKey]bool{term.Key: true}
	inserted := 0
	for _, rel := range rels {
		for _, key := range []model.TermKey{rel.From, rel.To} {
			if merged[key] {
				continue
			}
			other, ok := byKey[key]
			if !ok {
				continue
			}
			if err := s.limiter.Wait(ctx, graphTarget); err != nil {
				return 0, err
			}
			if err := s.graph.MergeTerm(ctx, other); err != nil {
				return 0, err
			}
			merged[key] = true
		}

		if err := s.limiter.Wait(ctx, graphTarget); err != nil {
			return 0, err
		}
		if err := s.graph.MergeRelationship(ctx, rel); err != nil {
			return 0, err
		}
		added, err := s.store.SaveRelationship(ctx, rel)
		if err != nil {
			return 0, err
		}
		if added {
			inserted++
		}
	}
	return inserted, nil
}
