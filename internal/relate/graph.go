package relate

import (
	"context"
	"sync"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// GraphStore is the secondary store the syncer pushes terms and
// relationships into. Both writes must be idempotent merges.
type GraphStore interface {
	MergeTerm(ctx context.Context, term *model.AggregatedTerm) error
	MergeRelationship(ctx context.Context, rel model.Relationship) error
	Close(ctx context.Context) error
}

// MemoryGraph is an in-process GraphStore. It backs tests and the
// default no-Neo4j configuration.
type MemoryGraph struct {
	mu    sync.Mutex
	terms map[model.TermKey]*model.AggregatedTerm
	edges map[edgeKey]model.Relationship

	// failures, when positive, makes that many writes fail first.
	failures int
	failErr  error
}

// NewMemoryGraph creates an empty in-process graph store.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		terms: make(map[model.TermKey]*model.AggregatedTerm),
		edges: make(map[edgeKey]model.Relationship),
	}
}

// FailNext makes the next n writes return err.
func (g *MemoryGraph) FailNext(n int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = n
	g.failErr = err
}

func (g *MemoryGraph) consumeFailure() error {
	if g.failures > 0 {
		g.failures--
		return g.failErr
	}
	return nil
}

func (g *MemoryGraph) MergeTerm(ctx context.Context, term *model.AggregatedTerm) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.consumeFailure(); err != nil {
		return err
	}
	g.terms[term.Key] = term
	return nil
}

func (g *MemoryGraph) MergeRelationship(ctx context.Context, rel model.Relationship) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.consumeFailure(); err != nil {
		return err
	}
	g.edges[edgeKey{rel.From, rel.To, rel.Kind}] = rel
	return nil
}

func (g *MemoryGraph) Close(context.Context) error { return nil }

// Term returns the stored term for a key, if present.
func (g *MemoryGraph) Term(key model.TermKey) (*model.AggregatedTerm, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.terms[key]
	return t, ok
}

// Relationships returns a copy of all stored edges.
func (g *MemoryGraph) Relationships() []model.Relationship {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.Relationship, 0, len(g.edges))
	for _, r := range g.edges {
		out = append(out, r)
	}
	return out
}

// TermCount returns the number of stored terms.
func (g *MemoryGraph) TermCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.terms)
}
