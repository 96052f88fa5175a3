package store

import (
	"context"
	"testing"
	"time"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTerm(text string) model.AggregatedTerm {
	now := time.Now().UTC().Truncate(time.Second)
	return model.AggregatedTerm{
		Key:         model.NewTermKey(text, "en", model.ProvenanceInternal),
		DisplayText: text,
		Frequency:   1,
		Pages:       []model.PageRef{{DocumentID: "doc1", Page: 1}},
		Excerpts:    []string{"... " + text + " ..."},
		Definitions: []model.DefinitionCandidate{
			{Term: text, Kind: model.PatternIs, Sentence: text + " is a thing.", Primary: true},
		},
		Confidence: 0.7,
		SyncState:  model.SyncPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestStore_SaveAndLoadTerm(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	want := testTerm("Bioreactor")
	if err := s.SaveTerm(ctx, want); err != nil {
		t.Fatalf("save term: %v", err)
	}

	got, err := s.LoadTerms(ctx)
	if err != nil {
		t.Fatalf("load terms: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d terms, want 1", len(got))
	}
	if got[0].Key != want.Key || got[0].Frequency != 1 || got[0].DisplayText != "Bioreactor" {
		t.Errorf("roundtrip mismatch: %+v", got[0])
	}
	if len(got[0].Definitions) != 1 || !got[0].Definitions[0].Primary {
		t.Errorf("definitions did not survive roundtrip: %+v", got[0].Definitions)
	}
}

func TestStore_UpsertOverwrites(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	term := testTerm("Sensor")
	if err := s.SaveTerm(ctx, term); err != nil {
		t.Fatalf("save: %v", err)
	}
	term.Frequency = 5
	term.SyncState = model.SyncSynced
	if err := s.SaveTerm(ctx, term); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.LoadTerms(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("key duplicated in store: %d rows", len(got))
	}
	if got[0].Frequency != 5 || got[0].SyncState != model.SyncSynced {
		t.Errorf("update lost: %+v", got[0])
	}
}

func TestStore_TermsBySyncState(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	pending := testTerm("Bioreactor")
	synced := testTerm("Sensor")
	synced.SyncState = model.SyncSynced
	for _, term := range []model.AggregatedTerm{pending, synced} {
		if err := s.SaveTerm(ctx, term); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := s.TermsBySyncState(ctx, model.SyncPending, model.SyncRetrying)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].DisplayText != "Bioreactor" {
		t.Errorf("expected only the pending term, got %+v", got)
	}
}

func TestStore_UpdateSyncState(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	term := testTerm("Impeller")
	if err := s.SaveTerm(ctx, term); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.UpdateSyncState(ctx, term.Key, model.SyncFailed, 5, "neo4j unreachable"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.LoadTerms(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].SyncState != model.SyncFailed || got[0].SyncAttempts != 5 || got[0].SyncError != "neo4j unreachable" {
		t.Errorf("sync state not persisted: %+v", got[0])
	}
}

func TestStore_RelationshipIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rel := model.Relationship{
		From:     model.NewTermKey("Stirred Tank Reactor", "en", model.ProvenanceInternal),
		To:       model.NewTermKey("Reactor", "en", model.ProvenanceInternal),
		Kind:     model.KindContains,
		Strength: 0.9,
		Method:   model.MethodAlgorithmic,
	}

	inserted, err := s.SaveRelationship(ctx, rel)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !inserted {
		t.Error("first save should insert")
	}
	inserted, err = s.SaveRelationship(ctx, rel)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if inserted {
		t.Error("second save must be a no-op")
	}

	got, err := s.LoadRelationships(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("edge duplicated: %d rows", len(got))
	}
}

func TestStore_PurgeTerm(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	term := testTerm("Bioreactor")
	if err := s.SaveTerm(ctx, term); err != nil {
		t.Fatalf("save: %v", err)
	}
	rel := model.Relationship{
		From:   term.Key,
		To:     model.NewTermKey("Reactor", "en", model.ProvenanceInternal),
		Kind:   model.KindContains,
		Method: model.MethodAlgorithmic,
	}
	if _, err := s.SaveRelationship(ctx, rel); err != nil {
		t.Fatalf("save relationship: %v", err)
	}

	if err := s.PurgeTerm(ctx, term.Key); err != nil {
		t.Fatalf("purge: %v", err)
	}
	terms, _ := s.LoadTerms(ctx)
	rels, _ := s.LoadRelationships(ctx)
	if len(terms) != 0 || len(rels) != 0 {
		t.Errorf("purge left rows behind: %d terms, %d relationships", len(terms), len(rels))
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/data"
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	if s.Path() == "" {
		t.Error("expected database path")
	}
}
