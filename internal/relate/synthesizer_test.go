package relate

import (
	"testing"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

func term(text, language string, pages ...model.PageRef) model.AggregatedTerm {
	return model.AggregatedTerm{
		Key:         model.NewTermKey(text, language, model.ProvenanceInternal),
		DisplayText: text,
		Frequency:   1,
		Pages:       pages,
		SyncState:   model.SyncPending,
	}
}

func findEdges(rels []model.Relationship, kind model.RelationshipKind) []model.Relationship {
	var out []model.Relationship
	for _, r := range rels {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func hasEdge(rels []model.Relationship, from, to model.TermKey, kind model.RelationshipKind) bool {
	for _, r := range rels {
		if r.From == from && r.To == to && r.Kind == kind {
			return true
		}
	}
	return false
}

func TestCompoundOfLinksConstituents(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	terms := []model.AggregatedTerm{
		term("Mixing Time", "en"),
		term("Mixing", "en"),
		term("Time", "en"),
	}

	rels := s.Synthesize(terms)
	compound := terms[0].Key
	if !hasEdge(rels, compound, terms[1].Key, model.KindCompoundOf) {
		t.Error("expected COMPOUND_OF edge to 'mixing'")
	}
	if !hasEdge(rels, compound, terms[2].Key, model.KindCompoundOf) {
		t.Error("expected COMPOUND_OF edge to 'time'")
	}
	for _, r := range findEdges(rels, model.KindCompoundOf) {
		if r.From != compound {
			t.Errorf("COMPOUND_OF must run compound -> constituent, got %s -> %s", r.From, r.To)
		}
	}
}

func TestCompoundOfSkipsMissingConstituents(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	rels := s.Synthesize([]model.AggregatedTerm{
		term("Mixing Time", "en"),
		term("Mixing", "en"),
	})

	compounds := findEdges(rels, model.KindCompoundOf)
	if len(compounds) != 1 {
		t.Fatalf("expected 1 COMPOUND_OF edge, got %d", len(compounds))
	}
	if compounds[0].To.Text != "mixing" {
		t.Errorf("edge points at %q, want mixing", compounds[0].To.Text)
	}
}

func TestContainsRunsLongerToShorter(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	long := term("Single-Use Bioreactor", "en")
	short := term("Bioreactor", "en")

	rels := s.Synthesize([]model.AggregatedTerm{long, short})
	if !hasEdge(rels, long.Key, short.Key, model.KindContains) {
		t.Error("expected CONTAINS from longer to shorter term")
	}
	if hasEdge(rels, short.Key, long.Key, model.KindContains) {
		t.Error("CONTAINS must never run shorter to longer")
	}
}

func TestContainsRequiresWordBoundary(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	rels := s.Synthesize([]model.AggregatedTerm{
		term("Bioreactors", "en"),
		term("Reactor", "en"),
	})
	if len(findEdges(rels, model.KindContains)) != 0 {
		t.Error("substring inside a word must not produce CONTAINS")
	}
}

func TestSimilarToIsEmittedInBothDirections(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	a := term("Bioreactors", "en")
	b := term("Bioreactor", "en")

	rels := s.Synthesize([]model.AggregatedTerm{a, b})
	if !hasEdge(rels, a.Key, b.Key, model.KindSimilarTo) || !hasEdge(rels, b.Key, a.Key, model.KindSimilarTo) {
		t.Fatalf("SIMILAR_TO must exist in both directions, got %+v", rels)
	}
}

func TestSimilarToRespectsEditBound(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	rels := s.Synthesize([]model.AggregatedTerm{
		term("Bioreactor", "en"),
		term("Centrifuge", "en"),
	})
	if len(findEdges(rels, model.KindSimilarTo)) != 0 {
		t.Error("unrelated terms must not be SIMILAR_TO")
	}
}

func TestTranslationOfRequiresSharedPages(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	en := term("Bioreactor", "en", model.PageRef{DocumentID: "manual-01", Page: 3})
	de := term("Bioreaktor", "de", model.PageRef{DocumentID: "manual-01", Page: 3})

	rels := s.Synthesize([]model.AggregatedTerm{en, de})
	if !hasEdge(rels, en.Key, de.Key, model.KindTranslationOf) || !hasEdge(rels, de.Key, en.Key, model.KindTranslationOf) {
		t.Fatalf("expected TRANSLATION_OF in both directions, got %+v", rels)
	}

	// Same pair without provenance overlap proposes nothing.
	enOther := term("Bioreactor", "en", model.PageRef{DocumentID: "manual-01", Page: 3})
	deOther := term("Bioreaktor", "de", model.PageRef{DocumentID: "manual-99", Page: 40})
	rels = s.Synthesize([]model.AggregatedTerm{enOther, deOther})
	if len(findEdges(rels, model.KindTranslationOf)) != 0 {
		t.Error("TRANSLATION_OF must require a shared document with overlapping pages")
	}
}

func TestNoCrossLanguageSimilarTo(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	rels := s.Synthesize([]model.AggregatedTerm{
		term("Bioreactor", "en", model.PageRef{DocumentID: "d", Page: 1}),
		term("Bioreaktor", "de", model.PageRef{DocumentID: "d", Page: 1}),
	})
	if len(findEdges(rels, model.KindSimilarTo)) != 0 {
		t.Error("SIMILAR_TO must stay within one language")
	}
}

func TestSynthesizeIsDeterministicAndDeduplicated(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	terms := []model.AggregatedTerm{
		term("Mixing Time", "en"),
		term("Mixing", "en"),
		term("Bioreactors", "en"),
		term("Bioreactor", "en"),
	}

	first := s.Synthesize(terms)
	second := s.Synthesize(terms)
	if len(first) != len(second) {
		t.Fatalf("repeated synthesis differs: %d vs %d edges", len(first), len(second))
	}

	seen := make(map[edgeKey]bool)
	for _, r := range first {
		k := edgeKey{r.From, r.To, r.Kind}
		if seen[k] {
			t.Errorf("duplicate edge %v", k)
		}
		seen[k] = true
		if r.From == r.To {
			t.Errorf("self edge on %s", r.From)
		}
	}
}

func TestForTermMatchesFullSynthesis(t *testing.T) {
	s := NewSynthesizer(model.DefaultConfig())
	universe := []model.AggregatedTerm{
		term("Mixing Time", "en"),
		term("Mixing", "en"),
		term("Time", "en"),
	}

	rels := s.ForTerm(universe[0], universe)
	if len(findEdges(rels, model.KindCompoundOf)) != 2 {
		t.Errorf("ForTerm found %d COMPOUND_OF edges, want 2", len(findEdges(rels, model.KindCompoundOf)))
	}
}
