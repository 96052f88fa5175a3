// Package relate derives relationships between aggregated terms and keeps
// a secondary relationship store in sync with the glossary.
package relate

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Synthesizer proposes relationships over an aggregated term set. All
// detection is deterministic; re-running over the same terms proposes the
// same edges, and the stores deduplicate on (from, to, kind).
type Synthesizer struct {
	threshold float64
	maxEdit   int
}

// NewSynthesizer creates a synthesizer with the configured similarity
// tuning.
func NewSynthesizer(cfg *model.Config) *Synthesizer {
	return &Synthesizer{
		threshold: cfg.Similarity.Threshold,
		maxEdit:   cfg.Similarity.MaxEditDistance,
	}
}

// Synthesize proposes relationships over the whole term set.
func (s *Synthesizer) Synthesize(terms []model.AggregatedTerm) []model.Relationship {
	var out []model.Relationship
	seen := make(map[edgeKey]bool)
	for i := range terms {
		out = s.forTerm(&terms[i], terms, seen, out)
	}
	return out
}

// ForTerm proposes the relationships involving one term against the
// current term universe; used by the incremental sync path.
func (s *Synthesizer) ForTerm(term model.AggregatedTerm, universe []model.AggregatedTerm) []model.Relationship {
	return s.forTerm(&term, universe, make(map[edgeKey]bool), nil)
}

type edgeKey struct {
	from, to model.TermKey
	kind     model.RelationshipKind
}

func (s *Synthesizer) forTerm(term *model.AggregatedTerm, universe []model.AggregatedTerm, seen map[edgeKey]bool, out []model.Relationship) []model.Relationship {
	add := func(r model.Relationship) {
		if r.From == r.To {
			return
		}
		k := edgeKey{r.From, r.To, r.Kind}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, r)
	}

	words := strings.Fields(term.Key.Text)
	byKey := indexByKey(universe)

	// COMPOUND_OF: every constituent word that exists as its own term.
	if len(words) > 1 {
		for _, w := range words {
			constituent := model.TermKey{Text: w, Language: term.Key.Language, Class: term.Key.Class}
			if _, ok := byKey[constituent]; ok {
				add(model.Relationship{
					From:     term.Key,
					To:       constituent,
					Kind:     model.KindCompoundOf,
					Strength: 1.0 / float64(len(words)),
					Method:   model.MethodAlgorithmic,
				})
			}
		}
	}

	for i := range universe {
		other := &universe[i]
		if other.Key == term.Key {
			continue
		}

		if other.Key.Language == term.Key.Language {
			// CONTAINS runs longer -> shorter, so together with
			// COMPOUND_OF no opposite-kind two-cycle can form.
			if containsAtWordBoundary(term.Key.Text, other.Key.Text) {
				add(model.Relationship{
					From:     term.Key,
					To:       other.Key,
					Kind:     model.KindContains,
					Strength: float64(len(other.Key.Text)) / float64(len(term.Key.Text)),
					Method:   model.MethodAlgorithmic,
				})
			}
			if containsAtWordBoundary(other.Key.Text, term.Key.Text) {
				add(model.Relationship{
					From:     other.Key,
					To:       term.Key,
					Kind:     model.KindContains,
					Strength: float64(len(term.Key.Text)) / float64(len(other.Key.Text)),
					Method:   model.MethodAlgorithmic,
				})
			}

			if sim := s.similarity(term.Key.Text, other.Key.Text); sim >= s.threshold {
				add(model.Relationship{From: term.Key, To: other.Key, Kind: model.KindSimilarTo, Strength: sim, Method: model.MethodAlgorithmic})
				add(model.Relationship{From: other.Key, To: term.Key, Kind: model.KindSimilarTo, Strength: sim, Method: model.MethodAlgorithmic})
			}
			continue
		}

		// Differing languages: TRANSLATION_OF only with shared source
		// document, overlapping pages and a cognate-level similarity.
		if sharesPages(term, other) {
			if sim := s.similarity(term.Key.Text, other.Key.Text); sim >= s.threshold {
				add(model.Relationship{From: term.Key, To: other.Key, Kind: model.KindTranslationOf, Strength: sim, Method: model.MethodAlgorithmic})
				add(model.Relationship{From: other.Key, To: term.Key, Kind: model.KindTranslationOf, Strength: sim, Method: model.MethodAlgorithmic})
			}
		}
	}

	return out
}

// similarity combines a bounded edit-distance ratio with token overlap
// and returns the stronger signal.
func (s *Synthesizer) similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	editSim := 0.0
	if dist := levenshtein.ComputeDistance(a, b); dist <= s.maxEdit {
		longest := len([]rune(a))
		if l := len([]rune(b)); l > longest {
			longest = l
		}
		if longest > 0 {
			editSim = 1.0 - float64(dist)/float64(longest)
		}
	}

	overlap := tokenOverlap(strings.Fields(a), strings.Fields(b))
	if overlap > editSim {
		return overlap
	}
	return editSim
}

// tokenOverlap is the Dice coefficient over word sets.
func tokenOverlap(a, b []string) float64 {
	if len(a) < 2 && len(b) < 2 {
		// Single words are the edit-distance path's job.
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	shared := 0
	for _, w := range b {
		if set[w] {
			shared++
		}
	}
	return 2.0 * float64(shared) / float64(len(a)+len(b))
}

// containsAtWordBoundary reports whether needle occurs in haystack as a
// whole word or word sequence, with haystack strictly longer.
func containsAtWordBoundary(haystack, needle string) bool {
	if len(haystack) <= len(needle) || needle == "" {
		return false
	}
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		leftOK := start == 0 || haystack[start-1] == ' ' || haystack[start-1] == '-'
		rightOK := end == len(haystack) || haystack[end] == ' ' || haystack[end] == '-'
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
		if idx >= len(haystack) {
			return false
		}
	}
}

// sharesPages reports whether two terms share a source document with
// overlapping page ranges.
func sharesPages(a, b *model.AggregatedTerm) bool {
	type docRange struct{ min, max int }
	ranges := make(map[string]docRange)
	for _, p := range a.Pages {
		r, ok := ranges[p.DocumentID]
		if !ok {
			ranges[p.DocumentID] = docRange{p.Page, p.Page}
			continue
		}
		if p.Page < r.min {
			r.min = p.Page
		}
		if p.Page > r.max {
			r.max = p.Page
		}
		ranges[p.DocumentID] = r
	}
	for _, p := range b.Pages {
		if r, ok := ranges[p.DocumentID]; ok && p.Page >= r.min-1 && p.Page <= r.max+1 {
			return true
		}
	}
	return false
}

func indexByKey(terms []model.AggregatedTerm) map[model.TermKey]*model.AggregatedTerm {
	out := make(map[model.TermKey]*model.AggregatedTerm, len(terms))
	for i := range terms {
		out[terms[i].Key] = &terms[i]
	}
	return out
}
