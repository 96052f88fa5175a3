// Package extract turns normalized page text into candidate terms and
// locates definition sentences around them.
package extract

import (
	"strings"
	"unicode"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Strategy is a candidate generation backend. Both implementations are
// pure functions over the input text: no I/O, no hidden state, and empty
// text yields an empty candidate list.
type Strategy interface {
	// Name returns the strategy name for logging and provenance.
	Name() string

	// Supports reports whether the strategy can handle the language.
	Supports(language string) bool

	// Candidates extracts ordered candidate terms from normalized text.
	// Leading articles are already stripped from every emitted candidate.
	Candidates(text string, page model.PageRef, language string) []model.CandidateTerm
}

// Registry selects a strategy per language at pipeline construction time.
// The pattern strategy is the unconditional fallback, mirroring how the
// NLP model is simply unavailable for unconfigured languages.
type Registry struct {
	preferred []Strategy
	fallback  Strategy
}

// NewRegistry builds a registry from the configured mode: "nlp" and
// "pattern" force one backend, "auto" prefers NLP where supported.
func NewRegistry(mode string) *Registry {
	r := &Registry{fallback: NewPatternStrategy()}
	switch mode {
	case "pattern":
		// Fallback only.
	case "nlp":
		r.preferred = []Strategy{NewNLPStrategy()}
		r.fallback = NewNLPStrategy()
	default:
		r.preferred = []Strategy{NewNLPStrategy()}
	}
	return r
}

// ForLanguage returns the strategy used for the given language.
func (r *Registry) ForLanguage(language string) Strategy {
	for _, s := range r.preferred {
		if s.Supports(language) {
			return s
		}
	}
	return r.fallback
}

// articles lists the leading determiners stripped per language. Stripping
// happens inside every strategy through StripArticle so candidates never
// retain "The X" / "Die X" prefixes; the validator re-checks as a safety
// net.
var articles = map[string][]string{
	"en": {"the", "a", "an"},
	"de": {"der", "die", "das", "den", "dem", "des", "ein", "eine", "einen", "einem", "einer", "eines"},
}

// StripArticle removes one leading article for the language and returns
// the remainder together with the byte offset shift. Both strategies use
// this routine so they strip identically.
func StripArticle(text, language string) (string, int) {
	first, rest, found := strings.Cut(text, " ")
	if !found {
		return text, 0
	}
	lower := strings.ToLower(first)
	for _, art := range articles[language] {
		if lower == art {
			trimmed := strings.TrimLeft(rest, " ")
			return trimmed, len(text) - len(trimmed)
		}
	}
	return text, 0
}

// cleanCandidate trims stray punctuation left at candidate edges by either
// strategy.
func cleanCandidate(text string) string {
	return strings.TrimFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// dedupeCandidates drops candidates that repeat an earlier (text, offset)
// pair while preserving order.
func dedupeCandidates(candidates []model.CandidateTerm) []model.CandidateTerm {
	type key struct {
		text   string
		offset int
	}
	seen := make(map[key]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		k := key{strings.ToLower(c.Text), c.Offset}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}
