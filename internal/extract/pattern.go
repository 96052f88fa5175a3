package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Candidate patterns, from broadest to narrowest. Capitalized runs may
// start with an article ("The Mixing Time"); StripArticle removes it so
// the pattern strategy and the NLP strategy emit identical surface forms.
var (
	// Two or more capitalized words, optionally hyphen-joined.
	capitalizedRun = regexp.MustCompile(`[A-ZÄÖÜ][a-zäöüß]+(?:[ -][A-ZÄÖÜ][a-zäöüß]+)+`)

	// Acronyms: 2-6 characters, mostly uppercase, digits and hyphens
	// allowed (DO, CO2, SIP, CIP-2).
	acronym = regexp.MustCompile(`\b[A-Z][A-Z0-9-]{1,5}\b`)

	// Domain tokens with a lowercase head (pH, kLa, mAb).
	lowerHeadToken = regexp.MustCompile(`\b[a-z]{1,2}[A-Z][A-Za-z0-9]{0,4}\b`)

	// Hyphenated compounds in either case (fed-batch, Rührkessel-Reaktor).
	hyphenCompound = regexp.MustCompile(`\b\pL+(?:-\pL+)+\b`)

	// Single capitalized words; in German this is where ordinary nouns
	// surface, in English it catches sentence-initial and proper nouns.
	capitalizedWord = regexp.MustCompile(`[A-ZÄÖÜ][a-zäöüß]{2,}`)
)

// PatternStrategy is the regex-driven fallback generator used when no
// tagging model exists for the language.
type PatternStrategy struct{}

// NewPatternStrategy creates the pattern candidate strategy.
func NewPatternStrategy() *PatternStrategy {
	return &PatternStrategy{}
}

// Name returns the strategy name.
func (s *PatternStrategy) Name() string { return string(model.StrategyPattern) }

// Supports always reports true; patterns are the universal fallback.
func (s *PatternStrategy) Supports(string) bool { return true }

type span struct {
	start, end int
}

// Candidates extracts pattern-matched candidates ordered by offset.
func (s *PatternStrategy) Candidates(text string, page model.PageRef, language string) []model.CandidateTerm {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []model.CandidateTerm
	var multiSpans []span

	emit := func(start, end int) {
		raw := text[start:end]
		stripped, shift := StripArticle(raw, language)
		stripped = cleanCandidate(stripped)
		if stripped == "" {
			return
		}
		out = append(out, model.CandidateTerm{
			Text:     stripped,
			Language: language,
			Page:     page,
			Offset:   start + shift,
			Strategy: model.StrategyPattern,
		})
	}

	for _, m := range capitalizedRun.FindAllStringIndex(text, -1) {
		multiSpans = append(multiSpans, span{m[0], m[1]})
		emit(m[0], m[1])
	}
	for _, re := range []*regexp.Regexp{acronym, lowerHeadToken, hyphenCompound} {
		for _, m := range re.FindAllStringIndex(text, -1) {
			emit(m[0], m[1])
		}
	}

	// Single capitalized words already covered by a multi-word run are
	// suppressed to keep the candidate stream from drowning in fragments.
	for _, m := range capitalizedWord.FindAllStringIndex(text, -1) {
		if containedIn(multiSpans, m[0], m[1]) {
			continue
		}
		emit(m[0], m[1])
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return dedupeCandidates(out)
}

func containedIn(spans []span, start, end int) bool {
	for _, sp := range spans {
		if start >= sp.start && end <= sp.end {
			return true
		}
	}
	return false
}
