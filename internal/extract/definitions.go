package extract

import (
	"regexp"
	"strings"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// definitionVerbs are the copulas and definitional verbs recognized by the
// is-pattern, per language.
var definitionVerbs = map[string]string{
	"en": `is|are|means|refers to|denotes|describes`,
	"de": `ist|sind|bezeichnet|bedeutet|beschreibt`,
}

// abbreviations that end with a period but never terminate a sentence.
var abbreviations = map[string][]string{
	"en": {"e.g", "i.e", "etc", "et al", "fig", "no", "vs", "approx", "cf", "resp"},
	"de": {"z.b", "bzw", "ca", "vgl", "abb", "nr", "u.a", "d.h", "ggf", "evtl"},
}

// Locator scans the text surrounding a term for sentences matching known
// definitional patterns. Patterns are ranked by specificity:
// is > colon > dash > parenthetical > context fallback.
type Locator struct{}

// NewLocator creates a definition locator.
func NewLocator() *Locator {
	return &Locator{}
}

// Locate returns definition candidates for the term within one page of
// text, most specific first. For a term that occurs in the text the result
// is never empty: when no pattern matches, the sentence containing the
// first occurrence is emitted as a context fallback. A term absent from
// the text yields nil.
func (l *Locator) Locate(term, text string, page model.PageRef, language string) []model.DefinitionCandidate {
	if term == "" || strings.TrimSpace(text) == "" {
		return nil
	}

	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)
	firstOcc := strings.Index(lowerText, lowerTerm)
	if firstOcc < 0 {
		return nil
	}

	sentences := splitSentences(text, language)
	quoted := regexp.QuoteMeta(term)

	verbs := definitionVerbs[language]
	if verbs == "" {
		verbs = definitionVerbs["en"]
	}

	// Sentence-anchored patterns; an optional leading article keeps
	// "The mixing time is ..." matching the stripped term.
	article := `(?:[Tt]he |[Aa]n? |[Dd](?:er|ie|as) )?`
	isPat := regexp.MustCompile(`(?i)^` + article + quoted + `\s+(?:` + verbs + `)\b`)
	colonPat := regexp.MustCompile(`(?i)^` + article + quoted + `\s*:`)
	dashPat := regexp.MustCompile(`(?i)^` + article + quoted + `\s*[–—-]\s`)
	parenPat := regexp.MustCompile(`(?i)` + quoted + `\s*\(`)

	var out []model.DefinitionCandidate
	add := func(kind model.PatternKind, sentence string) {
		out = append(out, model.DefinitionCandidate{
			Term:     term,
			Kind:     kind,
			Sentence: sentence,
			Page:     page,
		})
	}

	for _, s := range sentences {
		switch {
		case isPat.MatchString(s.text):
			add(model.PatternIs, s.text)
		case colonPat.MatchString(s.text):
			add(model.PatternColon, s.text)
		case dashPat.MatchString(s.text):
			add(model.PatternDash, s.text)
		case parenPat.MatchString(s.text):
			add(model.PatternParenthetical, s.text)
		}
	}

	sortBySpecificity(out)

	if len(out) == 0 {
		// Context fallback: the sentence containing the first occurrence.
		for _, s := range sentences {
			if firstOcc >= s.start && firstOcc < s.start+len(s.text) {
				add(model.PatternContext, s.text)
				break
			}
		}
		if len(out) == 0 {
			// Occurrence exists but sits outside any recognized sentence
			// (e.g. a trailing fragment); use the raw neighborhood.
			add(model.PatternContext, excerptAround(text, firstOcc, len(term)))
		}
	}

	// Primary flag: the first is- or colon-match found.
	for i := range out {
		if out[i].Kind == model.PatternIs || out[i].Kind == model.PatternColon {
			out[i].Primary = true
			break
		}
	}

	return out
}

// sortBySpecificity orders candidates by pattern rank, stable within a
// rank so document order survives.
func sortBySpecificity(cands []model.DefinitionCandidate) {
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].Kind.Specificity() < cands[j-1].Kind.Specificity(); j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
}

type sentenceSpan struct {
	text  string
	start int
}

// splitSentences splits page text on ./!/? boundaries, skipping periods
// that belong to known abbreviations. Page text never crosses page
// boundaries, so no guard is needed there.
func splitSentences(text, language string) []sentenceSpan {
	abbrevs := abbreviations[language]
	if abbrevs == nil {
		abbrevs = abbreviations["en"]
	}

	var out []sentenceSpan
	segStart := 0

	flush := func(end int) {
		raw := text[segStart:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			out = append(out, sentenceSpan{
				text:  trimmed,
				start: segStart + strings.Index(raw, trimmed[:1]),
			})
		}
		segStart = end
	}

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Only split when followed by whitespace or end of text.
		if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' && text[i+1] != '\t' {
			continue
		}
		if r == '.' && endsWithAbbreviation(text[segStart:i], abbrevs) {
			continue
		}
		flush(i + 1)
	}
	if segStart < len(text) {
		flush(len(text))
	}
	return out
}

// endsWithAbbreviation checks whether the text before a period ends in a
// known abbreviation, comparing the last one and two words.
func endsWithAbbreviation(before string, abbrevs []string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.TrimRight(fields[len(fields)-1], "."))
	lastTwo := last
	if len(fields) >= 2 {
		lastTwo = strings.ToLower(strings.TrimRight(fields[len(fields)-2], ".")) + " " + last
	}
	for _, a := range abbrevs {
		if last == a || lastTwo == a {
			return true
		}
	}
	return false
}

// excerptAround returns a bounded window around an occurrence for context
// fallbacks outside recognized sentences.
func excerptAround(text string, off, length int) string {
	const window = 120
	start := off - window
	if start < 0 {
		start = 0
	}
	end := off + length + window
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
