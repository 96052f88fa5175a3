// Package validate decides whether candidate terms become glossary
// entries. The engine runs a fixed, ordered rule set and short-circuits on
// the first failure, so every rejection carries exactly one reason.
package validate

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/developer-hhiotsystems/termbase/internal/extract"
	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Artifact and citation patterns. These are provenance artifacts of PDF
// rendering and referencing, deliberately kept apart from linguistic stop
// words.
var (
	pureNumeric      = regexp.MustCompile(`^[0-9][0-9.,\s]*%?$`)
	artifactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`cid:\d+`),
		regexp.MustCompile(`^\(cid`),
		regexp.MustCompile(`^[\x{fffd}]+`),
	}
	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^et\s+al\.?$`),
		regexp.MustCompile(`(?i)\bet\s+al\.?\b`),
		regexp.MustCompile(`(?i)^ibid\.?$`),
		regexp.MustCompile(`(?i)^vgl\.?$`),
		regexp.MustCompile(`(?i)^op\.\s*cit\.?$`),
	}
)

// rule is one validation check. ok=false carries the reason that fired.
type rule struct {
	name  string
	check func(e *Engine, text, language string) (ok bool, reason model.RejectReason)
}

// Engine applies the ordered rule set. It is immutable after construction
// and safe for concurrent use; verdicts are a pure function of candidate
// text, language and the configuration captured here.
type Engine struct {
	cfg       model.ValidationConfig
	stop      map[string]map[string]bool
	whitelist map[string]bool
	mixedCase map[string]bool
	rules     []rule
}

// NewEngine builds the engine from the immutable configuration.
func NewEngine(cfg *model.Config) *Engine {
	v := cfg.Validation

	stop := make(map[string]map[string]bool, len(stopWords))
	for lang, list := range stopWords {
		stop[lang] = buildSet(list, v.ExtraStopWords[lang])
	}
	for lang, extra := range v.ExtraStopWords {
		if _, ok := stop[lang]; !ok {
			stop[lang] = buildSet(extra)
		}
	}

	e := &Engine{
		cfg:       v,
		stop:      stop,
		whitelist: buildSet(v.ShortTokenWhitelist),
		mixedCase: buildSet(v.MixedCaseWhitelist),
	}
	e.rules = []rule{
		{"length_bounds", (*Engine).checkLength},
		{"non_empty", (*Engine).checkNonEmpty},
		{"numeric", (*Engine).checkNumeric},
		{"symbol_ratio", (*Engine).checkSymbolRatio},
		{"stop_words", (*Engine).checkStopWords},
		{"word_count", (*Engine).checkWordCount},
		{"pdf_artifacts", (*Engine).checkArtifacts},
		{"fragments", (*Engine).checkFragments},
		{"capitalization", (*Engine).checkCapitalization},
		{"article_residue", (*Engine).checkArticleResidue},
	}
	return e
}

// Validate runs the candidate through all rules in priority order and
// stops at the first failure.
func (e *Engine) Validate(c model.CandidateTerm) model.ValidationVerdict {
	verdict := model.ValidationVerdict{
		Candidate: c.Text,
		Language:  c.Language,
	}

	for _, r := range e.rules {
		verdict.RulesEvaluated = append(verdict.RulesEvaluated, r.name)
		ok, reason := r.check(e, c.Text, c.Language)
		if !ok {
			verdict.Accepted = false
			verdict.FailedRule = r.name
			verdict.Reason = reason
			verdict.Confidence = 0
			return verdict
		}
	}

	verdict.Accepted = true
	verdict.Confidence = e.confidence(c.Text)
	return verdict
}

func (e *Engine) checkLength(text, _ string) (bool, model.RejectReason) {
	n := len([]rune(text))
	if n < e.cfg.MinTermLength {
		return false, model.ReasonTooShort
	}
	if n > e.cfg.MaxTermLength {
		return false, model.ReasonTooLong
	}
	return true, ""
}

func (e *Engine) checkNonEmpty(text, _ string) (bool, model.RejectReason) {
	if strings.TrimSpace(text) == "" {
		return false, model.ReasonEmpty
	}
	return true, ""
}

func (e *Engine) checkNumeric(text, _ string) (bool, model.RejectReason) {
	if pureNumeric.MatchString(strings.TrimSpace(text)) {
		return false, model.ReasonNumeric
	}
	return true, ""
}

func (e *Engine) checkSymbolRatio(text, _ string) (bool, model.RejectReason) {
	var symbols, alnum int
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			alnum++
		case unicode.IsSpace(r):
			// Spaces are neutral.
		default:
			symbols++
		}
	}
	if alnum == 0 {
		return false, model.ReasonSymbolRatio
	}
	if float64(symbols)/float64(alnum) > e.cfg.MaxSymbolRatio {
		return false, model.ReasonSymbolRatio
	}
	return true, ""
}

func (e *Engine) checkStopWords(text, language string) (bool, model.RejectReason) {
	set := e.stop[language]
	if set == nil {
		return true, ""
	}
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return true, ""
	}
	for _, w := range words {
		if !set[w] {
			return true, ""
		}
	}
	// Single stop word, or a multi-word candidate made only of stop words.
	return false, model.ReasonStopWord
}

func (e *Engine) checkWordCount(text, _ string) (bool, model.RejectReason) {
	n := len(strings.Fields(text))
	if n < e.cfg.MinWordCount || n > e.cfg.MaxWordCount {
		return false, model.ReasonWordCount
	}
	return true, ""
}

func (e *Engine) checkArtifacts(text, _ string) (bool, model.RejectReason) {
	trimmed := strings.TrimSpace(text)
	for _, p := range artifactPatterns {
		if p.MatchString(trimmed) {
			return false, model.ReasonPDFArtifact
		}
	}
	for _, p := range citationPatterns {
		if p.MatchString(trimmed) {
			return false, model.ReasonCitation
		}
	}
	return true, ""
}

func (e *Engine) checkFragments(text, language string) (bool, model.RejectReason) {
	if e.whitelist[text] {
		return true, ""
	}
	set := fragments[language]
	lower := strings.ToLower(text)
	for _, f := range set {
		if lower == f {
			return false, model.ReasonFragment
		}
	}
	return true, ""
}

func (e *Engine) checkCapitalization(text, _ string) (bool, model.RejectReason) {
	for _, word := range strings.Fields(text) {
		for _, part := range strings.Split(word, "-") {
			if part == "" || e.mixedCase[part] || e.whitelist[part] {
				continue
			}
			if !regularCase(part) {
				return false, model.ReasonCaseMixing
			}
		}
	}
	return true, ""
}

// regularCase accepts lowercase, ALLCAPS (with digits) and Title Case;
// anything else is irregular intra-word case mixing.
func regularCase(word string) bool {
	runes := []rune(word)
	hasLetter := false
	allLower, allUpper := true, true
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if unicode.IsUpper(r) {
			allLower = false
		} else {
			allUpper = false
		}
	}
	if !hasLetter || allLower || allUpper {
		return true
	}
	// Title Case: first letter upper, every following letter lower.
	first := true
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			continue
		}
		if first {
			if !unicode.IsUpper(r) {
				return false
			}
			first = false
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// checkArticleResidue is the defensive re-check of generator article
// stripping, using the same shared routine.
func (e *Engine) checkArticleResidue(text, language string) (bool, model.RejectReason) {
	if stripped, _ := extract.StripArticle(text, language); stripped != text {
		return false, model.ReasonLeadingArticle
	}
	return true, ""
}

// confidence is a weighted pure function of surface features: multi-word
// Title Case compounds score higher than single generic words.
func (e *Engine) confidence(text string) float64 {
	score := 0.5

	words := strings.Fields(text)
	if len(words) >= 2 {
		score += 0.15
	}
	if len([]rune(text)) >= 8 {
		score += 0.1
	}

	titleCased := len(words) > 0
	for _, w := range words {
		r := []rune(w)[0]
		if !unicode.IsUpper(r) {
			titleCased = false
			break
		}
	}
	if titleCased {
		score += 0.1
	}

	if isAcronym(text) {
		score += 0.05
	}
	if strings.Contains(text, "-") {
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func isAcronym(text string) bool {
	runes := []rune(text)
	if len(runes) < 2 || len(runes) > 6 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}
