package extract

import (
	"strings"

	prose "github.com/jdkato/prose/v2"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// NLPStrategy extracts candidates by POS-tagging the text and assembling
// maximal noun phrases: adjective* noun+, optionally with one internal
// preposition between noun groups ("degree of freedom"). The tagger ships
// an English model only; other languages fall back to the pattern
// strategy through the registry.
type NLPStrategy struct{}

// NewNLPStrategy creates the NLP candidate strategy.
func NewNLPStrategy() *NLPStrategy {
	return &NLPStrategy{}
}

// Name returns the strategy name.
func (s *NLPStrategy) Name() string { return string(model.StrategyNLP) }

// Supports reports whether a tagging model exists for the language.
func (s *NLPStrategy) Supports(language string) bool {
	return language == "en"
}

// Candidates extracts noun-phrase candidates with their source offsets.
func (s *NLPStrategy) Candidates(text string, page model.PageRef, language string) []model.CandidateTerm {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		// Tagging failure is not fatal for the page; the caller still has
		// the pattern strategy for subsequent pages.
		return nil
	}

	toks := doc.Tokens()
	offsets := tokenOffsets(text, toks)

	var out []model.CandidateTerm
	for i := 0; i < len(toks); {
		if !isAdjective(toks[i].Tag) && !isNoun(toks[i].Tag) {
			i++
			continue
		}

		j := i
		hasNoun := false
		usedPrep := false
		for j < len(toks) {
			tag := toks[j].Tag
			switch {
			case isNoun(tag):
				hasNoun = true
				j++
			case isAdjective(tag) && !hasNoun:
				j++
			case tag == "IN" && hasNoun && !usedPrep && j+1 < len(toks) && isNoun(toks[j+1].Tag):
				usedPrep = true
				j++
			default:
				goto phraseEnd
			}
		}
	phraseEnd:
		if hasNoun && offsets[i] >= 0 && offsets[j-1] >= 0 {
			start := offsets[i]
			end := offsets[j-1] + len(toks[j-1].Text)
			phrase := strings.Join(strings.Fields(text[start:end]), " ")

			stripped, shift := StripArticle(phrase, language)
			stripped = cleanCandidate(stripped)
			if stripped != "" {
				out = append(out, model.CandidateTerm{
					Text:     stripped,
					Language: language,
					Page:     page,
					Offset:   start + shift,
					Strategy: model.StrategyNLP,
				})
			}
		}
		i = j
	}

	return dedupeCandidates(out)
}

// tokenOffsets maps each token to its byte offset in the source text. A
// forward cursor keeps repeated tokens anchored to the right occurrence;
// tokens the cursor cannot relocate get offset -1 and are skipped.
func tokenOffsets(text string, toks []prose.Token) []int {
	offsets := make([]int, len(toks))
	cursor := 0
	for i, tok := range toks {
		idx := strings.Index(text[cursor:], tok.Text)
		if idx < 0 {
			offsets[i] = -1
			continue
		}
		offsets[i] = cursor + idx
		cursor = offsets[i] + len(tok.Text)
	}
	return offsets
}

func isNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

func isAdjective(tag string) bool {
	return strings.HasPrefix(tag, "JJ")
}
