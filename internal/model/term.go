package model

import (
	"strings"
	"time"
)

// StrategyKind identifies which candidate generation strategy produced a term.
type StrategyKind string

const (
	StrategyNLP     StrategyKind = "nlp"     // POS-tag driven noun chunking
	StrategyPattern StrategyKind = "pattern" // Regex fallback
)

// CandidateTerm is an unvalidated string proposed by the generator as a
// possible glossary entry. Candidates are transient: they are consumed by
// the validator and discarded after the verdict.
type CandidateTerm struct {
	Text     string       `json:"text"`     // Surface text, articles already stripped
	Language string       `json:"language"` // Language tag of the source page
	Page     PageRef      `json:"page"`     // Where the candidate occurs
	Offset   int          `json:"offset"`   // Byte offset into the normalized page text
	Strategy StrategyKind `json:"strategy"` // Which strategy emitted it
}

// PatternKind classifies how a definition sentence was matched, from most
// to least specific.
type PatternKind string

const (
	PatternIs            PatternKind = "is"            // "X is ..."
	PatternColon         PatternKind = "colon"         // "X: ..."
	PatternDash          PatternKind = "dash"          // "X – ..."
	PatternParenthetical PatternKind = "parenthetical" // "X (...)"
	PatternContext       PatternKind = "context"       // Surrounding sentence fallback
)

// Specificity returns the rank of a pattern kind; lower is more specific.
func (k PatternKind) Specificity() int {
	switch k {
	case PatternIs:
		return 0
	case PatternColon:
		return 1
	case PatternDash:
		return 2
	case PatternParenthetical:
		return 3
	default:
		return 4
	}
}

// DefinitionCandidate is a sentence that appears to define a term.
type DefinitionCandidate struct {
	Term     string      `json:"term"`
	Kind     PatternKind `json:"kind"`
	Sentence string      `json:"sentence"`
	Page     PageRef     `json:"page"`
	Primary  bool        `json:"primary"` // First is/colon match found for the term
}

// TermKey is the uniqueness key of an aggregated term: normalized text,
// language, provenance class. Two occurrences with equal keys always merge
// into the same glossary record.
type TermKey struct {
	Text     string          `json:"text"` // Lowercased, whitespace-collapsed
	Language string          `json:"language"`
	Class    ProvenanceClass `json:"class"`
}

// NewTermKey builds the key for a surface form.
func NewTermKey(text, language string, class ProvenanceClass) TermKey {
	return TermKey{
		Text:     NormalizeKeyText(text),
		Language: language,
		Class:    class,
	}
}

// String renders the key as text/language/class for logs and errors.
func (k TermKey) String() string {
	return k.Text + "/" + k.Language + "/" + string(k.Class)
}

// NormalizeKeyText lowercases and collapses internal whitespace so that
// "Mixing  Time" and "mixing time" share one key.
func NormalizeKeyText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// SyncState tracks a term's progress through relationship synchronization.
// Transitions: pending -> retrying -> synced | failed.
type SyncState string

const (
	SyncPending  SyncState = "pending"
	SyncRetrying SyncState = "retrying"
	SyncSynced   SyncState = "synced"
	SyncFailed   SyncState = "failed"
)

// AggregatedTerm is the durable glossary record accumulating all accepted
// occurrences of one term key across pages and documents.
//
// Invariants: Frequency >= 1, Pages non-empty, the key is never duplicated
// within a store. Created on the first accepted occurrence, mutated on
// subsequent ones, never deleted except by administrative purge.
type AggregatedTerm struct {
	Key         TermKey               `json:"key"`
	DisplayText string                `json:"display_text"` // First-seen surface form
	Frequency   int                   `json:"frequency"`
	Pages       []PageRef             `json:"pages"`       // Unique per document, insertion order
	Excerpts    []string              `json:"excerpts"`    // Context excerpts, capped
	Definitions []DefinitionCandidate `json:"definitions"` // Deduplicated, primary first
	Confidence  float64               `json:"confidence"`  // Max validation confidence seen
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`

	SyncState    SyncState `json:"sync_state"`
	SyncAttempts int       `json:"sync_attempts"`
	SyncError    string    `json:"sync_error,omitempty"` // Last sync failure, kept for operators
}

// HasPage reports whether the page is already recorded for its document.
func (t *AggregatedTerm) HasPage(ref PageRef) bool {
	for _, p := range t.Pages {
		if p == ref {
			return true
		}
	}
	return false
}
