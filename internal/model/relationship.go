package model

// RelationshipKind classifies an inferred connection between two
// aggregated terms.
type RelationshipKind string

const (
	// KindCompoundOf links a multi-word term to a constituent that exists
	// as its own term. Directional: compound -> constituent.
	KindCompoundOf RelationshipKind = "COMPOUND_OF"

	// KindContains links a longer term to a term embedded in it at a word
	// boundary. Directional: container -> contained.
	KindContains RelationshipKind = "CONTAINS"

	// KindSimilarTo connects near-identical terms. Symmetric: creating
	// A->B always creates B->A in the same operation.
	KindSimilarTo RelationshipKind = "SIMILAR_TO"

	// KindTranslationOf pairs terms across languages that share a source
	// document and overlapping pages. Symmetric like SIMILAR_TO.
	KindTranslationOf RelationshipKind = "TRANSLATION_OF"
)

// Symmetric reports whether the kind implies the reverse edge.
func (k RelationshipKind) Symmetric() bool {
	return k == KindSimilarTo || k == KindTranslationOf
}

// DetectionMethod records how a relationship was proposed.
type DetectionMethod string

const (
	MethodAlgorithmic DetectionMethod = "algorithmic"
	MethodManual      DetectionMethod = "manual"
)

// Relationship is an ordered edge between two aggregated term keys.
//
// Invariants: From != To; (From, To, Kind) is unique; symmetric kinds exist
// in both directions; COMPOUND_OF/CONTAINS never form an opposite-kind
// two-cycle between the same pair.
type Relationship struct {
	From     TermKey          `json:"from"`
	To       TermKey          `json:"to"`
	Kind     RelationshipKind `json:"kind"`
	Strength float64          `json:"strength"` // 0.0–1.0
	Method   DetectionMethod  `json:"method"`
}
