package model

// RejectReason is the machine-readable reason code of the first failing
// validation rule. Rejections are a first-class outcome, not errors.
type RejectReason string

const (
	ReasonTooShort       RejectReason = "too_short"
	ReasonTooLong        RejectReason = "too_long"
	ReasonEmpty          RejectReason = "empty"
	ReasonNumeric        RejectReason = "numeric"
	ReasonSymbolRatio    RejectReason = "symbol_ratio"
	ReasonStopWord       RejectReason = "stop_word"
	ReasonWordCount      RejectReason = "word_count"
	ReasonPDFArtifact    RejectReason = "pdf_artifact"
	ReasonCitation       RejectReason = "citation"
	ReasonFragment       RejectReason = "fragment"
	ReasonCaseMixing     RejectReason = "case_mixing"
	ReasonLeadingArticle RejectReason = "leading_article"
)

// ValidationVerdict is the outcome of running a candidate through the rule
// engine. A verdict is a pure function of the candidate text, language and
// rule configuration: identical input always yields an identical verdict.
type ValidationVerdict struct {
	Candidate      string       `json:"candidate"` // Candidate text the verdict applies to
	Language       string       `json:"language"`
	Accepted       bool         `json:"accepted"`
	RulesEvaluated []string     `json:"rules_evaluated"`       // Rule names in execution order
	FailedRule     string       `json:"failed_rule,omitempty"` // Empty when accepted
	Reason         RejectReason `json:"reason,omitempty"`      // Reason of the first failing rule
	Confidence     float64      `json:"confidence"`            // 0.0–1.0, weighted over passed rules
}
