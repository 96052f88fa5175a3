package model

import "time"

// RunReport summarizes one ingestion run for audit: what was processed,
// what was accepted, and why candidates were rejected. The schema is the
// stable contract consumed by the report renderer.
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Documents  []DocumentSummary `json:"documents"`
	TotalPages int               `json:"total_pages"`

	Candidates int `json:"candidates"` // Candidates generated across all documents
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`

	// RejectionsByReason gives the audit breakdown without listing every
	// candidate; the full transient detail lives in the rejection store.
	RejectionsByReason map[RejectReason]int `json:"rejections_by_reason"`

	Terms []AggregatedTerm `json:"terms"` // Aggregated state after the run

	// Summary is the optional LLM-generated narrative. It is produced after
	// all counting and never feeds back into the pipeline.
	Summary *RunSummary `json:"summary,omitempty"`
}

// DocumentSummary is the per-document slice of a run report.
type DocumentSummary struct {
	Provenance Provenance `json:"provenance"`
	Pages      int        `json:"pages"`
	Flagged    int        `json:"flagged"` // Pages the normalizer could not repair
	Candidates int        `json:"candidates"`
	Accepted   int        `json:"accepted"`
	Rejected   int        `json:"rejected"`
}

// RejectionRecord is the transient audit record of one rejected candidate.
type RejectionRecord struct {
	Candidate  string       `json:"candidate"`
	Language   string       `json:"language"`
	Page       PageRef      `json:"page"`
	FailedRule string       `json:"failed_rule"`
	Reason     RejectReason `json:"reason"`
	RejectedAt time.Time    `json:"rejected_at"`
}

// RunSummary is the optional natural-language run summary. It is clearly
// separated from the measured counts and carries its own provenance.
type RunSummary struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	SummaryMD string   `json:"summary_md"`
	Warnings  []string `json:"warnings,omitempty"`
}
