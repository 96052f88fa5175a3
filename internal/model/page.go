package model

import "time"

// RawPage is one page of extracted document text as delivered by the
// upstream PDF/OCR collaborator. It is immutable once produced.
type RawPage struct {
	DocumentID  string    `json:"document_id"`  // Source document identifier
	Page        int       `json:"page"`         // 1-based page number
	Text        string    `json:"text"`         // Raw page text, possibly garbled
	ExtractedAt time.Time `json:"extracted_at"` // When the page text was produced
}

// PageRef locates a term occurrence inside a specific document.
type PageRef struct {
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
}

// ProvenanceClass distinguishes internally authored terms from terms
// imported from an authoritative external source. The set is open:
// deployments register their own external classes (e.g. "iec-60050").
type ProvenanceClass string

// ProvenanceInternal is the reserved class for terms extracted from the
// organization's own documents.
const ProvenanceInternal ProvenanceClass = "internal"

// Provenance describes where a stream of pages comes from.
type Provenance struct {
	DocumentID string          `json:"document_id"`
	Language   string          `json:"language"` // BCP 47 base tag, e.g. "en", "de"
	Class      ProvenanceClass `json:"class"`
}

// Document is a full document handed to the pipeline: ordered pages plus
// provenance shared by all of them.
type Document struct {
	Provenance Provenance `json:"provenance"`
	Pages      []RawPage  `json:"pages"`
}
