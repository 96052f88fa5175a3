package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Renderer writes run reports as JSON, Markdown and a stdout summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report to a file.
func (r *Renderer) RenderJSON(report *model.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report to a file.
func (r *Renderer) RenderMarkdown(report *model.RunReport, path string) error {
	var b strings.Builder

	b.WriteString("# Terminology Extraction Report\n\n")
	fmt.Fprintf(&b, "Run: %s – %s\n\n", report.StartedAt.Format("2006-01-02 15:04:05"), report.FinishedAt.Format("15:04:05 MST"))

	b.WriteString("## Documents\n\n")
	b.WriteString("| Document | Language | Pages | Flagged | Candidates | Accepted | Rejected |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, d := range report.Documents {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %d |\n",
			d.Provenance.DocumentID, d.Provenance.Language, d.Pages, d.Flagged, d.Candidates, d.Accepted, d.Rejected)
	}

	b.WriteString("\n## Terms\n\n")
	b.WriteString("| Term | Language | Frequency | Confidence | Definitions |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, t := range report.Terms {
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %d |\n",
			t.DisplayText, t.Key.Language, t.Frequency, t.Confidence, len(t.Definitions))
	}

	if len(report.RejectionsByReason) > 0 {
		b.WriteString("\n## Rejections\n\n")
		for _, reason := range sortedReasons(report.RejectionsByReason) {
			fmt.Fprintf(&b, "- %s: %d\n", reason, report.RejectionsByReason[reason])
		}
	}

	if report.Summary != nil {
		b.WriteString("\n## Summary (generated)\n\n")
		fmt.Fprintf(&b, "_Provider: %s, model: %s. Narrative only; all counts above are measured._\n\n", report.Summary.Provider, report.Summary.Model)
		b.WriteString(report.Summary.SummaryMD)
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("\n---\n")
		fmt.Fprintf(&b, "Generated by termbase. %d candidates, %d accepted, %d rejected across %d pages.\n",
			report.Candidates, report.Accepted, report.Rejected, report.TotalPages)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints the run outcome to stdout.
func (r *Renderer) RenderSummary(report *model.RunReport) {
	fmt.Printf("\nProcessed %d document(s), %d page(s)\n", len(report.Documents), report.TotalPages)
	fmt.Printf("Candidates: %d  Accepted: %d  Rejected: %d\n", report.Candidates, report.Accepted, report.Rejected)
	fmt.Printf("Glossary size: %d term(s)\n", len(report.Terms))

	if len(report.RejectionsByReason) > 0 {
		fmt.Println("Top rejection reasons:")
		reasons := sortedReasons(report.RejectionsByReason)
		for i, reason := range reasons {
			if i >= 3 {
				break
			}
			fmt.Printf("  %s: %d\n", reason, report.RejectionsByReason[reason])
		}
	}
}

// sortedReasons orders reasons by descending count, then name.
func sortedReasons(counts map[model.RejectReason]int) []model.RejectReason {
	reasons := make([]model.RejectReason, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if counts[reasons[i]] != counts[reasons[j]] {
			return counts[reasons[i]] > counts[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	return reasons
}
