package llm

import (
	"context"
	"fmt"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Summarizer turns a run report into a short narrative via the
// configured provider. Disabled summarizers are valid and do nothing.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer from configuration. An empty
// provider name yields a disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// Summarize generates the run summary. The returned record carries the
// provider and model as provenance so readers can tell generated prose
// from measured counts.
func (s *Summarizer) Summarize(ctx context.Context, report *model.RunReport) (*model.RunSummary, error) {
	if !s.IsEnabled() {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Prompt:    BuildPrompt(report),
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize via %s: %w", s.provider.Name(), err)
	}

	summary := &model.RunSummary{
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
	}
	if resp.Summary == "" {
		summary.Warnings = append(summary.Warnings, "provider returned an empty summary")
	}
	return summary, nil
}
