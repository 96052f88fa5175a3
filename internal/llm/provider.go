// Package llm generates the optional natural-language run summary. The
// summary is produced after all measured counts and never feeds back into
// validation, aggregation or relationship synthesis.
package llm

import (
	"context"
	"fmt"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative for the prompt
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Prompt is the fully rendered prompt text
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts the application-level LLM settings.
func ConfigFromModel(cfg model.LLMConfig) Config {
	out := DefaultConfig()
	out.Provider = cfg.Provider
	out.Model = cfg.Model
	out.APIKey = cfg.APIKey
	out.BaseURL = cfg.BaseURL
	return out
}

// BuildPrompt renders the run report into the summarization prompt. The
// prompt constrains the model to the measured numbers; it must describe,
// never re-count or re-judge.
func BuildPrompt(report *model.RunReport) string {
	prompt := fmt.Sprintf(`You are summarizing a terminology extraction run over technical documents.

RULES:
1. Describe only the numbers given below. Do not invent counts or terms.
2. Do not judge whether extracted terms are correct; validation already ran.
3. If rejection counts are high, describe which reasons dominate.

Run figures:
- Documents processed: %d
- Pages processed: %d
- Candidates generated: %d
- Accepted: %d
- Rejected: %d
- Glossary size after run: %d terms

Rejection reasons:
`, len(report.Documents), report.TotalPages, report.Candidates, report.Accepted, report.Rejected, len(report.Terms))

	if len(report.RejectionsByReason) == 0 {
		prompt += "- (none)\n"
	}
	for reason, count := range report.RejectionsByReason {
		prompt += fmt.Sprintf("- %s: %d\n", reason, count)
	}

	prompt += "\nProvide a 3-4 sentence summary of the run for an operator."
	return prompt
}
