package model

import "time"

// Config is the immutable configuration passed into every pipeline stage.
// It is assembled once at command start (flags > env > config file >
// defaults) and never mutated afterwards, so runs are reproducible.
type Config struct {
	Extraction  ExtractionConfig  `yaml:"extraction" json:"extraction"`
	Validation  ValidationConfig  `yaml:"validation" json:"validation"`
	Aggregation AggregationConfig `yaml:"aggregation" json:"aggregation"`
	Similarity  SimilarityConfig  `yaml:"similarity" json:"similarity"`
	Sync        SyncConfig        `yaml:"sync" json:"sync"`
	Storage     StorageConfig     `yaml:"storage" json:"storage"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// ExtractionConfig controls candidate generation and definition location.
type ExtractionConfig struct {
	// Strategy selects the candidate generator: "auto" picks the NLP
	// strategy when the language has a model and falls back to patterns,
	// "nlp" and "pattern" force one of the two.
	Strategy string `yaml:"strategy" json:"strategy"`

	// Languages the pipeline accepts. Unknown page languages are rejected
	// at ingest.
	Languages []string `yaml:"languages" json:"languages"`
}

// ValidationConfig holds the thresholds and word lists of the rule engine.
type ValidationConfig struct {
	MinTermLength  int     `yaml:"min_term_length" json:"min_term_length"`
	MaxTermLength  int     `yaml:"max_term_length" json:"max_term_length"`
	MinWordCount   int     `yaml:"min_word_count" json:"min_word_count"`
	MaxWordCount   int     `yaml:"max_word_count" json:"max_word_count"`
	MaxSymbolRatio float64 `yaml:"max_symbol_ratio" json:"max_symbol_ratio"`

	// ShortTokenWhitelist lists legitimate short technical tokens that the
	// fragment rule must not reject (domain acronyms such as "pH", "DO").
	// Empirically derived per deployment; the defaults are a starting set.
	ShortTokenWhitelist []string `yaml:"short_token_whitelist" json:"short_token_whitelist"`

	// MixedCaseWhitelist lists known mixed-case domain tokens accepted by
	// the capitalization rule ("pH", "mRNA").
	MixedCaseWhitelist []string `yaml:"mixed_case_whitelist" json:"mixed_case_whitelist"`

	// ExtraStopWords extends the built-in per-language stop word sets.
	ExtraStopWords map[string][]string `yaml:"extra_stop_words" json:"extra_stop_words"`
}

// AggregationConfig controls the cross-document aggregator.
type AggregationConfig struct {
	// MaxExcerpts caps the number of context excerpts kept per term.
	MaxExcerpts int `yaml:"max_excerpts" json:"max_excerpts"`

	// RejectionTTL bounds how long rejection records are retained for the
	// run's rejection report.
	RejectionTTL time.Duration `yaml:"rejection_ttl" json:"rejection_ttl"`
}

// SimilarityConfig tunes SIMILAR_TO detection. The threshold is an
// empirically derived value; validate changes against a representative
// corpus before lowering it.
type SimilarityConfig struct {
	Threshold       float64 `yaml:"threshold" json:"threshold"`                 // Minimum combined similarity
	MaxEditDistance int     `yaml:"max_edit_distance" json:"max_edit_distance"` // Levenshtein bound
}

// SyncConfig controls background relationship synchronization.
type SyncConfig struct {
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"`
	BackoffBase time.Duration `yaml:"backoff_base" json:"backoff_base"`
	Interval    time.Duration `yaml:"interval" json:"interval"` // Background sweep interval
	RatePerSec  float64       `yaml:"rate_per_sec" json:"rate_per_sec"`
	Burst       int           `yaml:"burst" json:"burst"`

	Neo4j Neo4jConfig `yaml:"neo4j" json:"neo4j"`
}

// Neo4jConfig locates the graph store the synthesizer writes to. When URI
// is empty the in-memory store is used.
type Neo4jConfig struct {
	URI      string `yaml:"uri" json:"uri"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"-"`
}

// StorageConfig locates the on-disk term database.
type StorageConfig struct {
	Dir string `yaml:"dir" json:"dir"` // Directory holding termbase.db
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	DocumentWorkers int `yaml:"document_workers" json:"document_workers"`
	SyncWorkers     int `yaml:"sync_workers" json:"sync_workers"`
}

// LLMConfig configures the optional run summarizer. The summary never
// affects validation, aggregation or synthesis.
type LLMConfig struct {
	Provider string `yaml:"provider" json:"provider"` // "" disables, "openai" enables
	Model    string `yaml:"model" json:"model"`
	APIKey   string `yaml:"api_key" json:"-"`
	BaseURL  string `yaml:"base_url" json:"base_url"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the built-in defaults. Thresholds marked as
// empirically derived are meant to be tuned per corpus via config.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Strategy:  "auto",
			Languages: []string{"en", "de"},
		},
		Validation: ValidationConfig{
			MinTermLength:       2,
			MaxTermLength:       80,
			MinWordCount:        1,
			MaxWordCount:        6,
			MaxSymbolRatio:      0.3,
			ShortTokenWhitelist: []string{"pH", "DO", "OD", "CO2", "O2", "N2", "IQ", "OQ", "PQ"},
			MixedCaseWhitelist:  []string{"pH", "mRNA", "dsDNA", "kLa", "mAb"},
		},
		Aggregation: AggregationConfig{
			MaxExcerpts:  5,
			RejectionTTL: 24 * time.Hour,
		},
		Similarity: SimilarityConfig{
			Threshold:       0.85,
			MaxEditDistance: 3,
		},
		Sync: SyncConfig{
			MaxRetries:  5,
			BackoffBase: time.Second,
			Interval:    30 * time.Second,
			RatePerSec:  20,
			Burst:       5,
		},
		Storage: StorageConfig{
			Dir: "termbase-data",
		},
		Concurrency: ConcurrencyConfig{
			DocumentWorkers: 4,
			SyncWorkers:     4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
