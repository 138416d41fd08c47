// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source fetchers.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-funnel/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetryConfig parameterizes the shared retry policy.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first (default 3).
	Attempts int `json:"attempts" yaml:"attempts"`

	// BaseDelay is doubled after every failed attempt (default 1s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`

	// Jitter is the upper bound of the random delay added per retry (default 1s).
	Jitter time.Duration `json:"jitter" yaml:"jitter"`
}

// SearchConfig holds settings for fetchers and the fan-out.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Sources are the backends used when a request names none.
	Sources []Source `json:"sources" yaml:"sources"`

	// MaxResults is the number of papers kept per source after ranking (default 18).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxPerQuery is the number of results requested per fan-out query (default 25).
	MaxPerQuery int `json:"max_per_query" yaml:"max_per_query"`

	// PolitenessDelay is the pause between consecutive queries to one source (default 3s).
	PolitenessDelay time.Duration `json:"politeness_delay" yaml:"politeness_delay"`

	// MinYear drops arXiv entries published before this year when non-zero.
	MinYear int `json:"min_year,omitempty" yaml:"min_year,omitempty"`

	// PubMedAPIKey raises the NCBI rate limit when set.
	PubMedAPIKey string `json:"pubmed_api_key,omitempty" yaml:"pubmed_api_key,omitempty"`

	// PubMedEmail and OpenAlexEmail identify the caller per the APIs' etiquette.
	PubMedEmail   string `json:"pubmed_email,omitempty" yaml:"pubmed_email,omitempty"`
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	Retry RetryConfig `json:"retry" yaml:"retry"`
}

// ExpansionConfig holds settings for the terminology expander and query list.
type ExpansionConfig struct {
	// MaxTermsPerCategory caps every terminology list (default 15).
	MaxTermsPerCategory int `json:"max_terms_per_category" yaml:"max_terms_per_category"`

	// MaxQueries caps the fan-out query list (default 8).
	MaxQueries int `json:"max_queries" yaml:"max_queries"`

	// TopPrimary is how many primary terms form the joined query (default 4).
	TopPrimary int `json:"top_primary" yaml:"top_primary"`

	// UseAI enables the language capability expansion step.
	UseAI bool `json:"use_ai" yaml:"use_ai"`
}

// FilterConfig holds settings for the domain and relevance filters.
type FilterConfig struct {
	// MinRelevance is the admission threshold of the relevance filter (default 0.4).
	MinRelevance float64 `json:"min_relevance" yaml:"min_relevance"`

	// MaxPapers caps the retained list after sorting; zero means no cap.
	MaxPapers int `json:"max_papers,omitempty" yaml:"max_papers,omitempty"`

	// UseAI enables capability scoring in both filters.
	UseAI bool `json:"use_ai" yaml:"use_ai"`
}

// AIConfig holds settings for the language capability.
type AIConfig struct {
	// Provider is one of "anthropic", "openai", "gemini", or "none".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint when set.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens bounds each completion (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout is the hard timeout of one capability call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// BudgetConfig bounds the external work of one run.
type BudgetConfig struct {
	MaxCalls            int           `json:"max_calls" yaml:"max_calls"`
	MaxWallClock        time.Duration `json:"max_wall_clock" yaml:"max_wall_clock"`
	MaxResultsPerSource int           `json:"max_results_per_source" yaml:"max_results_per_source"`
}

// SynthesisConfig holds settings for the synthesis call and the validator.
type SynthesisConfig struct {
	// Enabled turns the synthesis step on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxCombinedChars truncates the paper data in the prompt (default 20000).
	MaxCombinedChars int `json:"max_combined_chars" yaml:"max_combined_chars"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// Async makes POST /research return a job ID instead of the result.
	Async bool `json:"async" yaml:"async"`

	// JobsDB is the SQLite file backing the job store.
	JobsDB string `json:"jobs_db" yaml:"jobs_db"`

	// MaxResultsCap is the largest max_results accepted from a client (default 100).
	MaxResultsCap int `json:"max_results_cap" yaml:"max_results_cap"`
}

// PipelineConfig groups all stage configurations for the funnel.
type PipelineConfig struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Expansion ExpansionConfig `json:"expansion" yaml:"expansion"`
	Filter    FilterConfig    `json:"filter" yaml:"filter"`
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Budget    BudgetConfig    `json:"budget" yaml:"budget"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}

// DefaultPipelineConfig returns the configuration used when nothing is overridden.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "research-funnel/0.1",
			},
			Sources:         append([]Source(nil), DefaultSources...),
			MaxResults:      18,
			MaxPerQuery:     25,
			PolitenessDelay: 3 * time.Second,
			Retry: RetryConfig{
				Attempts:  3,
				BaseDelay: time.Second,
				Jitter:    time.Second,
			},
		},
		Expansion: ExpansionConfig{
			MaxTermsPerCategory: 15,
			MaxQueries:          8,
			TopPrimary:          4,
			UseAI:               true,
		},
		Filter: FilterConfig{
			MinRelevance: 0.4,
			UseAI:        true,
		},
		AI: AIConfig{
			Provider:   "none",
			MaxTokens:  4096,
			Timeout:    60 * time.Second,
			MaxRetries: 3,
		},
		Budget: BudgetConfig{
			MaxCalls:            200,
			MaxWallClock:        5 * time.Minute,
			MaxResultsPerSource: 500,
		},
		Synthesis: SynthesisConfig{
			Enabled:          true,
			MaxCombinedChars: 20000,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			JobsDB:        "research-funnel-jobs.db",
			MaxResultsCap: 100,
		},
	}
}
