// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// Configuration keys. Each maps to a YAML path in research-funnel.yaml and
// to an environment variable, e.g. ai.api_key is RESEARCH_FUNNEL_AI_API_KEY.
const (
	keySearchTimeout         = "search.timeout"
	keySearchUserAgent       = "search.user_agent"
	keySearchSources         = "search.sources"
	keySearchMaxResults      = "search.max_results"
	keySearchMaxPerQuery     = "search.max_per_query"
	keySearchPolitenessDelay = "search.politeness_delay"
	keySearchMinYear         = "search.min_year"
	keySearchPubMedAPIKey    = "search.pubmed_api_key"
	keySearchPubMedEmail     = "search.pubmed_email"
	keySearchOpenAlexEmail   = "search.openalex_email"
	keyRetryAttempts         = "search.retry.attempts"
	keyRetryBaseDelay        = "search.retry.base_delay"
	keyRetryJitter           = "search.retry.jitter"

	keyExpansionMaxTerms   = "expansion.max_terms_per_category"
	keyExpansionMaxQueries = "expansion.max_queries"
	keyExpansionTopPrimary = "expansion.top_primary"
	keyExpansionUseAI      = "expansion.use_ai"

	keyFilterMinRelevance = "filter.min_relevance"
	keyFilterMaxPapers    = "filter.max_papers"
	keyFilterUseAI        = "filter.use_ai"

	keyAIProvider   = "ai.provider"
	keyAIModel      = "ai.model"
	keyAIAPIKey     = "ai.api_key"
	keyAIBaseURL    = "ai.base_url"
	keyAIMaxTokens  = "ai.max_tokens"
	keyAITimeout    = "ai.timeout"
	keyAIMaxRetries = "ai.max_retries"

	keyBudgetMaxCalls      = "budget.max_calls"
	keyBudgetMaxWallClock  = "budget.max_wall_clock"
	keyBudgetMaxPerSource  = "budget.max_results_per_source"
	keySynthesisEnabled    = "synthesis.enabled"
	keySynthesisMaxChars   = "synthesis.max_combined_chars"
	keyServerAddr          = "server.addr"
	keyServerAsync         = "server.async"
	keyServerJobsDB        = "server.jobs_db"
	keyServerMaxResultsCap = "server.max_results_cap"
)

// setDefaults registers every key with its default so that environment
// variables are picked up for keys absent from the config file.
func setDefaults(v *viper.Viper, cfg types.PipelineConfig) {
	v.SetDefault(keySearchTimeout, cfg.Search.Timeout)
	v.SetDefault(keySearchUserAgent, cfg.Search.UserAgent)
	v.SetDefault(keySearchSources, sourceNames(cfg.Search.Sources))
	v.SetDefault(keySearchMaxResults, cfg.Search.MaxResults)
	v.SetDefault(keySearchMaxPerQuery, cfg.Search.MaxPerQuery)
	v.SetDefault(keySearchPolitenessDelay, cfg.Search.PolitenessDelay)
	v.SetDefault(keySearchMinYear, cfg.Search.MinYear)
	v.SetDefault(keySearchPubMedAPIKey, cfg.Search.PubMedAPIKey)
	v.SetDefault(keySearchPubMedEmail, cfg.Search.PubMedEmail)
	v.SetDefault(keySearchOpenAlexEmail, cfg.Search.OpenAlexEmail)
	v.SetDefault(keyRetryAttempts, cfg.Search.Retry.Attempts)
	v.SetDefault(keyRetryBaseDelay, cfg.Search.Retry.BaseDelay)
	v.SetDefault(keyRetryJitter, cfg.Search.Retry.Jitter)

	v.SetDefault(keyExpansionMaxTerms, cfg.Expansion.MaxTermsPerCategory)
	v.SetDefault(keyExpansionMaxQueries, cfg.Expansion.MaxQueries)
	v.SetDefault(keyExpansionTopPrimary, cfg.Expansion.TopPrimary)
	v.SetDefault(keyExpansionUseAI, cfg.Expansion.UseAI)

	v.SetDefault(keyFilterMinRelevance, cfg.Filter.MinRelevance)
	v.SetDefault(keyFilterMaxPapers, cfg.Filter.MaxPapers)
	v.SetDefault(keyFilterUseAI, cfg.Filter.UseAI)

	v.SetDefault(keyAIProvider, cfg.AI.Provider)
	v.SetDefault(keyAIModel, cfg.AI.Model)
	v.SetDefault(keyAIAPIKey, cfg.AI.APIKey)
	v.SetDefault(keyAIBaseURL, cfg.AI.BaseURL)
	v.SetDefault(keyAIMaxTokens, cfg.AI.MaxTokens)
	v.SetDefault(keyAITimeout, cfg.AI.Timeout)
	v.SetDefault(keyAIMaxRetries, cfg.AI.MaxRetries)

	v.SetDefault(keyBudgetMaxCalls, cfg.Budget.MaxCalls)
	v.SetDefault(keyBudgetMaxWallClock, cfg.Budget.MaxWallClock)
	v.SetDefault(keyBudgetMaxPerSource, cfg.Budget.MaxResultsPerSource)
	v.SetDefault(keySynthesisEnabled, cfg.Synthesis.Enabled)
	v.SetDefault(keySynthesisMaxChars, cfg.Synthesis.MaxCombinedChars)
	v.SetDefault(keyServerAddr, cfg.Server.Addr)
	v.SetDefault(keyServerAsync, cfg.Server.Async)
	v.SetDefault(keyServerJobsDB, cfg.Server.JobsDB)
	v.SetDefault(keyServerMaxResultsCap, cfg.Server.MaxResultsCap)
}

// configureEnv makes RESEARCH_FUNNEL_SEARCH_MAX_RESULTS override
// search.max_results.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("RESEARCH_FUNNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// pipelineConfig reads the effective configuration from v.
func pipelineConfig(v *viper.Viper) types.PipelineConfig {
	var cfg types.PipelineConfig

	cfg.Search.Timeout = v.GetDuration(keySearchTimeout)
	cfg.Search.UserAgent = v.GetString(keySearchUserAgent)
	cfg.Search.Sources = parseSources(v.GetStringSlice(keySearchSources))
	cfg.Search.MaxResults = v.GetInt(keySearchMaxResults)
	cfg.Search.MaxPerQuery = v.GetInt(keySearchMaxPerQuery)
	cfg.Search.PolitenessDelay = v.GetDuration(keySearchPolitenessDelay)
	cfg.Search.MinYear = v.GetInt(keySearchMinYear)
	cfg.Search.PubMedAPIKey = v.GetString(keySearchPubMedAPIKey)
	cfg.Search.PubMedEmail = v.GetString(keySearchPubMedEmail)
	cfg.Search.OpenAlexEmail = v.GetString(keySearchOpenAlexEmail)
	cfg.Search.Retry = types.RetryConfig{
		Attempts:  v.GetInt(keyRetryAttempts),
		BaseDelay: v.GetDuration(keyRetryBaseDelay),
		Jitter:    v.GetDuration(keyRetryJitter),
	}

	cfg.Expansion = types.ExpansionConfig{
		MaxTermsPerCategory: v.GetInt(keyExpansionMaxTerms),
		MaxQueries:          v.GetInt(keyExpansionMaxQueries),
		TopPrimary:          v.GetInt(keyExpansionTopPrimary),
		UseAI:               v.GetBool(keyExpansionUseAI),
	}
	cfg.Filter = types.FilterConfig{
		MinRelevance: v.GetFloat64(keyFilterMinRelevance),
		MaxPapers:    v.GetInt(keyFilterMaxPapers),
		UseAI:        v.GetBool(keyFilterUseAI),
	}
	cfg.AI = types.AIConfig{
		Provider:   v.GetString(keyAIProvider),
		Model:      v.GetString(keyAIModel),
		APIKey:     v.GetString(keyAIAPIKey),
		BaseURL:    v.GetString(keyAIBaseURL),
		MaxTokens:  v.GetInt(keyAIMaxTokens),
		Timeout:    v.GetDuration(keyAITimeout),
		MaxRetries: v.GetInt(keyAIMaxRetries),
	}
	cfg.Budget = types.BudgetConfig{
		MaxCalls:            v.GetInt(keyBudgetMaxCalls),
		MaxWallClock:        v.GetDuration(keyBudgetMaxWallClock),
		MaxResultsPerSource: v.GetInt(keyBudgetMaxPerSource),
	}
	cfg.Synthesis = types.SynthesisConfig{
		Enabled:          v.GetBool(keySynthesisEnabled),
		MaxCombinedChars: v.GetInt(keySynthesisMaxChars),
	}
	cfg.Server = types.ServerConfig{
		Addr:          v.GetString(keyServerAddr),
		Async:         v.GetBool(keyServerAsync),
		JobsDB:        v.GetString(keyServerJobsDB),
		MaxResultsCap: v.GetInt(keyServerMaxResultsCap),
	}
	return cfg
}

func sourceNames(ss []types.Source) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

// parseSources accepts a list or a single comma-separated entry, as
// environment variables provide.
func parseSources(names []string) []types.Source {
	var out []types.Source
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if src, err := types.ParseSource(part); err == nil {
				out = append(out, src)
			}
		}
	}
	return out
}
