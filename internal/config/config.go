// Package config loads prospect-cli settings from config.yaml and PROSPECT_*
// environment variables, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/prospect-cli/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Pricing    cost.Rates       `yaml:"pricing" mapstructure:"pricing"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// GoogleConfig holds Custom Search settings. CX is the search engine ID.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	CX      string `yaml:"cx" mapstructure:"cx"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina Reader and Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FirecrawlConfig holds Firecrawl settings. Firecrawl is the last scrape fallback.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// LLMConfig selects the completion backend and per-phase sampling settings.
type LLMConfig struct {
	Provider            string  `yaml:"provider" mapstructure:"provider"`
	QueryTemperature    float64 `yaml:"query_temperature" mapstructure:"query_temperature"`
	QueryMaxTokens      int     `yaml:"query_max_tokens" mapstructure:"query_max_tokens"`
	ClassifyTemperature float64 `yaml:"classify_temperature" mapstructure:"classify_temperature"`
	ClassifyMaxTokens   int     `yaml:"classify_max_tokens" mapstructure:"classify_max_tokens"`
	FallbackTemperature float64 `yaml:"fallback_temperature" mapstructure:"fallback_temperature"`
	FallbackMaxTokens   int     `yaml:"fallback_max_tokens" mapstructure:"fallback_max_tokens"`
}

// SearchConfig configures candidate collection.
type SearchConfig struct {
	Provider           string `yaml:"provider" mapstructure:"provider"`
	ResultsPerQuery    int    `yaml:"results_per_query" mapstructure:"results_per_query"`
	DelayMs            int    `yaml:"delay_ms" mapstructure:"delay_ms"`
	RateLimitBackoffMs int    `yaml:"rate_limit_backoff_ms" mapstructure:"rate_limit_backoff_ms"`
	RateLimitRetries   int    `yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Delay returns the pause between search requests.
func (s SearchConfig) Delay() time.Duration {
	return time.Duration(s.DelayMs) * time.Millisecond
}

// RateLimitBackoff returns the wait before retrying a 429.
func (s SearchConfig) RateLimitBackoff() time.Duration {
	return time.Duration(s.RateLimitBackoffMs) * time.Millisecond
}

// ScrapeConfig configures company site scraping.
type ScrapeConfig struct {
	TimeoutSecs     int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	AboutPage       bool `yaml:"about_page" mapstructure:"about_page"`
	MinContentChars int  `yaml:"min_content_chars" mapstructure:"min_content_chars"`
}

// DiscoveryConfig holds the caps and thresholds of a discovery run.
type DiscoveryConfig struct {
	MaxIndustries         int `yaml:"max_industries" mapstructure:"max_industries"`
	GeoTermsPerIndustry   int `yaml:"geo_terms_per_industry" mapstructure:"geo_terms_per_industry"`
	MaxLLMQueries         int `yaml:"max_llm_queries" mapstructure:"max_llm_queries"`
	MaxQueries            int `yaml:"max_queries" mapstructure:"max_queries"`
	MaxClassify           int `yaml:"max_classify" mapstructure:"max_classify"`
	TargetProspects       int `yaml:"target_prospects" mapstructure:"target_prospects"`
	FallbackFloor         int `yaml:"fallback_floor" mapstructure:"fallback_floor"`
	FallbackCount         int `yaml:"fallback_count" mapstructure:"fallback_count"`
	AcceptThreshold       int `yaml:"accept_threshold" mapstructure:"accept_threshold"`
	FallbackConfidenceCap int `yaml:"fallback_confidence_cap" mapstructure:"fallback_confidence_cap"`
	MaxResults            int `yaml:"max_results" mapstructure:"max_results"`
	ExcerptChars          int `yaml:"excerpt_chars" mapstructure:"excerpt_chars"`
	ClassifyDelayMs       int `yaml:"classify_delay_ms" mapstructure:"classify_delay_ms"`
	VerifyDelayMs         int `yaml:"verify_delay_ms" mapstructure:"verify_delay_ms"`
}

// Validate rejects settings that would make a run meaningless.
func (d DiscoveryConfig) Validate() error {
	if d.AcceptThreshold < 0 || d.AcceptThreshold > 100 {
		return eris.Errorf("config: discovery.accept_threshold must be within 0-100, got %d", d.AcceptThreshold)
	}
	if d.FallbackConfidenceCap < 0 || d.FallbackConfidenceCap > 100 {
		return eris.Errorf("config: discovery.fallback_confidence_cap must be within 0-100, got %d", d.FallbackConfidenceCap)
	}
	positive := map[string]int{
		"max_industries":   d.MaxIndustries,
		"max_queries":      d.MaxQueries,
		"max_classify":     d.MaxClassify,
		"target_prospects": d.TargetProspects,
		"max_results":      d.MaxResults,
		"excerpt_chars":    d.ExcerptChars,
	}
	for name, v := range positive {
		if v <= 0 {
			return eris.Errorf("config: discovery.%s must be positive, got %d", name, v)
		}
	}
	nonNegative := map[string]int{
		"geo_terms_per_industry": d.GeoTermsPerIndustry,
		"max_llm_queries":        d.MaxLLMQueries,
		"fallback_floor":         d.FallbackFloor,
		"fallback_count":         d.FallbackCount,
		"classify_delay_ms":      d.ClassifyDelayMs,
		"verify_delay_ms":        d.VerifyDelayMs,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return eris.Errorf("config: discovery.%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

// StoreConfig configures run persistence. Driver is sqlite, postgres or none.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BatchConfig configures multi-ICP runs.
type BatchConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Rates returns configured pricing, falling back to list prices for any
// provider left unset.
func (c *Config) Rates() cost.Rates {
	def := cost.DefaultRates()
	r := c.Pricing
	if len(r.Anthropic) == 0 {
		r.Anthropic = def.Anthropic
	}
	if r.Perplexity == (cost.PerplexityRate{}) {
		r.Perplexity = def.Perplexity
	}
	if r.Google == (cost.SearchRate{}) {
		r.Google = def.Google
	}
	if r.Jina == (cost.JinaRate{}) {
		r.Jina = def.Jina
	}
	return r
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Discovery.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Credentials have empty defaults so AutomaticEnv can bind them.
	for _, key := range []string{"anthropic.key", "perplexity.key", "google.key", "google.cx", "jina.key", "firecrawl.key", "store.database_url"} {
		v.SetDefault(key, "")
	}

	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("google.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.query_temperature", 0.2)
	v.SetDefault("llm.query_max_tokens", 500)
	v.SetDefault("llm.classify_temperature", 0.0)
	v.SetDefault("llm.classify_max_tokens", 500)
	v.SetDefault("llm.fallback_temperature", 0.3)
	v.SetDefault("llm.fallback_max_tokens", 2000)

	v.SetDefault("search.provider", "google")
	v.SetDefault("search.results_per_query", 10)
	v.SetDefault("search.delay_ms", 1000)
	v.SetDefault("search.rate_limit_backoff_ms", 5000)
	v.SetDefault("search.rate_limit_retries", 1)
	v.SetDefault("search.timeout_secs", 15)

	v.SetDefault("scrape.timeout_secs", 15)
	v.SetDefault("scrape.about_page", true)
	v.SetDefault("scrape.min_content_chars", 200)

	v.SetDefault("discovery.max_industries", 5)
	v.SetDefault("discovery.geo_terms_per_industry", 2)
	v.SetDefault("discovery.max_llm_queries", 10)
	v.SetDefault("discovery.max_queries", 25)
	v.SetDefault("discovery.max_classify", 50)
	v.SetDefault("discovery.target_prospects", 20)
	v.SetDefault("discovery.fallback_floor", 10)
	v.SetDefault("discovery.fallback_count", 20)
	v.SetDefault("discovery.accept_threshold", 60)
	v.SetDefault("discovery.fallback_confidence_cap", 85)
	v.SetDefault("discovery.max_results", 50)
	v.SetDefault("discovery.excerpt_chars", 3500)
	v.SetDefault("discovery.classify_delay_ms", 300)
	v.SetDefault("discovery.verify_delay_ms", 500)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("batch.max_concurrent_runs", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}

	zap.ReplaceGlobals(logger)
	return nil
}
