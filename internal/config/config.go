// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Everything is loaded once at
// startup and passed down explicitly; there is no process-wide mutable state.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Reddit      RedditConfig
	Trends      TrendsConfig
	Twitter     TwitterConfig
	Anthropic   AnthropicConfig
	Pipeline    PipelineConfig
	Enrich      EnrichConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration for the corpus cache.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// RedditConfig holds Reddit corpus client configuration.
type RedditConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	TimeRange string
}

// TrendsConfig holds search-trends feed client configuration.
type TrendsConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TwitterConfig holds Twitter snippet provider configuration.
type TwitterConfig struct {
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	Timeout           time.Duration
}

// AnthropicConfig holds Anthropic messages API configuration.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// PipelineConfig holds ranking pipeline configuration.
type PipelineConfig struct {
	Source             string // "reddit" or "google"
	CorpusLimit        int
	ViabilityThreshold int
	EnrichLimit        int
	FinalLimit         int
	StrictCategoryGate bool
	CacheMaxAge        time.Duration
	EventsSubject      string
}

// EnrichConfig holds enrichment orchestrator configuration.
type EnrichConfig struct {
	PerItemTimeout time.Duration
	MaxConcurrent  int
	MaxSnippets    int
}

// Load loads configuration from environment variables.
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "mtc"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Reddit: RedditConfig{
			BaseURL:   getEnv("REDDIT_BASE_URL", "https://www.reddit.com"),
			UserAgent: getEnv("REDDIT_USER_AGENT", "mtc-app/1.0"),
			Timeout:   getEnvAsDuration("REDDIT_TIMEOUT", 10*time.Second),
			TimeRange: getEnv("REDDIT_TIME_RANGE", "day"),
		},
		Trends: TrendsConfig{
			BaseURL: getEnv("TRENDS_BASE_URL", ""),
			Timeout: getEnvAsDuration("TRENDS_TIMEOUT", 15*time.Second),
		},
		Twitter: TwitterConfig{
			BearerToken:       getEnv("TWITTER_BEARER_TOKEN", ""),
			ConsumerKey:       getEnv("TWITTER_CONSUMER_KEY", ""),
			ConsumerSecret:    getEnv("TWITTER_CONSUMER_SECRET", ""),
			AccessToken:       getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessTokenSecret: getEnv("TWITTER_ACCESS_TOKEN_SECRET", ""),
			Timeout:           getEnvAsDuration("TWITTER_TIMEOUT", 10*time.Second),
		},
		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5"),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 600),
			Timeout:   getEnvAsDuration("ANTHROPIC_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			Source:             getEnv("PIPELINE_SOURCE", "reddit"),
			CorpusLimit:        getEnvAsInt("PIPELINE_CORPUS_LIMIT", 25),
			ViabilityThreshold: getEnvAsInt("PIPELINE_VIABILITY_THRESHOLD", 100),
			EnrichLimit:        getEnvAsInt("PIPELINE_ENRICH_LIMIT", 15),
			FinalLimit:         getEnvAsInt("PIPELINE_FINAL_LIMIT", 10),
			StrictCategoryGate: getEnvAsBool("PIPELINE_STRICT_CATEGORY_GATE", false),
			CacheMaxAge:        getEnvAsDuration("PIPELINE_CACHE_MAX_AGE", 1*time.Hour),
			EventsSubject:      getEnv("PIPELINE_EVENTS_SUBJECT", "trends.matched"),
		},
		Enrich: EnrichConfig{
			PerItemTimeout: getEnvAsDuration("ENRICH_PER_ITEM_TIMEOUT", 6*time.Second),
			MaxConcurrent:  getEnvAsInt("ENRICH_MAX_CONCURRENT", 15),
			MaxSnippets:    getEnvAsInt("ENRICH_MAX_SNIPPETS", 5),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid.
func validate(config Config) error {
	if config.Pipeline.FinalLimit > config.Pipeline.EnrichLimit {
		return fmt.Errorf("final limit (%d) must not exceed enrich limit (%d)",
			config.Pipeline.FinalLimit, config.Pipeline.EnrichLimit)
	}
	if config.Pipeline.ViabilityThreshold <= 0 {
		return fmt.Errorf("viability threshold must be positive")
	}
	if config.Pipeline.Source != "reddit" && config.Pipeline.Source != "google" {
		return fmt.Errorf("unsupported pipeline source: %s", config.Pipeline.Source)
	}
	if config.Pipeline.Source == "google" && config.Trends.BaseURL == "" {
		return fmt.Errorf("TRENDS_BASE_URL is required when the pipeline source is google")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
