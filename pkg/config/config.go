// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Resolver configuration
	Resolver ResolverConfig `mapstructure:"resolver"`

	// Invalidation configuration
	Invalidation InvalidationConfig `mapstructure:"invalidation"`

	// Store configuration
	Store StoreConfig `mapstructure:"store"`

	// LLM configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Export configuration
	Export ExportConfig `mapstructure:"export"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ResolverConfig holds entity resolution configuration
type ResolverConfig struct {
	ClusterThreshold float64 `mapstructure:"cluster_threshold"`
}

// InvalidationConfig holds temporal invalidation configuration
type InvalidationConfig struct {
	SimilarityThreshold  float64 `mapstructure:"similarity_threshold"`
	MaxConcurrency       int     `mapstructure:"max_concurrency"`
	OracleTimeoutSeconds int     `mapstructure:"oracle_timeout_seconds"`
}

// StoreConfig holds canonical and record store configuration
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, badger, postgres
	Path   string `mapstructure:"path"`   // badger data directory
	DSN    string `mapstructure:"dsn"`    // postgres connection string
}

// LLMConfig holds chat model configuration
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // openai, embedeverything
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// ExportConfig holds graph export configuration
type ExportConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that loaded values are usable. Invalid configuration is
// fatal at startup, never discovered mid-run.
func (c *Config) Validate() error {
	if c.Resolver.ClusterThreshold < 0 || c.Resolver.ClusterThreshold > 100 {
		return fmt.Errorf("resolver.cluster_threshold must be in [0, 100], got %v", c.Resolver.ClusterThreshold)
	}
	if c.Invalidation.SimilarityThreshold < -1 || c.Invalidation.SimilarityThreshold > 1 {
		return fmt.Errorf("invalidation.similarity_threshold must be in [-1, 1], got %v", c.Invalidation.SimilarityThreshold)
	}
	if c.Invalidation.MaxConcurrency < 0 {
		return fmt.Errorf("invalidation.max_concurrency must be non-negative, got %d", c.Invalidation.MaxConcurrency)
	}
	switch c.Store.Driver {
	case "memory", "badger", "postgres":
	default:
		return fmt.Errorf("store.driver must be one of memory, badger, postgres, got %q", c.Store.Driver)
	}
	if c.Store.Driver == "badger" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the badger driver")
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Resolution defaults
	viper.SetDefault("resolver.cluster_threshold", 80.0)

	// Invalidation defaults
	viper.SetDefault("invalidation.similarity_threshold", 0.5)
	viper.SetDefault("invalidation.max_concurrency", 8)
	viper.SetDefault("invalidation.oracle_timeout_seconds", 30)

	// Store defaults
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.path", "./chronograph_db")

	// LLM defaults
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.0)
	viper.SetDefault("llm.max_tokens", 2048)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "embedeverything")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	viper.SetDefault("embedding.dimensions", 384)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 2)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.chronograph/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.LLM.APIKey == "" {
			config.LLM.APIKey = apiKey
		}
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
	}

	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && config.LLM.BaseURL == "" {
		config.LLM.BaseURL = baseURL
	}

	// Store settings
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		config.Store.Driver = driver
	}
	if path := os.Getenv("STORE_PATH"); path != "" {
		config.Store.Path = path
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		config.Store.DSN = dsn
	}

	// Export credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Export.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Export.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Export.Password = pass
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
