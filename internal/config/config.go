// Package config defines the configuration structures for the carbon advisory
// service.  Loading lives in loader.go and defaults in defaults.go; this file
// holds only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	Mode            string          `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64           `mapstructure:"max_body_size"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds inbound requests per client address.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LogConfig mirrors logging.LogConfig so this package stays free of
// infrastructure imports.
type LogConfig struct {
	Level            string   `mapstructure:"level"`
	Format           string   `mapstructure:"format"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// FieldsConfig names the document fields that carry each case-study attribute.
type FieldsConfig struct {
	Industry string `mapstructure:"industry"`
	System   string `mapstructure:"system"`
	Action   string `mapstructure:"action"`
	Measure  string `mapstructure:"measure"`
	Carbon   string `mapstructure:"carbon"`
	Energy   string `mapstructure:"energy"`
	Problem  string `mapstructure:"problem"`
	Solution string `mapstructure:"solution"`
}

// AdvisoryConfig holds the recommendation pipeline constants.
type AdvisoryConfig struct {
	Collection            string       `mapstructure:"collection"`
	ExactLimit            int          `mapstructure:"exact_limit"`
	PrefixLength          int          `mapstructure:"prefix_length"`
	PrefixLimit           int          `mapstructure:"prefix_limit"`
	MaxMatches            int          `mapstructure:"max_matches"`
	MaxAlternatives       int          `mapstructure:"max_alternatives"`
	PortfolioTriggerRatio float64      `mapstructure:"portfolio_trigger_ratio"`
	OvershootFactor       float64      `mapstructure:"overshoot_factor"`
	EnergyMultiplier      float64      `mapstructure:"energy_multiplier"`
	ListingLimit          int          `mapstructure:"listing_limit"`
	DisableEnrichment     bool         `mapstructure:"disable_enrichment"`
	Fields                FieldsConfig `mapstructure:"fields"`
}

// OpenSearchConfig holds the case-study document store connection.
type OpenSearchConfig struct {
	Addresses           []string      `mapstructure:"addresses"`
	Username            string        `mapstructure:"username"`
	Password            string        `mapstructure:"password"`
	InsecureSkipVerify  bool          `mapstructure:"insecure_skip_verify"`
	IndexPrefix         string        `mapstructure:"index_prefix"`
	KeywordSuffix       string        `mapstructure:"keyword_suffix"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
}

// RedisConfig holds the lead store connection.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds the lead event producer and worker consumer settings.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	LeadTopic    string        `mapstructure:"lead_topic"`
	ClientID     string        `mapstructure:"client_id"`
	GroupID      string        `mapstructure:"group_id"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"` // -1 = all replicas, otherwise leader only
}

// TextGenConfig selects and tunes the optional text-generation provider.
type TextGenConfig struct {
	Provider          string        `mapstructure:"provider"` // "none" | "openai" | "gemini"
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	BaseURL           string        `mapstructure:"base_url"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// SheetsConfig holds the lead spreadsheet sync target.
type SheetsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	SheetName       string `mapstructure:"sheet_name"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
	Timezone        string `mapstructure:"timezone"` // IANA name for the timestamp column
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// WorkerConfig controls the background lead sync loop.
type WorkerConfig struct {
	SyncInterval time.Duration `mapstructure:"sync_interval"`
	RunOnStart   bool          `mapstructure:"run_on_start"`
	HealthPort   int           `mapstructure:"health_port"`
}

// Config is the root configuration object.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Advisory   AdvisoryConfig   `mapstructure:"advisory"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	TextGen    TextGenConfig    `mapstructure:"textgen"`
	Sheets     SheetsConfig     `mapstructure:"sheets"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

// Validate checks cross-field invariants.  It returns the first violation.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("config: server.rate_limit.requests_per_second must be > 0")
		}
		if c.Server.RateLimit.Burst < 1 {
			return fmt.Errorf("config: server.rate_limit.burst must be >= 1, got %d", c.Server.RateLimit.Burst)
		}
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}

	// Advisory
	if err := c.Advisory.validate(); err != nil {
		return err
	}

	// OpenSearch
	if len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker when kafka is enabled")
		}
		if c.Kafka.LeadTopic == "" {
			return fmt.Errorf("config: kafka.lead_topic is required when kafka is enabled")
		}
	}

	// Text generation
	switch c.TextGen.Provider {
	case TextGenProviderNone:
	case TextGenProviderOpenAI, TextGenProviderGemini:
		if c.TextGen.APIKey == "" {
			return fmt.Errorf("config: textgen.api_key is required for provider %q", c.TextGen.Provider)
		}
		if c.TextGen.RequestsPerMinute < 1 {
			return fmt.Errorf("config: textgen.requests_per_minute must be >= 1, got %d", c.TextGen.RequestsPerMinute)
		}
	default:
		return fmt.Errorf("config: textgen.provider %q is invalid; expected none|openai|gemini", c.TextGen.Provider)
	}

	// Sheets
	if c.Sheets.Enabled && c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("config: sheets.spreadsheet_id is required when sheets is enabled")
	}
	if _, err := time.LoadLocation(c.Sheets.Timezone); err != nil {
		return fmt.Errorf("config: sheets.timezone %q: %w", c.Sheets.Timezone, err)
	}

	// Worker
	if c.Worker.SyncInterval <= 0 {
		return fmt.Errorf("config: worker.sync_interval must be > 0")
	}

	return nil
}

func (a AdvisoryConfig) validate() error {
	if a.Collection == "" {
		return fmt.Errorf("config: advisory.collection is required")
	}
	if a.ExactLimit < 1 {
		return fmt.Errorf("config: advisory.exact_limit must be >= 1, got %d", a.ExactLimit)
	}
	if a.PrefixLength < 1 {
		return fmt.Errorf("config: advisory.prefix_length must be >= 1, got %d", a.PrefixLength)
	}
	if a.PrefixLimit < 1 {
		return fmt.Errorf("config: advisory.prefix_limit must be >= 1, got %d", a.PrefixLimit)
	}
	if a.MaxMatches < 1 {
		return fmt.Errorf("config: advisory.max_matches must be >= 1, got %d", a.MaxMatches)
	}
	if a.MaxAlternatives < 0 {
		return fmt.Errorf("config: advisory.max_alternatives must be >= 0, got %d", a.MaxAlternatives)
	}
	if a.PortfolioTriggerRatio <= 0 {
		return fmt.Errorf("config: advisory.portfolio_trigger_ratio must be > 0, got %g", a.PortfolioTriggerRatio)
	}
	if a.OvershootFactor < 1 {
		return fmt.Errorf("config: advisory.overshoot_factor must be >= 1, got %g", a.OvershootFactor)
	}
	if a.EnergyMultiplier <= 0 {
		return fmt.Errorf("config: advisory.energy_multiplier must be > 0, got %g", a.EnergyMultiplier)
	}
	if a.ListingLimit < 1 {
		return fmt.Errorf("config: advisory.listing_limit must be >= 1, got %d", a.ListingLimit)
	}
	f := a.Fields
	for name, v := range map[string]string{
		"industry": f.Industry, "system": f.System, "action": f.Action, "measure": f.Measure,
		"carbon": f.Carbon, "energy": f.Energy, "problem": f.Problem, "solution": f.Solution,
	} {
		if v == "" {
			return fmt.Errorf("config: advisory.fields.%s is required", name)
		}
	}
	return nil
}
