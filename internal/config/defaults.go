package config

import "time"

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerShutdownTimeout = 15 * time.Second
	DefaultServerMaxBodySize     = 1 << 20
	DefaultRateLimitRPS          = 5.0
	DefaultRateLimitBurst        = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultAdvisoryCollection    = "Case"
	DefaultExactLimit            = 500
	DefaultPrefixLength          = 2
	DefaultPrefixLimit           = 30
	DefaultMaxMatches            = 3
	DefaultMaxAlternatives       = 2
	DefaultPortfolioTriggerRatio = 5.0
	DefaultOvershootFactor       = 1.1
	DefaultEnergyMultiplier      = 1000.0
	DefaultListingLimit          = 500

	DefaultFieldIndustry = "案例公司產業別"
	DefaultFieldSystem   = "系統名稱"
	DefaultFieldAction   = "措施類型"
	DefaultFieldMeasure  = "措施名稱"
	DefaultFieldCarbon   = "碳減量(公噸/年)"
	DefaultFieldEnergy   = "節能潛力"
	DefaultFieldProblem  = "企業問題闡述"
	DefaultFieldSolution = "解決方案闡述"

	DefaultOpenSearchAddress        = "http://localhost:9200"
	DefaultOpenSearchKeywordSuffix  = ".keyword"
	DefaultOpenSearchRequestTimeout = 10 * time.Second
	DefaultOpenSearchHealthInterval = 30 * time.Second

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "advisor:"
	DefaultRedisPoolSize  = 10
	DefaultRedisTimeout   = 3 * time.Second

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaLeadTopic    = "lead.captured"
	DefaultKafkaClientID     = "netellus-advisor"
	DefaultKafkaGroupID      = "netellus-advisor-worker"
	DefaultKafkaBatchTimeout = 50 * time.Millisecond

	TextGenProviderNone   = "none"
	TextGenProviderOpenAI = "openai"
	TextGenProviderGemini = "gemini"

	DefaultOpenAIModel        = "gpt-4o-mini"
	DefaultGeminiModel        = "gemini-2.0-flash"
	DefaultTextGenTemperature = 0.4
	DefaultTextGenMaxTokens   = 1024
	DefaultTextGenRPM         = 60
	DefaultTextGenTimeout     = 30 * time.Second

	DefaultSheetName     = "Sheet1"
	DefaultSheetTimezone = "UTC"

	DefaultMetricsNamespace = "advisor"
	DefaultMetricsPath      = "/metrics"

	DefaultWorkerSyncInterval = 15 * time.Minute
	DefaultWorkerHealthPort   = 8081
)

// ApplyDefaults fills every zero-value field in cfg with its default.  Values
// already set by the caller are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = DefaultRateLimitBurst
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	applyAdvisoryDefaults(&cfg.Advisory)

	// OpenSearch
	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{DefaultOpenSearchAddress}
	}
	if cfg.OpenSearch.KeywordSuffix == "" {
		cfg.OpenSearch.KeywordSuffix = DefaultOpenSearchKeywordSuffix
	}
	if cfg.OpenSearch.RequestTimeout == 0 {
		cfg.OpenSearch.RequestTimeout = DefaultOpenSearchRequestTimeout
	}
	if cfg.OpenSearch.HealthCheckInterval == 0 {
		cfg.OpenSearch.HealthCheckInterval = DefaultOpenSearchHealthInterval
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisTimeout
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.LeadTopic == "" {
		cfg.Kafka.LeadTopic = DefaultKafkaLeadTopic
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}

	// Text generation
	if cfg.TextGen.Provider == "" {
		cfg.TextGen.Provider = TextGenProviderNone
	}
	if cfg.TextGen.Model == "" {
		switch cfg.TextGen.Provider {
		case TextGenProviderOpenAI:
			cfg.TextGen.Model = DefaultOpenAIModel
		case TextGenProviderGemini:
			cfg.TextGen.Model = DefaultGeminiModel
		}
	}
	if cfg.TextGen.Temperature == 0 {
		cfg.TextGen.Temperature = DefaultTextGenTemperature
	}
	if cfg.TextGen.MaxTokens == 0 {
		cfg.TextGen.MaxTokens = DefaultTextGenMaxTokens
	}
	if cfg.TextGen.RequestsPerMinute == 0 {
		cfg.TextGen.RequestsPerMinute = DefaultTextGenRPM
	}
	if cfg.TextGen.Timeout == 0 {
		cfg.TextGen.Timeout = DefaultTextGenTimeout
	}

	// Sheets
	if cfg.Sheets.SheetName == "" {
		cfg.Sheets.SheetName = DefaultSheetName
	}
	if cfg.Sheets.Timezone == "" {
		cfg.Sheets.Timezone = DefaultSheetTimezone
	}

	// Metrics
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// Worker
	if cfg.Worker.SyncInterval == 0 {
		cfg.Worker.SyncInterval = DefaultWorkerSyncInterval
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
}

func applyAdvisoryDefaults(a *AdvisoryConfig) {
	if a.Collection == "" {
		a.Collection = DefaultAdvisoryCollection
	}
	if a.ExactLimit == 0 {
		a.ExactLimit = DefaultExactLimit
	}
	if a.PrefixLength == 0 {
		a.PrefixLength = DefaultPrefixLength
	}
	if a.PrefixLimit == 0 {
		a.PrefixLimit = DefaultPrefixLimit
	}
	if a.MaxMatches == 0 {
		a.MaxMatches = DefaultMaxMatches
	}
	if a.MaxAlternatives == 0 {
		a.MaxAlternatives = DefaultMaxAlternatives
	}
	if a.PortfolioTriggerRatio == 0 {
		a.PortfolioTriggerRatio = DefaultPortfolioTriggerRatio
	}
	if a.OvershootFactor == 0 {
		a.OvershootFactor = DefaultOvershootFactor
	}
	if a.EnergyMultiplier == 0 {
		a.EnergyMultiplier = DefaultEnergyMultiplier
	}
	if a.ListingLimit == 0 {
		a.ListingLimit = DefaultListingLimit
	}

	f := &a.Fields
	if f.Industry == "" {
		f.Industry = DefaultFieldIndustry
	}
	if f.System == "" {
		f.System = DefaultFieldSystem
	}
	if f.Action == "" {
		f.Action = DefaultFieldAction
	}
	if f.Measure == "" {
		f.Measure = DefaultFieldMeasure
	}
	if f.Carbon == "" {
		f.Carbon = DefaultFieldCarbon
	}
	if f.Energy == "" {
		f.Energy = DefaultFieldEnergy
	}
	if f.Problem == "" {
		f.Problem = DefaultFieldProblem
	}
	if f.Solution == "" {
		f.Solution = DefaultFieldSolution
	}
}

// NewDefaultConfig returns a Config populated entirely from defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
