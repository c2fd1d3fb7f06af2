// Package bootstrap assembles the advisor's infrastructure and services from
// a loaded configuration.  The API server, worker and local CLI share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/application/leads"
	"github.com/turtacn/netellus-advisor/internal/config"
	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/database/redis"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/search/opensearch"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/sheets"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/textgen"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/textgen/gemini"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/textgen/openai"
	httpserver "github.com/turtacn/netellus-advisor/internal/interfaces/http"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/handlers"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/middleware"
)

// Version is reported by the liveness probe.  It is set at link time.
var Version = "dev"

var (
	_ advisory.Metrics = (*prometheus.AppMetrics)(nil)
	_ leads.Metrics    = (*prometheus.AppMetrics)(nil)
	_ openai.Recorder  = (*prometheus.AppMetrics)(nil)
	_ gemini.Recorder  = (*prometheus.AppMetrics)(nil)

	_ casestudy.DocumentQuerier = (*opensearch.CaseStore)(nil)
	_ leads.EventPublisher      = (*kafka.LeadEventPublisher)(nil)
	_ leads.SheetWriter         = (*sheets.Writer)(nil)
)

// NewLogger builds the process logger from cfg.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           cfg.Format,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	})
}

// Search bundles the case-study store and its indexer.
type Search struct {
	Client  *opensearch.Client
	Store   *opensearch.CaseStore
	Indexer *opensearch.Indexer
}

// NewSearch connects to OpenSearch.
func NewSearch(cfg *config.Config, logger logging.Logger) (*Search, error) {
	client, err := opensearch.NewClient(opensearch.ClientConfig{
		Addresses:           cfg.OpenSearch.Addresses,
		Username:            cfg.OpenSearch.Username,
		Password:            cfg.OpenSearch.Password,
		InsecureSkipVerify:  cfg.OpenSearch.InsecureSkipVerify,
		MaxRetries:          3,
		RequestTimeout:      cfg.OpenSearch.RequestTimeout,
		HealthCheckInterval: cfg.OpenSearch.HealthCheckInterval,
	}, logger.Named("opensearch"))
	if err != nil {
		return nil, err
	}
	store := opensearch.NewCaseStore(client, opensearch.CaseStoreConfig{
		IndexPrefix:   cfg.OpenSearch.IndexPrefix,
		KeywordSuffix: cfg.OpenSearch.KeywordSuffix,
	}, logger.Named("case_store"))
	return &Search{
		Client:  client,
		Store:   store,
		Indexer: opensearch.NewIndexer(store, opensearch.IndexerConfig{}, logger.Named("indexer")),
	}, nil
}

// NewRedis connects the lead store's Redis client.
func NewRedis(cfg config.RedisConfig, logger logging.Logger) (*redis.Client, error) {
	return redis.NewClient(&redis.RedisConfig{
		Addrs:        []string{cfg.Addr},
		Password:     cfg.Password,
		DB:           cfg.DB,
		KeyPrefix:    cfg.KeyPrefix,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, logger.Named("redis"))
}

// AdvisoryOptions maps the advisory config section onto pipeline options.
func AdvisoryOptions(cfg config.AdvisoryConfig, textGenEnabled bool) advisory.Options {
	return advisory.Options{
		Collection: cfg.Collection,
		Schema: casestudy.Schema{
			Industry: cfg.Fields.Industry,
			System:   cfg.Fields.System,
			Action:   cfg.Fields.Action,
			Measure:  cfg.Fields.Measure,
			Carbon:   cfg.Fields.Carbon,
			Energy:   cfg.Fields.Energy,
			Problem:  cfg.Fields.Problem,
			Solution: cfg.Fields.Solution,
		},
		ExactLimit:            cfg.ExactLimit,
		PrefixLength:          cfg.PrefixLength,
		PrefixLimit:           cfg.PrefixLimit,
		MaxMatches:            cfg.MaxMatches,
		MaxAlternatives:       cfg.MaxAlternatives,
		PortfolioTriggerRatio: cfg.PortfolioTriggerRatio,
		OvershootFactor:       cfg.OvershootFactor,
		EnergyMultiplier:      cfg.EnergyMultiplier,
		ListingLimit:          cfg.ListingLimit,
		Enrich:                textGenEnabled && !cfg.DisableEnrichment,
	}
}

// NewTextGenerator returns the configured provider, or nil when text
// generation is off.
func NewTextGenerator(ctx context.Context, cfg config.TextGenConfig, logger logging.Logger, rec *prometheus.AppMetrics) (advisory.TextGenerator, error) {
	tc := textgen.Config{
		APIKey:            cfg.APIKey,
		Model:             cfg.Model,
		BaseURL:           cfg.BaseURL,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Timeout:           cfg.Timeout,
	}
	switch cfg.Provider {
	case config.TextGenProviderOpenAI:
		var r openai.Recorder
		if rec != nil {
			r = rec
		}
		c, err := openai.NewClient(tc, logger.Named("openai"), r)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.TextGenProviderGemini:
		var r gemini.Recorder
		if rec != nil {
			r = rec
		}
		c, err := gemini.NewClient(ctx, tc, logger.Named("gemini"), r)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, nil
	}
}

// App owns every long-lived dependency of the API server and worker.
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	Search   *Search
	Redis    *redis.Client
	Producer *kafka.Producer

	Advisory advisory.Service
	Leads    leads.Service
	Health   *handlers.HealthHandler

	collector prometheus.MetricsCollector
	closers   []func() error
}

// New connects every backend named in cfg and wires the services.  On error
// anything already opened is closed.  A nil logger means logging.Default().
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{Config: cfg, Logger: logger}
	if err := app.init(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) (err error) {
	cfg, logger := a.Config, a.Logger

	if cfg.Metrics.Enabled {
		a.collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger.Named("metrics"))
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		a.Metrics = prometheus.NewAppMetrics(a.collector)
	}

	if a.Search, err = NewSearch(cfg, logger); err != nil {
		return fmt.Errorf("opensearch: %w", err)
	}
	a.closers = append(a.closers, a.Search.Client.Close)

	if a.Redis, err = NewRedis(cfg.Redis, logger); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	a.closers = append(a.closers, a.Redis.Close)

	var publisher leads.EventPublisher
	if cfg.Kafka.Enabled {
		a.Producer, err = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			ClientID:     cfg.Kafka.ClientID,
			RequiredAcks: cfg.Kafka.RequiredAcks,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, logger.Named("kafka"))
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		a.closers = append(a.closers, a.Producer.Close)
		publisher = kafka.NewLeadEventPublisher(a.Producer, cfg.Kafka.ClientID, logger).WithTopic(cfg.Kafka.LeadTopic)
	}

	generator, err := NewTextGenerator(ctx, cfg.TextGen, logger, a.Metrics)
	if err != nil {
		return fmt.Errorf("textgen: %w", err)
	}

	var sheet leads.SheetWriter
	if cfg.Sheets.Enabled {
		w, err := sheets.NewWriter(ctx, sheets.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			SheetName:       cfg.Sheets.SheetName,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			Endpoint:        cfg.Sheets.Endpoint,
		}, logger.Named("sheets"))
		if err != nil {
			return fmt.Errorf("sheets: %w", err)
		}
		sheet = w
	}
	loc, err := time.LoadLocation(cfg.Sheets.Timezone)
	if err != nil {
		return fmt.Errorf("sheets timezone: %w", err)
	}

	advisoryCfg := advisory.ServiceConfig{
		Store:     a.Search.Store,
		Generator: generator,
		Options:   AdvisoryOptions(cfg.Advisory, generator != nil),
		Logger:    logger,
	}
	leadCfg := leads.ServiceConfig{
		Repository: redis.NewLeadStore(a.Redis, logger.Named("lead_store")),
		Publisher:  publisher,
		Sheet:      sheet,
		SheetLabel: cfg.Sheets.SheetName,
		Location:   loc,
		Logger:     logger,
	}
	if a.Metrics != nil {
		advisoryCfg.Metrics = a.Metrics
		leadCfg.Metrics = a.Metrics
	}

	if a.Advisory, err = advisory.NewService(advisoryCfg); err != nil {
		return err
	}
	if a.Leads, err = leads.NewService(leadCfg); err != nil {
		return err
	}

	a.Health = handlers.NewHealthHandler(Version,
		handlers.HealthCheckFunc{Component: "opensearch", Fn: a.Search.Client.Ping},
		handlers.HealthCheckFunc{Component: "redis", Fn: a.Redis.Ping},
	)
	if a.Metrics != nil {
		a.Health.WithRecorder(a.Metrics)
	}

	logger.Info("application initialized",
		logging.String("textgen", cfg.TextGen.Provider),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Bool("sheets", cfg.Sheets.Enabled),
		logging.Bool("metrics", cfg.Metrics.Enabled))
	return nil
}

// Router builds the HTTP handler tree over the wired services.
func (a *App) Router() *gin.Engine {
	cfg := a.Config
	gin.SetMode(cfg.Server.Mode)

	rc := httpserver.RouterConfig{
		AdvisoryHandler: handlers.NewAdvisoryHandler(a.Advisory, a.Logger),
		LeadHandler:     handlers.NewLeadHandler(a.Leads, a.Logger),
		ActionHandler:   handlers.NewActionHandler(a.Advisory, a.Leads, a.Logger),
		HealthHandler:   a.Health,
		CORS:            middleware.CORSConfig{AllowedOrigins: cfg.Server.AllowedOrigins},
		Logging:         middleware.DefaultLoggingConfig(),
		MaxBodySize:     cfg.Server.MaxBodySize,
		Logger:          a.Logger,
	}
	if cfg.Server.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.Server.RateLimit.RequestsPerSecond
		rl.BurstSize = cfg.Server.RateLimit.Burst
		rc.RateLimit = rl
		rc.RateLimiter = middleware.NewKeyedLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.IdleTTL)
	}
	if a.Metrics != nil {
		rc.HTTPMetrics = a.Metrics
		rc.MetricsHandler = a.collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	return httpserver.NewRouter(rc)
}

// Close releases backends in reverse order of creation.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
