package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/handlers"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/middleware"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/response"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the route tree.  Nil handlers are not mounted.
type RouterConfig struct {
	// Handlers
	AdvisoryHandler *handlers.AdvisoryHandler
	LeadHandler     *handlers.LeadHandler
	ActionHandler   *handlers.ActionHandler
	HealthHandler   *handlers.HealthHandler

	// Middleware
	CORS        middleware.CORSConfig
	Logging     middleware.LoggingConfig
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig
	MaxBodySize int64

	// Infrastructure
	Logger         logging.Logger
	HTTPMetrics    middleware.HTTPRecorder
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter builds the gin engine.  Global middleware runs in the order
// Recovery, RequestID, CORS, Logging, Metrics, RateLimit, BodyLimit.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.HTTPMetrics))
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}
	r.Use(middleware.BodyLimit(cfg.MaxBodySize))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, errors.NotFound("route not found"))
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.AdvisoryHandler != nil {
		cfg.AdvisoryHandler.RegisterRoutes(api)
	}
	if cfg.LeadHandler != nil {
		cfg.LeadHandler.RegisterRoutes(api)
	}
	if cfg.ActionHandler != nil {
		cfg.ActionHandler.RegisterRoutes(api)
	}
	return r
}
