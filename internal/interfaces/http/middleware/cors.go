package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig holds configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists exact origins.  ["*"] allows any origin and turns
	// credentials off.
	AllowedOrigins []string
	MaxAge         time.Duration
}

// CORS builds the gin-contrib/cors handler for the browser front end.
func CORS(config CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        config.MaxAge,
	}
	if cc.MaxAge == 0 {
		cc.MaxAge = 12 * time.Hour
	}

	if len(config.AllowedOrigins) == 0 || (len(config.AllowedOrigins) == 1 && config.AllowedOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = config.AllowedOrigins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}
