package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/response"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// Recovery turns panics into a masked 500 envelope.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			logging.String("path", c.Request.URL.Path),
			logging.Any("panic", recovered),
			logging.String("request_id", logging.RequestIDFromContext(c.Request.Context())))
		response.Error(c, errors.Internal("internal server error"))
	})
}
