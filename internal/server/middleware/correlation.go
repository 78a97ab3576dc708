package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the request identifier on the wire
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is where the identifier lives in the gin context
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags every request with an identifier that flows through
// logs and the response header. A caller-supplied header wins so traces can
// span services; without one a fresh UUID is minted.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)

		c.Next()
	}
}

// GetCorrelationID reads the request identifier back out of the gin context,
// returning "" when the middleware did not run
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}
