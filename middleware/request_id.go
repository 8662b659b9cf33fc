package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travel-admin/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses an inbound X-Request-ID or assigns a UUIDv7.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = newRequestID()
		}
		c.Set(utils.RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(utils.RequestIDKey)
}
