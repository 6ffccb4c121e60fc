package middleware

import (
	"context"

	"github.com/classward/classward/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware attaches a unique id to every request for log
// correlation
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader("x-request-id")
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set("x-request-id", requestID)
	c.Next()
}
