package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsAllowHeaders is the fixed allow-list answered on pre-flight and
// attached to every substantive response.
const corsAllowHeaders = "authorization, x-client-info, apikey, content-type, x-request-id"

// CORSMiddleware handles CORS headers and answers OPTIONS pre-flight
// requests
func CORSMiddleware(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
