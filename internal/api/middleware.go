package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quizrelay/internal/config"
)

// CORSMiddleware adds CORS headers to allow cross-origin requests from the
// configured frontend origin
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	// Trim trailing slash if present before setting the header
	origin := strings.TrimSuffix(cfg.FrontendURL, "/")
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// BodySizeLimit caps request bodies at the configured byte limit. Multipart
// parsing of an oversized upload fails instead of filling the disk.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
