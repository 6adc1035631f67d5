package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiKeyMiddleware guards the API with a static key carried in the
// X-API-Key header. An empty expected key disables the check entirely,
// which is the local development mode.
func apiKeyMiddleware(expected string) gin.HandlerFunc {
	if expected == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-Key")
		if provided == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing X-API-Key header", nil))
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid api key", nil))
			return
		}
		c.Next()
	}
}
