package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BearerToken rejects requests whose Authorization header does not carry the expected token.
// An empty expected token means the API was never configured and every request fails.
func BearerToken(expected string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			log.Error().Str("path", c.Request.URL.Path).Msg("API token not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "API not configured"})
			return
		}

		token := parseBearer(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) != 1 {
			log.Warn().Str("path", c.Request.URL.Path).Str("ip", c.ClientIP()).Msg("rejected API request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid or missing API token"})
			return
		}

		c.Next()
	}
}

func parseBearer(auth string) string {
	const prefix = "Bearer "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return auth[len(prefix):]
}
