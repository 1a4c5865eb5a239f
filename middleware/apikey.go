package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKey schützt interne Endpunkte über den Header X-API-KEY. Ein leerer
// Schlüssel deaktiviert die Prüfung.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}
