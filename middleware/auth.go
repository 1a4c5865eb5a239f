package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sciencejournal/auth"
)

const principalKey = "principal"

// PrincipalResolver lädt die aktuelle Identität zu einer Benutzer-ID.
type PrincipalResolver interface {
	Principal(ctx context.Context, userID uuid.UUID) (*auth.Principal, error)
}

// Authenticate wertet ein optionales Bearer-Token aus. Ohne Header bleibt
// die Anfrage anonym, ein ungültiges Token führt zu 401.
func Authenticate(secret string, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		claims, err := auth.ValidateToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		principal, err := resolver.Principal(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal liefert die Identität der Anfrage oder nil.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireAntiForgery verlangt bei ändernden Anfragen das Token aus
// GET /auth/antiforgery im Header X-CSRF-Token.
func RequireAntiForgery(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !auth.VerifyAntiForgeryToken(secret, p.UserID, c.GetHeader("X-CSRF-Token")) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing or invalid anti-forgery token"})
			return
		}
		c.Next()
	}
}
