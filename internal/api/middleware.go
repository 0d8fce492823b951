package api

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/auth"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	tokenCookie = "token"
	identityKey = "identity"
)

// authRequired verifies the session cookie and stores the identity in the
// request context. Handlers read it once and pass the user ID explicitly
// into the services; nothing below this layer touches the cookie.
func authRequired(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(tokenCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		identity, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// callerIdentity returns the identity stored by authRequired
func callerIdentity(c *gin.Context) *auth.Identity {
	val, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := val.(*auth.Identity)
	return identity
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
