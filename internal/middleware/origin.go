package middleware

import (
	"net/http"
	"net/url"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AllowedOrigin rejects requests that do not come from one of the configured
// site origins. The Referer is used when the browser sent no Origin header.
// Development accepts every request.
func AllowedOrigin(cfg *config.Config, log logrus.FieldLogger) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[normalizeOrigin(o)] = true
	}
	dev := cfg.Env == "development"

	return func(c *gin.Context) {
		if dev {
			c.Next()
			return
		}
		origin := requestOrigin(c.Request)
		if origin == "" || !allowed[origin] {
			log.WithFields(logrus.Fields{
				"ip":     c.ClientIP(),
				"origin": origin,
				"path":   c.Request.URL.Path,
			}).Warn("Rejected request from foreign origin")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
			return
		}
		c.Next()
	}
}

func requestOrigin(r *http.Request) string {
	if origin := normalizeOrigin(r.Header.Get("Origin")); origin != "" {
		return origin
	}
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Scheme == "" || ref.Host == "" {
		return ""
	}
	return ref.Scheme + "://" + ref.Host
}
