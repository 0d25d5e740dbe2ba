package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bajrangpainters/backend/internal/content"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type PublicHandler struct {
	site   *content.Site
	checks map[string]Pinger
	log    logrus.FieldLogger
}

// NewPublicHandler takes the health checks to run, keyed by dependency name.
func NewPublicHandler(site *content.Site, checks map[string]Pinger, log logrus.FieldLogger) *PublicHandler {
	return &PublicHandler{site: site, checks: checks, log: log.WithField("handler", "public")}
}

// ListServices returns the painting services catalog.
func (h *PublicHandler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.site.Services})
}

// Health reports "ok" or, when any dependency check fails, "degraded".
// The status code is always 200. Check errors are logged, never returned.
func (h *PublicHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = "degraded"
			deps[name] = "unreachable"
			h.log.WithError(err).WithField("dependency", name).Warn("Health check failed")
			continue
		}
		deps[name] = "ok"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"dependencies": deps,
		"time":         time.Now().UTC(),
	})
}
