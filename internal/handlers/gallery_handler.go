package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bajrangpainters/backend/internal/content"
	"github.com/bajrangpainters/backend/internal/models"
	"github.com/bajrangpainters/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Catalog is the read and refresh surface of the image catalog.
type Catalog interface {
	Filter(category string) []models.GalleryImage
	State() models.CatalogState
	Refresh(ctx context.Context) (models.CatalogState, error)
}

type GalleryHandler struct {
	catalog  Catalog
	host     services.MediaHost
	site     *content.Site
	pageSize int
	log      logrus.FieldLogger
}

func NewGalleryHandler(catalog Catalog, host services.MediaHost, site *content.Site, pageSize int, log logrus.FieldLogger) *GalleryHandler {
	return &GalleryHandler{
		catalog:  catalog,
		host:     host,
		site:     site,
		pageSize: pageSize,
		log:      log.WithField("handler", "gallery"),
	}
}

// GetImages returns the raw media host records of one folder.
func (h *GalleryHandler) GetImages(c *gin.Context) {
	folder := strings.TrimSpace(c.Query("folder"))
	if folder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder query parameter is required"})
		return
	}

	records, err := h.host.ListImages(c.Request.Context(), folder, h.pageSize)
	if err != nil {
		h.log.WithError(err).WithField("folder", folder).Error("Failed to fetch images")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch images"})
		return
	}
	if records == nil {
		records = []models.MediaRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// ListGallery returns the catalog state with images filtered by ?category (default "all").
func (h *GalleryHandler) ListGallery(c *gin.Context) {
	category := c.DefaultQuery("category", models.CategoryAll)
	state := h.catalog.State()
	state.Images = h.catalog.Filter(category)
	c.JSON(http.StatusOK, gin.H{
		"category":          category,
		"images":            state.Images,
		"categories":        state.Categories,
		"is_loading":        state.IsLoading,
		"error":             state.Error,
		"last_refreshed_at": state.LastRefreshedAt,
	})
}

// ListCategories returns the observed categories with their labels and colours.
func (h *GalleryHandler) ListCategories(c *gin.Context) {
	state := h.catalog.State()
	categories := make([]gin.H, 0, len(state.Categories))
	for _, key := range state.Categories {
		count := len(h.catalog.Filter(key))
		label := "All Projects"
		if key != models.CategoryAll {
			label = h.site.Label(key)
		}
		categories = append(categories, gin.H{
			"key":   key,
			"label": label,
			"color": h.site.Color(key),
			"count": count,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Refresh re-reads the catalog. An empty result answers 503 with the
// previous images still in place.
func (h *GalleryHandler) Refresh(c *gin.Context) {
	state, err := h.catalog.Refresh(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrEmptyCatalog) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"error":      err.Error(),
			"images":     state.Images,
			"categories": state.Categories,
		})
		return
	}
	c.JSON(http.StatusOK, state)
}
