package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/content"
	"github.com/bajrangpainters/backend/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyCatalog is returned when no folder produced a single image.
var ErrEmptyCatalog = errors.New("No images found")

// UpstreamFetchError is the failure of a single folder listing.
type UpstreamFetchError struct {
	Folder string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("failed to fetch images from %q: %v", e.Folder, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// FolderResult is the outcome of listing one category folder: either Images
// or Err is meaningful, never both.
type FolderResult struct {
	Folder string
	Images []models.GalleryImage
	Err    error
}

func (r FolderResult) OK() bool { return r.Err == nil }

// CatalogCache persists the last good image list between restarts.
type CatalogCache interface {
	Load(ctx context.Context) ([]models.GalleryImage, error)
	Save(ctx context.Context, images []models.GalleryImage) error
}

// CatalogService aggregates the gallery from the media host. One instance is
// built at start-up and shared by every consumer.
type CatalogService struct {
	host       MediaHost
	site       *content.Site
	baseFolder string
	pageSize   int
	cache      CatalogCache
	log        logrus.FieldLogger
	now        func() time.Time

	mu          sync.RWMutex
	images      []models.GalleryImage
	categories  []string
	loading     bool
	lastErr     *string
	refreshedAt *time.Time

	flight singleflight.Group
}

// NewCatalogService builds the catalog. cache may be nil.
func NewCatalogService(host MediaHost, site *content.Site, cfg *config.Config, cache CatalogCache, log logrus.FieldLogger) *CatalogService {
	base := cfg.CatalogBaseFolder
	if base == "" {
		base = site.BaseFolder
	}
	return &CatalogService{
		host:       host,
		site:       site,
		baseFolder: strings.TrimRight(base, "/"),
		pageSize:   cfg.CatalogPageSize,
		cache:      cache,
		log:        log.WithField("component", "catalog"),
		now:        time.Now,
		images:     []models.GalleryImage{},
		categories: []string{models.CategoryAll},
	}
}

// Folders returns the folder prefixes queried on every refresh, in table order.
func (s *CatalogService) Folders() []string {
	keys := s.site.CategoryKeys()
	folders := make([]string, len(keys))
	for i, k := range keys {
		folders[i] = s.baseFolder + "/" + k
	}
	return folders
}

// Refresh re-reads every category folder and replaces the image list. When
// every folder comes back empty or failed, ErrEmptyCatalog is returned and
// the previous images are kept. Concurrent callers share one refresh.
func (s *CatalogService) Refresh(ctx context.Context) (models.CatalogState, error) {
	// A caller going away must not abort a refresh other callers wait on.
	ctx = context.WithoutCancel(ctx)
	_, err, _ := s.flight.Do("refresh", func() (interface{}, error) {
		return nil, s.refresh(ctx)
	})
	return s.State(), err
}

func (s *CatalogService) refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	start := s.now()
	results := s.fetchAll(ctx)
	images, err := Aggregate(results)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		msg := err.Error()
		s.lastErr = &msg
		s.mu.Unlock()
		s.log.WithField("folders", len(results)).Warn("Catalog refresh produced no images")
		return err
	}
	s.images = images
	s.categories = CategoriesOf(images)
	refreshed := s.now()
	s.refreshedAt = &refreshed
	s.mu.Unlock()

	var totalBytes uint64
	for _, img := range images {
		if img.Bytes > 0 {
			totalBytes += uint64(img.Bytes)
		}
	}
	s.log.WithFields(logrus.Fields{
		"images":   humanize.Comma(int64(len(images))),
		"size":     humanize.Bytes(totalBytes),
		"duration": refreshed.Sub(start).String(),
	}).Info("Catalog refreshed")

	if s.cache != nil {
		if err := s.cache.Save(ctx, images); err != nil {
			s.log.WithError(err).Warn("Failed to store catalog snapshot")
		}
	}
	return nil
}

// fetchAll lists every folder concurrently. Results keep folder order.
func (s *CatalogService) fetchAll(ctx context.Context) []FolderResult {
	folders := s.Folders()
	results := make([]FolderResult, len(folders))

	var g errgroup.Group
	for i, folder := range folders {
		g.Go(func() error {
			results[i] = s.fetchFolder(ctx, folder)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *CatalogService) fetchFolder(ctx context.Context, folder string) FolderResult {
	records, err := s.host.ListImages(ctx, folder, s.pageSize)
	if err != nil {
		fetchErr := &UpstreamFetchError{Folder: folder, Err: err}
		s.log.WithField("folder", folder).WithError(err).Warn("Failed to fetch images from folder")
		return FolderResult{Folder: folder, Err: fetchErr}
	}

	images := make([]models.GalleryImage, 0, len(records))
	for _, r := range records {
		images = append(images, ToGalleryImage(r, s.site))
	}
	s.log.WithFields(logrus.Fields{"folder": folder, "count": len(images)}).Debug("Fetched folder")
	return FolderResult{Folder: folder, Images: images}
}

// Aggregate concatenates successful folder results in order. It fails with
// ErrEmptyCatalog when the combined list is empty.
func Aggregate(results []FolderResult) ([]models.GalleryImage, error) {
	images := []models.GalleryImage{}
	for _, r := range results {
		if !r.OK() {
			continue
		}
		images = append(images, r.Images...)
	}
	if len(images) == 0 {
		return nil, ErrEmptyCatalog
	}
	return images, nil
}

// CategoriesOf returns "all" followed by each observed category in first-seen order.
func CategoriesOf(images []models.GalleryImage) []string {
	categories := []string{models.CategoryAll}
	seen := map[string]bool{models.CategoryAll: true}
	for _, img := range images {
		if seen[img.Category] {
			continue
		}
		seen[img.Category] = true
		categories = append(categories, img.Category)
	}
	return categories
}

// ToGalleryImage derives category and caption from the record's folder.
func ToGalleryImage(r models.MediaRecord, site *content.Site) models.GalleryImage {
	segments := strings.Split(r.Folder, "/")
	category := strings.ToLower(segments[len(segments)-1])
	caption := site.Label(category)
	return models.GalleryImage{
		MediaRecord: r,
		Category:    category,
		Caption:     caption,
		Alt:         caption + " painting project",
	}
}

// Filter returns the images of one category; "all" returns everything and an
// unknown category returns an empty list.
func (s *CatalogService) Filter(category string) []models.GalleryImage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == models.CategoryAll {
		out := make([]models.GalleryImage, len(s.images))
		copy(out, s.images)
		return out
	}
	out := []models.GalleryImage{}
	for _, img := range s.images {
		if img.Category == category {
			out = append(out, img)
		}
	}
	return out
}

func (s *CatalogService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// State returns a copy of the current catalog state.
func (s *CatalogService) State() models.CatalogState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := models.CatalogState{
		Images:     make([]models.GalleryImage, len(s.images)),
		Categories: make([]string, len(s.categories)),
		IsLoading:  s.loading,
	}
	copy(state.Images, s.images)
	copy(state.Categories, s.categories)
	if s.lastErr != nil {
		msg := *s.lastErr
		state.Error = &msg
	}
	if s.refreshedAt != nil {
		t := *s.refreshedAt
		state.LastRefreshedAt = &t
	}
	return state
}

// Warm loads the last stored snapshot while the catalog is still empty.
func (s *CatalogService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	images, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog snapshot: %w", err)
	}
	if len(images) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.images) > 0 {
		return nil
	}
	s.images = images
	s.categories = CategoriesOf(images)
	s.log.WithField("images", len(images)).Info("Catalog warmed from snapshot")
	return nil
}
